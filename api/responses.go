package api

// CheckResponse is the response for an authorization check.
type CheckResponse struct {
	Allowed    bool   `json:"allowed" description:"Whether the request is allowed"`
	Decision   string `json:"decision" description:"Decision code"`
	Reason     string `json:"reason,omitempty" description:"Human-readable reason"`
	EvalTimeNs int64  `json:"eval_time_ns" description:"Evaluation time in nanoseconds"`
}

// BatchCheckResponse contains results for multiple checks.
type BatchCheckResponse struct {
	Results []CheckResponse `json:"results" description:"Check results in order"`
}

// PurgeResponse reports how many rows a purge removed.
type PurgeResponse struct {
	Deleted int64 `json:"deleted" description:"Number of entries removed"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T   `json:"items" description:"List of items"`
	Total  int64 `json:"total" description:"Total count"`
	Limit  int   `json:"limit" description:"Page size"`
	Offset int   `json:"offset" description:"Page offset"`
}
