package verdict

import "time"

// Config holds configuration for the Verdict engine.
type Config struct {
	// SnapshotTTL is the time-to-live for cached actor snapshots.
	// Zero disables snapshot caching. Verdicts themselves are never
	// cached: confirmation state and grant expiry are time-varying, so
	// every check re-reads them.
	SnapshotTTL time.Duration `json:"snapshot_ttl,omitempty"`

	// RecordDecisions appends an audit entry to the decision log for
	// every check.
	RecordDecisions bool `json:"record_decisions,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}
