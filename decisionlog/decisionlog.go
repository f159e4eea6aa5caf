// Package decisionlog defines the decision audit log Entry entity.
package decisionlog

import (
	"time"

	"github.com/trackline/verdict/id"
)

// Entry is a single authorization decision audit record.
type Entry struct {
	ID         id.DecisionLogID `json:"id" db:"id"`
	ActorID    id.UserID        `json:"actor_id" db:"actor_id"`
	Action     string           `json:"action" db:"action"`
	Entity     string           `json:"entity" db:"entity"`
	ResourceID string           `json:"resource_id,omitempty" db:"resource_id"`
	Decision   string           `json:"decision" db:"decision"`
	Reason     string           `json:"reason,omitempty" db:"reason"`
	EvalTimeNs int64            `json:"eval_time_ns" db:"eval_time_ns"`
	RequestIP  string           `json:"request_ip,omitempty" db:"request_ip"`
	Metadata   map[string]any   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying decision logs.
type QueryFilter struct {
	ActorID    *id.UserID `json:"actor_id,omitempty"`
	Action     string     `json:"action,omitempty"`
	Entity     string     `json:"entity,omitempty"`
	ResourceID string     `json:"resource_id,omitempty"`
	Decision   string     `json:"decision,omitempty"`
	After      *time.Time `json:"after,omitempty"`
	Before     *time.Time `json:"before,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
