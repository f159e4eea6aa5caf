// Package actor defines the User entity and its store interface.
//
// Users are the subjects of every evaluation. Roles and direct permissions
// are bound to users here; the engine reads them back as flat name sets
// when building an evaluation snapshot.
package actor

import (
	"time"

	"github.com/trackline/verdict/id"
)

// User represents a platform account that authorization decisions are made for.
type User struct {
	ID          id.UserID      `json:"id" db:"id"`
	Username    string         `json:"username" db:"username"`
	DisplayName string         `json:"display_name,omitempty" db:"display_name"`
	Department  string         `json:"department,omitempty" db:"department"`
	IsActive    bool           `json:"is_active" db:"is_active"`
	Metadata    map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing users.
type ListFilter struct {
	IsActive   *bool  `json:"is_active,omitempty"`
	Department string `json:"department,omitempty"`
	Search     string `json:"search,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}
