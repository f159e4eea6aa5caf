// Package role defines the Role entity and its store interface.
package role

import (
	"time"

	"github.com/trackline/verdict/id"
)

// Reserved role names. Roles with these names cannot be deleted or renamed
// and carry elevated semantics during evaluation.
const (
	Admin      = "admin"
	SuperAdmin = "superadmin"
)

// Reserved reports whether name is a protected role name.
func Reserved(name string) bool {
	return name == Admin || name == SuperAdmin
}

// Role represents a named bundle of permissions assignable to users.
type Role struct {
	ID          id.RoleID      `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description,omitempty" db:"description"`
	Metadata    map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// IsReserved reports whether the role carries a protected name.
func (r *Role) IsReserved() bool {
	return Reserved(r.Name)
}

// ListFilter contains filters for listing roles.
type ListFilter struct {
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}
