// Package grant defines time-bounded access grants for restricted records.
//
// A grant gives a user scoped visibility into restricted material,
// independently of roles and permissions. Grants are either global or tied
// to one resource, carry an access level, and can expire or be deactivated.
// At most one active grant exists per (user, scope) pair; stores enforce
// this on creation.
package grant

import (
	"time"

	"github.com/trackline/verdict/id"
)

// AccessType is the level of access a grant confers.
type AccessType string

// Access levels. These are three independent capabilities rather than a
// strict subset chain: full implies everything, read_only and incidents_only
// each imply only their own view.
const (
	AccessFull          AccessType = "full"
	AccessReadOnly      AccessType = "read_only"
	AccessIncidentsOnly AccessType = "incidents_only"
)

// Valid reports whether t is a known access level.
func (t AccessType) Valid() bool {
	switch t {
	case AccessFull, AccessReadOnly, AccessIncidentsOnly:
		return true
	default:
		return false
	}
}

// CanView reports whether the level allows reading the covered material.
func (t AccessType) CanView() bool {
	return t == AccessFull || t == AccessReadOnly
}

// CanViewIncidents reports whether the level allows reading the incidents section.
func (t AccessType) CanViewIncidents() bool {
	return t == AccessFull || t == AccessIncidentsOnly
}

// CanManage reports whether the level allows mutations.
func (t AccessType) CanManage() bool {
	return t == AccessFull
}

// Grant binds an access level to a user, globally or for one resource.
// An empty Entity and ResourceID marks the global scope.
type Grant struct {
	ID         id.GrantID     `json:"id" db:"id"`
	UserID     id.UserID      `json:"user_id" db:"user_id"`
	Entity     string         `json:"entity,omitempty" db:"entity"`
	ResourceID string         `json:"resource_id,omitempty" db:"resource_id"`
	AccessType AccessType     `json:"access_type" db:"access_type"`
	IsActive   bool           `json:"is_active" db:"is_active"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty" db:"expires_at"`
	GrantedBy  id.UserID      `json:"granted_by,omitempty" db:"granted_by"`
	Metadata   map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// Global reports whether the grant applies platform-wide rather than to
// one resource.
func (g *Grant) Global() bool {
	return g.Entity == "" && g.ResourceID == ""
}

// Effective reports whether the grant confers access at the given instant.
// Inactive or expired grants behave exactly as if no grant existed.
func (g *Grant) Effective(now time.Time) bool {
	if !g.IsActive {
		return false
	}
	if g.ExpiresAt != nil && !g.ExpiresAt.After(now) {
		return false
	}

	return true
}

// ListFilter contains filters for listing grants.
type ListFilter struct {
	UserID     *id.UserID `json:"user_id,omitempty"`
	Entity     string     `json:"entity,omitempty"`
	ResourceID string     `json:"resource_id,omitempty"`
	AccessType AccessType `json:"access_type,omitempty"`
	IsActive   *bool      `json:"is_active,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
