package verdict

import (
	"github.com/trackline/verdict/id"
	"github.com/trackline/verdict/role"
)

// Snapshot is the resolved actor state for one evaluation: the flat role
// and permission name sets. Lookups are exact string matches; there is no
// wildcard or hierarchy expansion.
type Snapshot struct {
	ActorID     id.UserID
	Roles       map[string]struct{}
	Permissions map[string]struct{}
}

// NewSnapshot builds a snapshot from flat name slices.
func NewSnapshot(actorID id.UserID, roles, permissions []string) *Snapshot {
	s := &Snapshot{
		ActorID:     actorID,
		Roles:       make(map[string]struct{}, len(roles)),
		Permissions: make(map[string]struct{}, len(permissions)),
	}
	for _, r := range roles {
		s.Roles[r] = struct{}{}
	}
	for _, p := range permissions {
		s.Permissions[p] = struct{}{}
	}

	return s
}

// HasPermission reports whether the actor holds the named permission.
func (s *Snapshot) HasPermission(name string) bool {
	_, ok := s.Permissions[name]
	return ok
}

// HasAnyPermission reports whether the actor holds at least one of the
// named permissions.
func (s *Snapshot) HasAnyPermission(names ...string) bool {
	for _, n := range names {
		if s.HasPermission(n) {
			return true
		}
	}

	return false
}

// HasAllPermissions reports whether the actor holds every named permission.
func (s *Snapshot) HasAllPermissions(names ...string) bool {
	for _, n := range names {
		if !s.HasPermission(n) {
			return false
		}
	}

	return true
}

// HasRole reports whether the actor holds the named role.
func (s *Snapshot) HasRole(name string) bool {
	_, ok := s.Roles[name]
	return ok
}

// HasAnyRole reports whether the actor holds at least one of the named roles.
func (s *Snapshot) HasAnyRole(names ...string) bool {
	for _, n := range names {
		if s.HasRole(n) {
			return true
		}
	}

	return false
}

// IsAdmin reports whether the actor holds an admin-tier role.
func (s *Snapshot) IsAdmin() bool {
	return s.HasAnyRole(role.Admin, role.SuperAdmin)
}
