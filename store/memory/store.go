// Package memory provides an in-memory implementation of the Verdict composite
// store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/trackline/verdict"
	"github.com/trackline/verdict/actor"
	"github.com/trackline/verdict/decisionlog"
	"github.com/trackline/verdict/grant"
	"github.com/trackline/verdict/id"
	"github.com/trackline/verdict/permission"
	"github.com/trackline/verdict/role"
)

// Compile-time interface checks.
var (
	_ actor.Store       = (*Store)(nil)
	_ role.Store        = (*Store)(nil)
	_ permission.Store  = (*Store)(nil)
	_ grant.Store       = (*Store)(nil)
	_ decisionlog.Store = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all Verdict entities.
type Store struct {
	mu sync.RWMutex

	users           map[string]*actor.User
	userRoles       map[string]map[string]struct{} // userID -> set of roleIDs
	userPerms       map[string]map[string]struct{} // userID -> set of direct permIDs
	roles           map[string]*role.Role
	rolePermissions map[string]map[string]struct{} // roleID -> set of permIDs
	permissions     map[string]*permission.Permission
	grants          map[string]*grant.Grant
	decisionLogs    map[string]*decisionlog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users:           make(map[string]*actor.User),
		userRoles:       make(map[string]map[string]struct{}),
		userPerms:       make(map[string]map[string]struct{}),
		roles:           make(map[string]*role.Role),
		rolePermissions: make(map[string]map[string]struct{}),
		permissions:     make(map[string]*permission.Permission),
		grants:          make(map[string]*grant.Grant),
		decisionLogs:    make(map[string]*decisionlog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Actor Store
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(_ context.Context, u *actor.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return fmt.Errorf("username %q: %w", u.Username, verdict.ErrDuplicateUser)
		}
	}
	s.users[u.ID.String()] = copyUser(u)
	return nil
}

func (s *Store) GetUser(_ context.Context, userID id.UserID) (*actor.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID.String()]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, verdict.ErrUserNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*actor.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("username %q: %w", username, verdict.ErrUserNotFound)
}

func (s *Store) UpdateUser(_ context.Context, u *actor.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID.String()]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, verdict.ErrUserNotFound)
	}
	for _, existing := range s.users {
		if existing.Username == u.Username && existing.ID.String() != u.ID.String() {
			return fmt.Errorf("username %q: %w", u.Username, verdict.ErrDuplicateUser)
		}
	}
	s.users[u.ID.String()] = copyUser(u)
	return nil
}

func (s *Store) DeleteUser(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uk := userID.String()
	delete(s.users, uk)
	delete(s.userRoles, uk)
	delete(s.userPerms, uk)
	return nil
}

func (s *Store) ListUsers(_ context.Context, filter *actor.ListFilter) ([]*actor.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*actor.User, 0, len(s.users))
	for _, u := range s.users {
		if filter != nil {
			if filter.IsActive != nil && u.IsActive != *filter.IsActive {
				continue
			}
			if filter.Department != "" && u.Department != filter.Department {
				continue
			}
			if filter.Search != "" && !matchSearch(filter.Search, u.Username, u.DisplayName) {
				continue
			}
		}
		result = append(result, copyUser(u))
	}
	return applyPagination(result, paginationOptsUser(filter)), nil
}

func (s *Store) CountUsers(ctx context.Context, filter *actor.ListFilter) (int64, error) {
	list, err := s.ListUsers(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) AssignRole(_ context.Context, userID id.UserID, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uk := userID.String()
	if s.userRoles[uk] == nil {
		s.userRoles[uk] = make(map[string]struct{})
	}
	s.userRoles[uk][roleID.String()] = struct{}{}
	return nil
}

func (s *Store) RevokeRole(_ context.Context, userID id.UserID, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if roles, ok := s.userRoles[userID.String()]; ok {
		delete(roles, roleID.String())
	}
	return nil
}

func (s *Store) ListUserRoles(_ context.Context, userID id.UserID) ([]id.RoleID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roles, ok := s.userRoles[userID.String()]
	if !ok {
		return nil, nil
	}
	result := make([]id.RoleID, 0, len(roles))
	for rid := range roles {
		parsed, err := id.ParseRoleID(rid)
		if err == nil {
			result = append(result, parsed)
		}
	}
	return result, nil
}

func (s *Store) ListUsersForRole(_ context.Context, roleID id.RoleID) ([]*actor.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rk := roleID.String()
	var result []*actor.User
	for uk, roles := range s.userRoles {
		if _, ok := roles[rk]; !ok {
			continue
		}
		if u, ok := s.users[uk]; ok {
			result = append(result, copyUser(u))
		}
	}
	return result, nil
}

func (s *Store) GrantPermission(_ context.Context, userID id.UserID, permID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uk := userID.String()
	if s.userPerms[uk] == nil {
		s.userPerms[uk] = make(map[string]struct{})
	}
	s.userPerms[uk][permID.String()] = struct{}{}
	return nil
}

func (s *Store) RevokePermission(_ context.Context, userID id.UserID, permID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if perms, ok := s.userPerms[userID.String()]; ok {
		delete(perms, permID.String())
	}
	return nil
}

func (s *Store) ListRoleNamesForUser(_ context.Context, userID id.UserID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roles, ok := s.userRoles[userID.String()]
	if !ok {
		return nil, nil
	}
	result := make([]string, 0, len(roles))
	for rid := range roles {
		if r, ok := s.roles[rid]; ok {
			result = append(result, r.Name)
		}
	}
	return result, nil
}

func (s *Store) ListPermissionNamesForUser(_ context.Context, userID id.UserID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uk := userID.String()
	seen := make(map[string]struct{})
	var result []string
	for rid := range s.userRoles[uk] {
		for pid := range s.rolePermissions[rid] {
			if _, dup := seen[pid]; dup {
				continue
			}
			seen[pid] = struct{}{}
			if p, ok := s.permissions[pid]; ok {
				result = append(result, p.Name)
			}
		}
	}
	for pid := range s.userPerms[uk] {
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		if p, ok := s.permissions[pid]; ok {
			result = append(result, p.Name)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Role Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.roles {
		if existing.Name == r.Name {
			return fmt.Errorf("role %q: %w", r.Name, verdict.ErrDuplicateRole)
		}
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) GetRole(_ context.Context, roleID id.RoleID) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID.String()]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, verdict.ErrRoleNotFound)
	}
	return copyRole(r), nil
}

func (s *Store) GetRoleByName(_ context.Context, name string) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.Name == name {
			return copyRole(r), nil
		}
	}
	return nil, fmt.Errorf("role %q: %w", name, verdict.ErrRoleNotFound)
}

func (s *Store) UpdateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID.String()]; !ok {
		return fmt.Errorf("role %s: %w", r.ID, verdict.ErrRoleNotFound)
	}
	for _, existing := range s.roles {
		if existing.Name == r.Name && existing.ID.String() != r.ID.String() {
			return fmt.Errorf("role %q: %w", r.Name, verdict.ErrDuplicateRole)
		}
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) DeleteRole(_ context.Context, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rk := roleID.String()
	delete(s.roles, rk)
	delete(s.rolePermissions, rk)
	for _, roles := range s.userRoles {
		delete(roles, rk)
	}
	return nil
}

func (s *Store) ListRoles(_ context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		if filter != nil {
			if filter.Search != "" && !matchSearch(filter.Search, r.Name) {
				continue
			}
		}
		result = append(result, copyRole(r))
	}
	return applyPagination(result, paginationOptsRole(filter)), nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	list, err := s.ListRoles(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListRolePermissions(_ context.Context, roleID id.RoleID) ([]id.PermissionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	perms, ok := s.rolePermissions[roleID.String()]
	if !ok {
		return nil, nil
	}
	result := make([]id.PermissionID, 0, len(perms))
	for pid := range perms {
		parsed, err := id.ParsePermissionID(pid)
		if err == nil {
			result = append(result, parsed)
		}
	}
	return result, nil
}

func (s *Store) AttachPermission(_ context.Context, roleID id.RoleID, permID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rk := roleID.String()
	if s.rolePermissions[rk] == nil {
		s.rolePermissions[rk] = make(map[string]struct{})
	}
	s.rolePermissions[rk][permID.String()] = struct{}{}
	return nil
}

func (s *Store) DetachPermission(_ context.Context, roleID id.RoleID, permID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if perms, ok := s.rolePermissions[roleID.String()]; ok {
		delete(perms, permID.String())
	}
	return nil
}

func (s *Store) SetRolePermissions(_ context.Context, roleID id.RoleID, permIDs []id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	perms := make(map[string]struct{}, len(permIDs))
	for _, pid := range permIDs {
		perms[pid.String()] = struct{}{}
	}
	s.rolePermissions[roleID.String()] = perms
	return nil
}

// ──────────────────────────────────────────────────
// Permission Store
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(_ context.Context, p *permission.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.permissions {
		if existing.Name == p.Name {
			return fmt.Errorf("permission %q: %w", p.Name, verdict.ErrDuplicatePermission)
		}
	}
	s.permissions[p.ID.String()] = copyPermission(p)
	return nil
}

func (s *Store) GetPermission(_ context.Context, permID id.PermissionID) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permissions[permID.String()]
	if !ok {
		return nil, fmt.Errorf("permission %s: %w", permID, verdict.ErrPermissionNotFound)
	}
	return copyPermission(p), nil
}

func (s *Store) GetPermissionByName(_ context.Context, name string) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.permissions {
		if p.Name == name {
			return copyPermission(p), nil
		}
	}
	return nil, fmt.Errorf("permission %q: %w", name, verdict.ErrPermissionNotFound)
}

func (s *Store) UpdatePermission(_ context.Context, p *permission.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permissions[p.ID.String()]; !ok {
		return fmt.Errorf("permission %s: %w", p.ID, verdict.ErrPermissionNotFound)
	}
	s.permissions[p.ID.String()] = copyPermission(p)
	return nil
}

func (s *Store) DeletePermission(_ context.Context, permID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := permID.String()
	delete(s.permissions, pk)
	for _, perms := range s.rolePermissions {
		delete(perms, pk)
	}
	for _, perms := range s.userPerms {
		delete(perms, pk)
	}
	return nil
}

func (s *Store) ListPermissions(_ context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*permission.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		if filter != nil {
			if filter.Entity != "" && p.Entity != filter.Entity {
				continue
			}
			if filter.Action != "" && p.Action != filter.Action {
				continue
			}
			if filter.Search != "" && !matchSearch(filter.Search, p.Name) {
				continue
			}
		}
		result = append(result, copyPermission(p))
	}
	return applyPagination(result, paginationOptsPerm(filter)), nil
}

func (s *Store) CountPermissions(ctx context.Context, filter *permission.ListFilter) (int64, error) {
	list, err := s.ListPermissions(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListPermissionsByRole(_ context.Context, roleID id.RoleID) ([]*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	perms, ok := s.rolePermissions[roleID.String()]
	if !ok {
		return nil, nil
	}
	var result []*permission.Permission
	for pid := range perms {
		if p, ok := s.permissions[pid]; ok {
			result = append(result, copyPermission(p))
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Grant Store
// ──────────────────────────────────────────────────

func (s *Store) CreateGrant(_ context.Context, g *grant.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Deactivate any existing active grant for the same (user, scope) pair.
	uk := g.UserID.String()
	for _, existing := range s.grants {
		if existing.IsActive && existing.UserID.String() == uk &&
			existing.Entity == g.Entity && existing.ResourceID == g.ResourceID {
			existing.IsActive = false
			existing.UpdatedAt = time.Now()
		}
	}
	s.grants[g.ID.String()] = copyGrant(g)
	return nil
}

func (s *Store) GetGrant(_ context.Context, grantID id.GrantID) (*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[grantID.String()]
	if !ok {
		return nil, fmt.Errorf("grant %s: %w", grantID, verdict.ErrGrantNotFound)
	}
	return copyGrant(g), nil
}

func (s *Store) ActiveGrant(_ context.Context, userID id.UserID, entity, resourceID string) (*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uk := userID.String()
	for _, g := range s.grants {
		if g.IsActive && g.UserID.String() == uk && g.Entity == entity && g.ResourceID == resourceID {
			return copyGrant(g), nil
		}
	}
	return nil, nil
}

func (s *Store) ActiveGlobalGrant(_ context.Context, userID id.UserID) (*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uk := userID.String()
	for _, g := range s.grants {
		if g.IsActive && g.UserID.String() == uk && g.Global() {
			return copyGrant(g), nil
		}
	}
	return nil, nil
}

func (s *Store) DeactivateGrant(_ context.Context, grantID id.GrantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grants[grantID.String()]
	if !ok {
		return fmt.Errorf("grant %s: %w", grantID, verdict.ErrGrantNotFound)
	}
	if g.IsActive {
		g.IsActive = false
		g.UpdatedAt = time.Now()
	}
	return nil
}

func (s *Store) ListGrants(_ context.Context, filter *grant.ListFilter) ([]*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*grant.Grant, 0, len(s.grants))
	for _, g := range s.grants {
		if filter != nil {
			if filter.UserID != nil && g.UserID.String() != filter.UserID.String() {
				continue
			}
			if filter.Entity != "" && g.Entity != filter.Entity {
				continue
			}
			if filter.ResourceID != "" && g.ResourceID != filter.ResourceID {
				continue
			}
			if filter.AccessType != "" && g.AccessType != filter.AccessType {
				continue
			}
			if filter.IsActive != nil && g.IsActive != *filter.IsActive {
				continue
			}
		}
		result = append(result, copyGrant(g))
	}
	return applyPagination(result, paginationOptsGrant(filter)), nil
}

func (s *Store) CountGrants(ctx context.Context, filter *grant.ListFilter) (int64, error) {
	list, err := s.ListGrants(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) DeleteExpiredGrants(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, g := range s.grants {
		if g.ExpiresAt != nil && g.ExpiresAt.Before(now) {
			delete(s.grants, k)
			count++
		}
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Decision Log Store
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(_ context.Context, e *decisionlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisionLogs[e.ID.String()] = copyEntry(e)
	return nil
}

func (s *Store) GetDecisionLog(_ context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.decisionLogs[logID.String()]
	if !ok {
		return nil, fmt.Errorf("decision log %s: %w", logID, verdict.ErrDecisionLogNotFound)
	}
	return copyEntry(e), nil
}

func (s *Store) ListDecisionLogs(_ context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*decisionlog.Entry, 0, len(s.decisionLogs))
	for _, e := range s.decisionLogs {
		if filter != nil {
			if filter.ActorID != nil && e.ActorID.String() != filter.ActorID.String() {
				continue
			}
			if filter.Action != "" && e.Action != filter.Action {
				continue
			}
			if filter.Entity != "" && e.Entity != filter.Entity {
				continue
			}
			if filter.ResourceID != "" && e.ResourceID != filter.ResourceID {
				continue
			}
			if filter.Decision != "" && e.Decision != filter.Decision {
				continue
			}
			if filter.After != nil && e.CreatedAt.Before(*filter.After) {
				continue
			}
			if filter.Before != nil && e.CreatedAt.After(*filter.Before) {
				continue
			}
		}
		result = append(result, copyEntry(e))
	}
	return applyPagination(result, paginationOptsLog(filter)), nil
}

func (s *Store) CountDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	list, err := s.ListDecisionLogs(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeDecisionLogs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, e := range s.decisionLogs {
		if e.CreatedAt.Before(before) {
			delete(s.decisionLogs, k)
			count++
		}
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func matchSearch(q string, fields ...string) bool {
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func copyUser(u *actor.User) *actor.User {
	c := *u
	c.Metadata = copyMeta(u.Metadata)
	return &c
}

func copyRole(r *role.Role) *role.Role {
	c := *r
	c.Metadata = copyMeta(r.Metadata)
	return &c
}

func copyPermission(p *permission.Permission) *permission.Permission {
	c := *p
	return &c
}

func copyGrant(g *grant.Grant) *grant.Grant {
	c := *g
	if g.ExpiresAt != nil {
		t := *g.ExpiresAt
		c.ExpiresAt = &t
	}
	c.Metadata = copyMeta(g.Metadata)
	return &c
}

func copyEntry(e *decisionlog.Entry) *decisionlog.Entry {
	c := *e
	c.Metadata = copyMeta(e.Metadata)
	return &c
}

func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Pagination helpers for each entity type.
type pagOpts struct{ limit, offset int }

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset >= len(items) && p.offset > 0 {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}

func paginationOptsUser(f *actor.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsRole(f *role.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsPerm(f *permission.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsGrant(f *grant.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsLog(f *decisionlog.QueryFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}
