package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trackline/verdict"
	"github.com/trackline/verdict/actor"
	"github.com/trackline/verdict/decisionlog"
	"github.com/trackline/verdict/grant"
	"github.com/trackline/verdict/id"
	"github.com/trackline/verdict/permission"
	"github.com/trackline/verdict/role"
	"github.com/trackline/verdict/store"
)

// Compile-time check that *Store implements store.Store.
var _ store.Store = (*Store)(nil)

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &actor.User{
		ID:          id.NewUserID(),
		Username:    "jdoe",
		DisplayName: "J. Doe",
		Department:  "operations",
		IsActive:    true,
	}

	// Create
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	// Duplicate username
	err := s.CreateUser(ctx, &actor.User{ID: id.NewUserID(), Username: "jdoe"})
	if !errors.Is(err, verdict.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}

	// Get
	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "jdoe" {
		t.Fatalf("expected jdoe, got %s", got.Username)
	}

	// GetByUsername
	got, err = s.GetUserByUsername(ctx, "jdoe")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != u.ID.String() {
		t.Fatal("username lookup mismatch")
	}

	// Update
	u.Department = "intelligence"
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetUser(ctx, u.ID)
	if got.Department != "intelligence" {
		t.Fatal("update failed")
	}

	// List with department filter
	list, _ := s.ListUsers(ctx, &actor.ListFilter{Department: "intelligence"})
	if len(list) != 1 {
		t.Fatalf("expected 1 user, got %d", len(list))
	}

	// Count
	count, _ := s.CountUsers(ctx, nil)
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	// Delete
	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	_, err = s.GetUser(ctx, u.ID)
	if !errors.Is(err, verdict.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
}

func TestRoleCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := &role.Role{
		ID:   id.NewRoleID(),
		Name: "analyst",
	}

	// Create
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	// Duplicate name
	err := s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), Name: "analyst"})
	if !errors.Is(err, verdict.ErrDuplicateRole) {
		t.Fatalf("expected ErrDuplicateRole, got %v", err)
	}

	// Get
	got, err := s.GetRole(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "analyst" {
		t.Fatalf("expected analyst, got %s", got.Name)
	}

	// GetByName
	got, err = s.GetRoleByName(ctx, "analyst")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != r.ID.String() {
		t.Fatal("name lookup mismatch")
	}

	// Update
	r.Description = "incident analyst"
	if err := s.UpdateRole(ctx, r); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetRole(ctx, r.ID)
	if got.Description != "incident analyst" {
		t.Fatal("update failed")
	}

	// List
	list, _ := s.ListRoles(ctx, &role.ListFilter{Search: "ana"})
	if len(list) != 1 {
		t.Fatalf("expected 1 role, got %d", len(list))
	}

	// Delete
	if err := s.DeleteRole(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	_, err = s.GetRole(ctx, r.ID)
	if !errors.Is(err, verdict.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound after delete, got %v", err)
	}
}

func TestPermissionCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &permission.Permission{
		ID:     id.NewPermissionID(),
		Name:   permission.Name("incident", "view"),
		Entity: "incident",
		Action: "view",
	}

	if err := s.CreatePermission(ctx, p); err != nil {
		t.Fatal(err)
	}

	err := s.CreatePermission(ctx, &permission.Permission{ID: id.NewPermissionID(), Name: "incident.view"})
	if !errors.Is(err, verdict.ErrDuplicatePermission) {
		t.Fatalf("expected ErrDuplicatePermission, got %v", err)
	}

	got, err := s.GetPermission(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "incident.view" {
		t.Fatal("mismatch")
	}

	got, err = s.GetPermissionByName(ctx, "incident.view")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != p.ID.String() {
		t.Fatal("name lookup mismatch")
	}

	list, _ := s.ListPermissions(ctx, &permission.ListFilter{Entity: "incident"})
	if len(list) != 1 {
		t.Fatalf("expected 1 permission, got %d", len(list))
	}

	if err := s.DeletePermission(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	_, err = s.GetPermission(ctx, p.ID)
	if !errors.Is(err, verdict.ErrPermissionNotFound) {
		t.Fatalf("expected ErrPermissionNotFound, got %v", err)
	}
}

func TestRolePermissionAttach(t *testing.T) {
	ctx := context.Background()
	s := New()

	roleID := id.NewRoleID()
	perm1 := id.NewPermissionID()
	perm2 := id.NewPermissionID()

	_ = s.CreateRole(ctx, &role.Role{ID: roleID, Name: "editor"})
	_ = s.CreatePermission(ctx, &permission.Permission{ID: perm1, Name: "info.view", Entity: "info", Action: "view"})
	_ = s.CreatePermission(ctx, &permission.Permission{ID: perm2, Name: "info.update", Entity: "info", Action: "update"})

	// Attach
	_ = s.AttachPermission(ctx, roleID, perm1)
	_ = s.AttachPermission(ctx, roleID, perm2)

	perms, _ := s.ListRolePermissions(ctx, roleID)
	if len(perms) != 2 {
		t.Fatalf("expected 2 permissions, got %d", len(perms))
	}

	// ListPermissionsByRole
	permObjs, _ := s.ListPermissionsByRole(ctx, roleID)
	if len(permObjs) != 2 {
		t.Fatalf("expected 2 permission objects, got %d", len(permObjs))
	}

	// Detach
	_ = s.DetachPermission(ctx, roleID, perm1)
	perms, _ = s.ListRolePermissions(ctx, roleID)
	if len(perms) != 1 {
		t.Fatalf("expected 1 permission after detach, got %d", len(perms))
	}

	// SetRolePermissions (replace all)
	_ = s.SetRolePermissions(ctx, roleID, []id.PermissionID{perm1})
	perms, _ = s.ListRolePermissions(ctx, roleID)
	if len(perms) != 1 {
		t.Fatalf("expected 1 permission after set, got %d", len(perms))
	}
}

func TestUserRoleBindings(t *testing.T) {
	ctx := context.Background()
	s := New()

	userID := id.NewUserID()
	roleID := id.NewRoleID()
	permID := id.NewPermissionID()
	directID := id.NewPermissionID()

	_ = s.CreateUser(ctx, &actor.User{ID: userID, Username: "asadi", IsActive: true})
	_ = s.CreateRole(ctx, &role.Role{ID: roleID, Name: "analyst"})
	_ = s.CreatePermission(ctx, &permission.Permission{ID: permID, Name: "incident.view", Entity: "incident", Action: "view"})
	_ = s.CreatePermission(ctx, &permission.Permission{ID: directID, Name: "meeting.create", Entity: "meeting", Action: "create"})

	_ = s.AttachPermission(ctx, roleID, permID)
	_ = s.AssignRole(ctx, userID, roleID)
	_ = s.GrantPermission(ctx, userID, directID)

	names, _ := s.ListRoleNamesForUser(ctx, userID)
	if len(names) != 1 || names[0] != "analyst" {
		t.Fatalf("expected [analyst], got %v", names)
	}

	// Role-derived and direct permissions combine.
	permNames, _ := s.ListPermissionNamesForUser(ctx, userID)
	if len(permNames) != 2 {
		t.Fatalf("expected 2 permission names, got %v", permNames)
	}

	users, _ := s.ListUsersForRole(ctx, roleID)
	if len(users) != 1 {
		t.Fatalf("expected 1 user for role, got %d", len(users))
	}

	_ = s.RevokeRole(ctx, userID, roleID)
	names, _ = s.ListRoleNamesForUser(ctx, userID)
	if len(names) != 0 {
		t.Fatalf("expected no roles after revoke, got %v", names)
	}

	_ = s.RevokePermission(ctx, userID, directID)
	permNames, _ = s.ListPermissionNamesForUser(ctx, userID)
	if len(permNames) != 0 {
		t.Fatalf("expected no permissions after revoke, got %v", permNames)
	}
}

func TestGrantCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	userID := id.NewUserID()
	g := &grant.Grant{
		ID:         id.NewGrantID(),
		UserID:     userID,
		Entity:     "incident_report",
		ResourceID: "rep-1",
		AccessType: grant.AccessReadOnly,
		IsActive:   true,
	}

	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetGrant(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessType != grant.AccessReadOnly {
		t.Fatal("mismatch")
	}

	active, err := s.ActiveGrant(ctx, userID, "incident_report", "rep-1")
	if err != nil {
		t.Fatal(err)
	}
	if active == nil {
		t.Fatal("expected active grant")
	}

	// No grant for a different scope.
	active, err = s.ActiveGrant(ctx, userID, "incident_report", "rep-2")
	if err != nil {
		t.Fatal(err)
	}
	if active != nil {
		t.Fatal("expected no grant for other resource")
	}

	// Deactivate
	if err := s.DeactivateGrant(ctx, g.ID); err != nil {
		t.Fatal(err)
	}
	active, _ = s.ActiveGrant(ctx, userID, "incident_report", "rep-1")
	if active != nil {
		t.Fatal("expected no active grant after deactivation")
	}

	// Deactivating again is a no-op.
	if err := s.DeactivateGrant(ctx, g.ID); err != nil {
		t.Fatal(err)
	}
}

func TestCreateGrantDeactivatesPrior(t *testing.T) {
	ctx := context.Background()
	s := New()

	userID := id.NewUserID()
	first := &grant.Grant{
		ID:         id.NewGrantID(),
		UserID:     userID,
		AccessType: grant.AccessReadOnly,
		IsActive:   true,
	}
	second := &grant.Grant{
		ID:         id.NewGrantID(),
		UserID:     userID,
		AccessType: grant.AccessFull,
		IsActive:   true,
	}

	_ = s.CreateGrant(ctx, first)
	_ = s.CreateGrant(ctx, second)

	// Only the newer grant is active for the global scope.
	active, _ := s.ActiveGlobalGrant(ctx, userID)
	if active == nil {
		t.Fatal("expected active global grant")
	}
	if active.ID.String() != second.ID.String() {
		t.Fatal("expected newest grant to win")
	}

	old, _ := s.GetGrant(ctx, first.ID)
	if old.IsActive {
		t.Fatal("prior grant should be deactivated")
	}
}

func TestDeleteExpiredGrants(t *testing.T) {
	ctx := context.Background()
	s := New()

	userID := id.NewUserID()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	_ = s.CreateGrant(ctx, &grant.Grant{
		ID: id.NewGrantID(), UserID: userID, Entity: "incident_report", ResourceID: "a",
		AccessType: grant.AccessFull, IsActive: true, ExpiresAt: &past,
	})
	_ = s.CreateGrant(ctx, &grant.Grant{
		ID: id.NewGrantID(), UserID: userID, Entity: "incident_report", ResourceID: "b",
		AccessType: grant.AccessFull, IsActive: true, ExpiresAt: &future,
	})

	deleted, err := s.DeleteExpiredGrants(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	remaining, _ := s.CountGrants(ctx, nil)
	if remaining != 1 {
		t.Fatalf("expected 1 remaining, got %d", remaining)
	}
}

func TestDecisionLogCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	actorID := id.NewUserID()
	e := &decisionlog.Entry{
		ID:         id.NewDecisionLogID(),
		ActorID:    actorID,
		Action:     "view",
		Entity:     "incident",
		ResourceID: "inc-1",
		Decision:   "allow",
		CreatedAt:  time.Now(),
	}

	if err := s.CreateDecisionLog(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetDecisionLog(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Decision != "allow" {
		t.Fatal("mismatch")
	}

	logs, _ := s.ListDecisionLogs(ctx, &decisionlog.QueryFilter{ActorID: &actorID})
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}

	// Purge
	purged, _ := s.PurgeDecisionLogs(ctx, time.Now().Add(time.Hour))
	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 5; i++ {
		_ = s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), Name: string(rune('a' + i))})
	}

	list, _ := s.ListRoles(ctx, &role.ListFilter{Limit: 2})
	if len(list) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(list))
	}

	list, _ = s.ListRoles(ctx, &role.ListFilter{Offset: 4})
	if len(list) != 1 {
		t.Fatalf("expected 1 role at offset 4, got %d", len(list))
	}

	list, _ = s.ListRoles(ctx, &role.ListFilter{Offset: 10})
	if len(list) != 0 {
		t.Fatalf("expected no roles past the end, got %d", len(list))
	}
}

func TestMigratePingClose(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
