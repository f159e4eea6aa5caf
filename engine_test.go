package verdict_test

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
	"github.com/trackline/verdict/store/memory"
)

func newTestEngine(t *testing.T, opts ...verdict.Option) (*verdict.Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	eng, err := verdict.NewEngine(append([]verdict.Option{verdict.WithStore(s)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return eng, s
}

// seedRBAC creates a user holding a single role-granted permission.
func seedRBAC(t *testing.T, s *memory.Store, entity, action string) (id.UserID, id.RoleID, id.PermissionID) {
	t.Helper()
	ctx := context.Background()

	u := &actor.User{ID: id.NewUserID(), Username: "tester", IsActive: true}
	r := &role.Role{ID: id.NewRoleID(), Name: "operator"}
	p := &permission.Permission{
		ID:     id.NewPermissionID(),
		Name:   permission.Name(entity, action),
		Entity: entity,
		Action: action,
	}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}
	if err := s.CreatePermission(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := s.AttachPermission(ctx, r.ID, p.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.AssignRole(ctx, u.ID, r.ID); err != nil {
		t.Fatal(err)
	}

	return u.ID, r.ID, p.ID
}

// testCache is a minimal SnapshotCache for exercising cache wiring.
type testCache struct {
	entries map[string]*verdict.Snapshot
}

func newTestCache() *testCache {
	return &testCache{entries: make(map[string]*verdict.Snapshot)}
}

func (c *testCache) Get(_ context.Context, actorID id.UserID) (*verdict.Snapshot, bool) {
	snap, ok := c.entries[actorID.String()]
	return snap, ok
}

func (c *testCache) Set(_ context.Context, actorID id.UserID, snap *verdict.Snapshot) {
	c.entries[actorID.String()] = snap
}

func (c *testCache) InvalidateActor(_ context.Context, actorID id.UserID) {
	delete(c.entries, actorID.String())
}

func (c *testCache) InvalidateAll(_ context.Context) {
	c.entries = make(map[string]*verdict.Snapshot)
}

func mustAllow(t *testing.T, eng *verdict.Engine, req *verdict.CheckRequest) {
	t.Helper()
	result, err := eng.Check(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allowed, got %s: %s", result.Decision, result.Reason)
	}
}

func mustDeny(t *testing.T, eng *verdict.Engine, req *verdict.CheckRequest, want verdict.Decision) {
	t.Helper()
	result, err := eng.Check(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatalf("expected denied (%s), got allowed", want)
	}
	if result.Decision != want {
		t.Fatalf("expected decision %s, got %s: %s", want, result.Decision, result.Reason)
	}
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := verdict.NewEngine()
	if err == nil {
		t.Fatal("expected error when store is nil")
	}
}

func TestCheck_PermissionGate(t *testing.T) {
	eng, _ := newTestEngine(t)
	actorID := id.NewUserID()

	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: []string{"incident.update"},
		Action:      verdict.ActionUpdate,
		Entity:      verdict.EntityIncident,
		Resource:    &verdict.Resource{ID: "inc1"},
	})

	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: []string{"incident.view"},
		Action:      verdict.ActionUpdate,
		Entity:      verdict.EntityIncident,
		Resource:    &verdict.Resource{ID: "inc1"},
	}, verdict.DecisionDenyNoPermission)
}

func TestCheck_UnknownActionDenies(t *testing.T) {
	eng, _ := newTestEngine(t)

	result, err := eng.Check(context.Background(), &verdict.CheckRequest{
		ActorID:     id.NewUserID(),
		Permissions: []string{"incident.update"},
		Action:      verdict.Action("approve"),
		Entity:      verdict.EntityIncident,
		Resource:    &verdict.Resource{ID: "inc1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected denied for unknown action")
	}
	if result.Decision != verdict.DecisionDenyUnknownAction {
		t.Fatalf("expected %s, got %s", verdict.DecisionDenyUnknownAction, result.Decision)
	}
}

func TestCheck_UnknownEntityDenies(t *testing.T) {
	eng, _ := newTestEngine(t)

	result, err := eng.Check(context.Background(), &verdict.CheckRequest{
		ActorID: id.NewUserID(),
		Action:  verdict.ActionViewAny,
		Entity:  verdict.Entity("spaceship"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected denied for unknown entity")
	}
}

func TestCheck_ResourceRequired(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.Check(context.Background(), &verdict.CheckRequest{
		ActorID:     id.NewUserID(),
		Permissions: []string{"incident.update"},
		Action:      verdict.ActionUpdate,
		Entity:      verdict.EntityIncident,
	})
	if !errors.Is(err, verdict.ErrResourceRequired) {
		t.Fatalf("expected ErrResourceRequired, got %v", err)
	}

	// List-level actions never need a resource.
	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID:     id.NewUserID(),
		Permissions: []string{"incident.view_any"},
		Action:      verdict.ActionViewAny,
		Entity:      verdict.EntityIncident,
	})
}

func TestCheck_ConfirmedLock(t *testing.T) {
	eng, _ := newTestEngine(t)
	actorID := id.NewUserID()
	perms := []string{"info.update", "info.delete", "info.view"}

	// Confirmed records reject every mutation, creator or not.
	for _, action := range []verdict.Action{verdict.ActionUpdate, verdict.ActionDelete, verdict.ActionRestore} {
		mustDeny(t, eng, &verdict.CheckRequest{
			ActorID:     actorID,
			Permissions: perms,
			Action:      action,
			Entity:      verdict.EntityInfo,
			Resource:    &verdict.Resource{ID: "i1", CreatedBy: actorID, Confirmed: true},
		}, verdict.DecisionDenyConfirmed)
	}
}

func TestCheck_OwnerLock(t *testing.T) {
	eng, _ := newTestEngine(t)
	creator := id.NewUserID()
	stranger := id.NewUserID()
	perms := []string{"meeting.view", "meeting.update", "meeting.delete"}

	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID:     creator,
		Permissions: perms,
		Action:      verdict.ActionUpdate,
		Entity:      verdict.EntityMeeting,
		Resource:    &verdict.Resource{ID: "m1", CreatedBy: creator},
	})

	// Permission alone is not enough for owner-locked entities.
	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:     stranger,
		Permissions: perms,
		Action:      verdict.ActionUpdate,
		Entity:      verdict.EntityMeeting,
		Resource:    &verdict.Resource{ID: "m1", CreatedBy: creator},
	}, verdict.DecisionDenyNotOwner)
}

func TestCheck_DependentsBlockDelete(t *testing.T) {
	eng, _ := newTestEngine(t)
	actorID := id.NewUserID()
	perms := []string{"department.delete", "department.update"}

	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: perms,
		Action:      verdict.ActionDelete,
		Entity:      verdict.EntityDepartment,
		Resource:    &verdict.Resource{ID: "d1", Dependents: 3},
	}, verdict.DecisionDenyDependents)

	// Updates are unaffected by dependents.
	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: perms,
		Action:      verdict.ActionUpdate,
		Entity:      verdict.EntityDepartment,
		Resource:    &verdict.Resource{ID: "d1", Dependents: 3},
	})

	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: perms,
		Action:      verdict.ActionDelete,
		Entity:      verdict.EntityDepartment,
		Resource:    &verdict.Resource{ID: "d1"},
	})
}

func TestCheck_AdminWrites(t *testing.T) {
	eng, _ := newTestEngine(t)
	actorID := id.NewUserID()
	perms := []string{"info_category.create", "info_category.view"}

	// Permission without the admin role is not enough for writes.
	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: perms,
		Action:      verdict.ActionCreate,
		Entity:      verdict.EntityInfoCategory,
	}, verdict.DecisionDenyNotAdmin)

	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID:     actorID,
		Roles:       []string{"admin"},
		Permissions: perms,
		Action:      verdict.ActionCreate,
		Entity:      verdict.EntityInfoCategory,
	})

	// Reads stay permission-only.
	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: perms,
		Action:      verdict.ActionView,
		Entity:      verdict.EntityInfoCategory,
		Resource:    &verdict.Resource{ID: "c1"},
	})
}

func TestCheck_UserManagementIsAdminOnly(t *testing.T) {
	eng, _ := newTestEngine(t)
	actorID := id.NewUserID()

	// Permission strings are ignored for user management.
	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: []string{"user.create", "user.delete"},
		Action:      verdict.ActionCreate,
		Entity:      verdict.EntityUser,
	}, verdict.DecisionDenyNotAdmin)

	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID: actorID,
		Roles:   []string{"admin"},
		Action:  verdict.ActionCreate,
		Entity:  verdict.EntityUser,
	})

	// Deletion needs superadmin; admin is not enough.
	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:  actorID,
		Roles:    []string{"admin"},
		Action:   verdict.ActionDelete,
		Entity:   verdict.EntityUser,
		Resource: &verdict.Resource{ID: "u2"},
	}, verdict.DecisionDenyNotAdmin)

	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID:  actorID,
		Roles:    []string{"superadmin"},
		Action:   verdict.ActionDelete,
		Entity:   verdict.EntityUser,
		Resource: &verdict.Resource{ID: "u2"},
	})
}

func TestCheck_ReservedRolesSurviveDeletion(t *testing.T) {
	eng, _ := newTestEngine(t)
	actorID := id.NewUserID()

	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:  actorID,
		Roles:    []string{"superadmin"},
		Action:   verdict.ActionDelete,
		Entity:   verdict.EntityRole,
		Resource: &verdict.Resource{ID: "r1", RoleName: "admin"},
	}, verdict.DecisionDenyReservedRole)

	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:  actorID,
		Roles:    []string{"superadmin"},
		Action:   verdict.ActionDelete,
		Entity:   verdict.EntityRole,
		Resource: &verdict.Resource{ID: "r2", RoleName: "superadmin"},
	}, verdict.DecisionDenyReservedRole)

	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID:  actorID,
		Roles:    []string{"superadmin"},
		Action:   verdict.ActionDelete,
		Entity:   verdict.EntityRole,
		Resource: &verdict.Resource{ID: "r3", RoleName: "editor"},
	})
}

func TestCheck_InfoViewVisibility(t *testing.T) {
	eng, _ := newTestEngine(t)
	creator := id.NewUserID()
	assignee := id.NewUserID()
	confirmer := id.NewUserID()
	stranger := id.NewUserID()

	res := &verdict.Resource{ID: "i1", CreatedBy: creator, AssignedTo: assignee, ConfirmedBy: confirmer}

	// View is permissionless: involvement decides.
	for _, involved := range []id.UserID{creator, assignee, confirmer} {
		mustAllow(t, eng, &verdict.CheckRequest{
			ActorID: involved, Permissions: []string{},
			Action: verdict.ActionView, Entity: verdict.EntityInfo, Resource: res,
		})
	}
	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID: stranger, Permissions: []string{},
		Action: verdict.ActionView, Entity: verdict.EntityInfo, Resource: res,
	}, verdict.DecisionDenyNotOwner)

	// Everyone sees confirmed records.
	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID: stranger, Permissions: []string{},
		Action: verdict.ActionView, Entity: verdict.EntityInfo,
		Resource: &verdict.Resource{ID: "i2", CreatedBy: creator, Confirmed: true},
	})
}

func TestCheck_InfoSelfConfirmBanned(t *testing.T) {
	eng, _ := newTestEngine(t)
	creator := id.NewUserID()
	reviewer := id.NewUserID()
	perms := []string{"info.confirm"}

	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:     creator,
		Permissions: perms,
		Action:      verdict.ActionConfirm,
		Entity:      verdict.EntityInfo,
		Resource:    &verdict.Resource{ID: "i1", CreatedBy: creator},
	}, verdict.DecisionDenySelfConfirm)

	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID:     reviewer,
		Permissions: perms,
		Action:      verdict.ActionConfirm,
		Entity:      verdict.EntityInfo,
		Resource:    &verdict.Resource{ID: "i1", CreatedBy: creator},
	})

	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:     reviewer,
		Permissions: perms,
		Action:      verdict.ActionConfirm,
		Entity:      verdict.EntityInfo,
		Resource:    &verdict.Resource{ID: "i1", CreatedBy: creator, Confirmed: true},
	}, verdict.DecisionDenyConfirmed)
}

func TestCheck_InfoNeverForceDeleted(t *testing.T) {
	eng, _ := newTestEngine(t)
	creator := id.NewUserID()

	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:     creator,
		Roles:       []string{"superadmin"},
		Permissions: []string{"info.force_delete"},
		Action:      verdict.ActionForceDelete,
		Entity:      verdict.EntityInfo,
		Resource:    &verdict.Resource{ID: "i1", CreatedBy: creator},
	}, verdict.DecisionDenyUnsupported)
}

func TestCheck_GrantGatedViewAny(t *testing.T) {
	eng, s := newTestEngine(t)
	actorID := id.NewUserID()
	perms := []string{"incident_report.view_any"}

	req := &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: perms,
		Action:      verdict.ActionViewAny,
		Entity:      verdict.EntityIncidentReport,
	}

	// Permission alone does not open the report list.
	mustDeny(t, eng, req, verdict.DecisionDenyNoGrant)

	// A global grant with view access completes the AND-gate.
	if err := s.CreateGrant(context.Background(), &grant.Grant{
		ID: id.NewGrantID(), UserID: actorID,
		AccessType: grant.AccessReadOnly, IsActive: true,
	}); err != nil {
		t.Fatal(err)
	}
	mustAllow(t, eng, req)

	// The grant never substitutes for the permission.
	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: []string{},
		Action:      verdict.ActionViewAny,
		Entity:      verdict.EntityIncidentReport,
	}, verdict.DecisionDenyNoPermission)
}

func TestCheck_GrantGatedEntity(t *testing.T) {
	eng, s := newTestEngine(t)
	ctx := context.Background()
	actorID := id.NewUserID()
	perms := []string{"incident_report.view", "incident_report.update", "incident_report.download"}

	req := func(action verdict.Action) *verdict.CheckRequest {
		return &verdict.CheckRequest{
			ActorID:     actorID,
			Permissions: perms,
			Action:      action,
			Entity:      verdict.EntityIncidentReport,
			Resource:    &verdict.Resource{ID: "rep1"},
		}
	}

	// Permission without a grant denies.
	mustDeny(t, eng, req(verdict.ActionView), verdict.DecisionDenyNoGrant)

	// A read-only grant opens views but not mutations or downloads.
	g := &grant.Grant{
		ID: id.NewGrantID(), UserID: actorID,
		Entity: string(verdict.EntityIncidentReport), ResourceID: "rep1",
		AccessType: grant.AccessReadOnly, IsActive: true,
	}
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}
	mustAllow(t, eng, req(verdict.ActionView))
	mustDeny(t, eng, req(verdict.ActionUpdate), verdict.DecisionDenyNoGrant)
	mustDeny(t, eng, req(verdict.ActionDownload), verdict.DecisionDenyNoGrant)

	// Full access opens everything.
	full := &grant.Grant{
		ID: id.NewGrantID(), UserID: actorID,
		Entity: string(verdict.EntityIncidentReport), ResourceID: "rep1",
		AccessType: grant.AccessFull, IsActive: true,
	}
	if err := s.CreateGrant(ctx, full); err != nil {
		t.Fatal(err)
	}
	mustAllow(t, eng, req(verdict.ActionUpdate))
	mustAllow(t, eng, req(verdict.ActionDownload))

	// Deactivation makes the grant vanish.
	if err := s.DeactivateGrant(ctx, full.ID); err != nil {
		t.Fatal(err)
	}
	mustDeny(t, eng, req(verdict.ActionView), verdict.DecisionDenyNoGrant)
}

func TestCheck_IncidentsOnlyGrant(t *testing.T) {
	eng, s := newTestEngine(t)
	actorID := id.NewUserID()
	perms := []string{"incident_report.view", "incident_report.download"}

	g := &grant.Grant{
		ID: id.NewGrantID(), UserID: actorID,
		Entity: string(verdict.EntityIncidentReport), ResourceID: "rep1",
		AccessType: grant.AccessIncidentsOnly, IsActive: true,
	}
	if err := s.CreateGrant(context.Background(), g); err != nil {
		t.Fatal(err)
	}

	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID: actorID, Permissions: perms,
		Action: verdict.ActionDownload, Entity: verdict.EntityIncidentReport,
		Resource: &verdict.Resource{ID: "rep1"},
	})
	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID: actorID, Permissions: perms,
		Action: verdict.ActionView, Entity: verdict.EntityIncidentReport,
		Resource: &verdict.Resource{ID: "rep1"},
	}, verdict.DecisionDenyNoGrant)
}

func TestCheck_GrantExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	eng, s := newTestEngine(t, verdict.WithClock(func() time.Time { return now }))
	actorID := id.NewUserID()
	perms := []string{"incident_report.view"}

	expiry := now.Add(time.Hour)
	g := &grant.Grant{
		ID: id.NewGrantID(), UserID: actorID,
		Entity: string(verdict.EntityIncidentReport), ResourceID: "rep1",
		AccessType: grant.AccessReadOnly, IsActive: true, ExpiresAt: &expiry,
	}
	if err := s.CreateGrant(context.Background(), g); err != nil {
		t.Fatal(err)
	}

	req := &verdict.CheckRequest{
		ActorID: actorID, Permissions: perms,
		Action: verdict.ActionView, Entity: verdict.EntityIncidentReport,
		Resource: &verdict.Resource{ID: "rep1"},
	}
	mustAllow(t, eng, req)

	// Past expiry the grant is treated as absent.
	now = now.Add(2 * time.Hour)
	mustDeny(t, eng, req, verdict.DecisionDenyNoGrant)
}

func TestCheck_ResourceGrantBeatsGlobal(t *testing.T) {
	eng, s := newTestEngine(t)
	ctx := context.Background()
	actorID := id.NewUserID()
	perms := []string{"incident_report.update"}

	// Global full access.
	if err := s.CreateGrant(ctx, &grant.Grant{
		ID: id.NewGrantID(), UserID: actorID,
		AccessType: grant.AccessFull, IsActive: true,
	}); err != nil {
		t.Fatal(err)
	}
	// Resource-specific read-only grant narrows it for rep1.
	if err := s.CreateGrant(ctx, &grant.Grant{
		ID: id.NewGrantID(), UserID: actorID,
		Entity: string(verdict.EntityIncidentReport), ResourceID: "rep1",
		AccessType: grant.AccessReadOnly, IsActive: true,
	}); err != nil {
		t.Fatal(err)
	}

	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID: actorID, Permissions: perms,
		Action: verdict.ActionUpdate, Entity: verdict.EntityIncidentReport,
		Resource: &verdict.Resource{ID: "rep1"},
	}, verdict.DecisionDenyNoGrant)

	// Other resources fall through to the global grant.
	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID: actorID, Permissions: perms,
		Action: verdict.ActionUpdate, Entity: verdict.EntityIncidentReport,
		Resource: &verdict.Resource{ID: "rep2"},
	})
}

func TestCheck_CenterInfoItemParentLock(t *testing.T) {
	eng, _ := newTestEngine(t)
	creator := id.NewUserID()
	perms := []string{
		"national_insight_center_info_item.create",
		"national_insight_center_info_item.update",
		"national_insight_center_info_item.update_stats",
	}

	// A confirmed parent locks everything, including create and update_stats.
	for _, action := range []verdict.Action{verdict.ActionCreate, verdict.ActionUpdate, verdict.ActionUpdateStats} {
		mustDeny(t, eng, &verdict.CheckRequest{
			ActorID:     creator,
			Permissions: perms,
			Action:      action,
			Entity:      verdict.EntityNICInfoItem,
			Resource:    &verdict.Resource{ID: "it1", ParentID: "n1", CreatedBy: creator, ParentConfirmed: true},
		}, verdict.DecisionDenyParentConfirmed)
	}
}

func TestCheck_CenterInfoItemUpdateStatsAsymmetry(t *testing.T) {
	eng, _ := newTestEngine(t)
	creator := id.NewUserID()
	perms := []string{
		"national_insight_center_info_item.update",
		"national_insight_center_info_item.update_stats",
	}

	confirmedItem := &verdict.Resource{ID: "it1", ParentID: "n1", CreatedBy: creator, Confirmed: true}

	// A confirmed item rejects update...
	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID:     creator,
		Permissions: perms,
		Action:      verdict.ActionUpdate,
		Entity:      verdict.EntityNICInfoItem,
		Resource:    confirmedItem,
	}, verdict.DecisionDenyConfirmed)

	// ...but still accepts update_stats while the parent is open.
	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID:     creator,
		Permissions: perms,
		Action:      verdict.ActionUpdateStats,
		Entity:      verdict.EntityNICInfoItem,
		Resource:    confirmedItem,
	})
}

func TestCheck_CenterInfoGrantReads(t *testing.T) {
	eng, s := newTestEngine(t)
	ctx := context.Background()
	creator := id.NewUserID()
	reader := id.NewUserID()
	perms := []string{"national_insight_center_info.view"}

	res := &verdict.Resource{ID: "n1", CreatedBy: creator}

	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID: creator, Permissions: perms,
		Action: verdict.ActionView, Entity: verdict.EntityNICInfo, Resource: res,
	})
	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID: reader, Permissions: perms,
		Action: verdict.ActionView, Entity: verdict.EntityNICInfo, Resource: res,
	}, verdict.DecisionDenyNoGrant)

	// Any effective grant on the record opens reads for non-creators.
	if err := s.CreateGrant(ctx, &grant.Grant{
		ID: id.NewGrantID(), UserID: reader,
		Entity: string(verdict.EntityNICInfo), ResourceID: "n1",
		AccessType: grant.AccessReadOnly, IsActive: true,
	}); err != nil {
		t.Fatal(err)
	}
	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID: reader, Permissions: perms,
		Action: verdict.ActionView, Entity: verdict.EntityNICInfo, Resource: res,
	})
}

func TestCheck_CenterInfoMutationsCreatorOnly(t *testing.T) {
	eng, s := newTestEngine(t)
	ctx := context.Background()
	creator := id.NewUserID()
	other := id.NewUserID()
	perms := []string{"national_insight_center_info.update"}

	// Even a full grant does not open mutations to non-creators.
	if err := s.CreateGrant(ctx, &grant.Grant{
		ID: id.NewGrantID(), UserID: other,
		Entity: string(verdict.EntityNICInfo), ResourceID: "n1",
		AccessType: grant.AccessFull, IsActive: true,
	}); err != nil {
		t.Fatal(err)
	}
	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID: other, Permissions: perms,
		Action: verdict.ActionUpdate, Entity: verdict.EntityNICInfo,
		Resource: &verdict.Resource{ID: "n1", CreatedBy: creator},
	}, verdict.DecisionDenyNotOwner)

	mustAllow(t, eng, &verdict.CheckRequest{
		ActorID: creator, Permissions: perms,
		Action: verdict.ActionUpdate, Entity: verdict.EntityNICInfo,
		Resource: &verdict.Resource{ID: "n1", CreatedBy: creator},
	})

	mustDeny(t, eng, &verdict.CheckRequest{
		ActorID: creator, Permissions: perms,
		Action: verdict.ActionUpdate, Entity: verdict.EntityNICInfo,
		Resource: &verdict.Resource{ID: "n1", CreatedBy: creator, Confirmed: true},
	}, verdict.DecisionDenyConfirmed)
}

func TestEnforce(t *testing.T) {
	eng, _ := newTestEngine(t)
	actorID := id.NewUserID()

	err := eng.Enforce(context.Background(), &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: []string{"incident.view_any"},
		Action:      verdict.ActionViewAny,
		Entity:      verdict.EntityIncident,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = eng.Enforce(context.Background(), &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: []string{},
		Action:      verdict.ActionViewAny,
		Entity:      verdict.EntityIncident,
	})
	if !errors.Is(err, verdict.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestCan_ResolvesFromStore(t *testing.T) {
	eng, s := newTestEngine(t)
	ctx := context.Background()

	userID, roleID, permID := seedRBAC(t, s, "incident", "view_any")

	ok, err := eng.Can(ctx, userID, verdict.ActionViewAny, verdict.EntityIncident)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected allowed via store-resolved snapshot")
	}

	// Detach and re-check: no caching by default, the change is visible.
	if err := s.DetachPermission(ctx, roleID, permID); err != nil {
		t.Fatal(err)
	}
	ok, err = eng.Can(ctx, userID, verdict.ActionViewAny, verdict.EntityIncident)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected denied after permission detach")
	}
}

func TestCheck_SnapshotCacheInvalidation(t *testing.T) {
	eng, s := newTestEngine(t,
		verdict.WithCache(newTestCache()),
		verdict.WithConfig(verdict.Config{SnapshotTTL: time.Minute}),
	)
	ctx := context.Background()

	userID, roleID, permID := seedRBAC(t, s, "incident", "view_any")

	ok, err := eng.Can(ctx, userID, verdict.ActionViewAny, verdict.EntityIncident)
	if err != nil || !ok {
		t.Fatalf("expected allowed, got %v %v", ok, err)
	}

	// The cached snapshot keeps serving until invalidated.
	if err := s.DetachPermission(ctx, roleID, permID); err != nil {
		t.Fatal(err)
	}
	ok, _ = eng.Can(ctx, userID, verdict.ActionViewAny, verdict.EntityIncident)
	if !ok {
		t.Fatal("expected stale cached snapshot to still allow")
	}

	eng.InvalidateActor(ctx, userID)
	ok, _ = eng.Can(ctx, userID, verdict.ActionViewAny, verdict.EntityIncident)
	if ok {
		t.Fatal("expected denied after invalidation")
	}
}

func TestCheck_RecordsDecisions(t *testing.T) {
	eng, s := newTestEngine(t, verdict.WithConfig(verdict.Config{RecordDecisions: true}))
	ctx := context.Background()
	actorID := id.NewUserID()

	_, err := eng.Check(ctx, &verdict.CheckRequest{
		ActorID:     actorID,
		Permissions: []string{},
		Action:      verdict.ActionViewAny,
		Entity:      verdict.EntityIncident,
	})
	if err != nil {
		t.Fatal(err)
	}

	entries, err := s.ListDecisionLogs(ctx, &decisionlog.QueryFilter{ActorID: &actorID})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 decision log entry, got %d", len(entries))
	}
	if entries[0].Decision != string(verdict.DecisionDenyNoPermission) {
		t.Fatalf("unexpected recorded decision %s", entries[0].Decision)
	}
}

func TestCheck_EvalTime(t *testing.T) {
	eng, _ := newTestEngine(t)

	result, err := eng.Check(context.Background(), &verdict.CheckRequest{
		ActorID:     id.NewUserID(),
		Permissions: []string{"incident.view_any"},
		Action:      verdict.ActionViewAny,
		Entity:      verdict.EntityIncident,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.EvalTimeNs <= 0 {
		t.Fatal("expected positive eval time")
	}
}
