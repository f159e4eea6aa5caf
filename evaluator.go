package verdict

import (
	"context"
	"fmt"
	"time"

	"github.com/trackline/verdict/grant"
	"github.com/trackline/verdict/permission"
	"github.com/trackline/verdict/role"
)

// evalContext carries the resolved state for one evaluation: the request,
// the actor snapshot, and the clock reading the whole decision is pinned to.
type evalContext struct {
	eng  *Engine
	req  *CheckRequest
	snap *Snapshot
	now  time.Time
}

// can reports whether the actor holds "<entity>.<action>".
func (ec *evalContext) can(a Action) bool {
	return ec.snap.HasPermission(permission.Name(string(ec.req.Entity), string(a)))
}

// isCreator reports whether the actor created the target resource.
func (ec *evalContext) isCreator() bool {
	r := ec.req.Resource
	if r == nil || r.CreatedBy.IsNil() {
		return false
	}

	return r.CreatedBy.String() == ec.snap.ActorID.String()
}

// effectiveGrant returns the actor's effective grant for the given scope,
// preferring a resource-specific grant over a global one. Inactive and
// expired grants are treated as absent. Returns nil when no grant applies.
func (ec *evalContext) effectiveGrant(ctx context.Context, entity Entity, resourceID string) (*grant.Grant, error) {
	if resourceID != "" {
		g, err := ec.eng.store.ActiveGrant(ctx, ec.snap.ActorID, string(entity), resourceID)
		if err != nil {
			return nil, fmt.Errorf("verdict: resolve grant: %w", err)
		}
		if g != nil && g.Effective(ec.now) {
			return g, nil
		}
	}

	g, err := ec.eng.store.ActiveGlobalGrant(ctx, ec.snap.ActorID)
	if err != nil {
		return nil, fmt.Errorf("verdict: resolve global grant: %w", err)
	}
	if g != nil && g.Effective(ec.now) {
		return g, nil
	}

	return nil, nil //nolint:nilnil // nil grant means no effective grant
}

func allow() *CheckResult {
	return &CheckResult{Allowed: true, Decision: DecisionAllow}
}

func deny(d Decision, reason string) *CheckResult {
	return &CheckResult{Decision: d, Reason: reason}
}

// evaluate dispatches one check to the target entity's descriptor.
// It is total: unknown actions and entities resolve to deny, never panic.
func (e *Engine) evaluate(ctx context.Context, ec *evalContext) (*CheckResult, error) {
	req := ec.req

	if !req.Action.Valid() {
		return deny(DecisionDenyUnknownAction, fmt.Sprintf("unknown action %q", req.Action)), nil
	}

	desc, ok := descriptors[req.Entity]
	if !ok {
		return deny(DecisionDenyDefault, fmt.Sprintf("unknown entity %q", req.Entity)), nil
	}

	if desc.AdminOnly {
		return evalAdminOnly(ec), nil
	}

	if desc.override != nil {
		return desc.override(ctx, ec)
	}

	return e.evalGeneric(ctx, desc, ec)
}

// evalAdminOnly gates user and role management on coarse role checks;
// permission strings are bypassed entirely.
func evalAdminOnly(ec *evalContext) *CheckResult {
	switch ec.req.Action {
	case ActionViewAny, ActionView, ActionCreate, ActionUpdate:
		if ec.snap.IsAdmin() {
			return allow()
		}

		return deny(DecisionDenyNotAdmin, "admin role required")

	case ActionDelete, ActionRestore, ActionForceDelete:
		if !ec.snap.HasRole(role.SuperAdmin) {
			return deny(DecisionDenyNotAdmin, "superadmin role required")
		}
		if ec.req.Entity == EntityRole {
			r := ec.req.Resource
			if r != nil && role.Reserved(r.RoleName) {
				return deny(DecisionDenyReservedRole, fmt.Sprintf("role %q is reserved", r.RoleName))
			}
		}

		return allow()

	default:
		return deny(DecisionDenyUnsupported, fmt.Sprintf("action %q not supported for %s", ec.req.Action, ec.req.Entity))
	}
}

// mutatesState reports whether the action writes the record. These are the
// actions a confirmation lock vetoes.
func mutatesState(a Action) bool {
	switch a {
	case ActionUpdate, ActionDelete, ActionRestore, ActionForceDelete:
		return true
	default:
		return false
	}
}

// ownerChecked reports whether owner-locked entities restrict this action
// to the creator.
func ownerChecked(a Action) bool {
	switch a {
	case ActionView, ActionUpdate, ActionDelete, ActionRestore, ActionForceDelete:
		return true
	default:
		return false
	}
}

// writeAction reports whether the action is a mutation for the purposes
// of the admin-writes gate.
func writeAction(a Action) bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionRestore, ActionForceDelete, ActionManage:
		return true
	default:
		return false
	}
}

// grantCapability maps an action on a grant-gated entity to the access
// level capability it requires. Reads need view access, the incidents
// section export needs the incidents capability, mutations need full
// access.
func grantCapability(a Action) func(grant.AccessType) bool {
	switch a {
	case ActionViewAny, ActionView, ActionPrint, ActionPrintDates:
		return grant.AccessType.CanView
	case ActionDownload:
		return grant.AccessType.CanViewIncidents
	default:
		return grant.AccessType.CanManage
	}
}

// evalGeneric is the shared path for permission-gated entities: permission
// first, then the state-predicate vetoes the descriptor enables.
func (e *Engine) evalGeneric(ctx context.Context, desc *Descriptor, ec *evalContext) (*CheckResult, error) {
	req := ec.req
	res := req.Resource

	if !ec.can(req.Action) {
		return deny(DecisionDenyNoPermission,
			fmt.Sprintf("missing permission %s", permission.Name(string(req.Entity), string(req.Action)))), nil
	}

	if desc.ParentConfirmable && res != nil && res.ParentConfirmed &&
		(mutatesState(req.Action) || req.Action == ActionCreate || req.Action == ActionConfirm || req.Action == ActionUpdateStats) {
		return deny(DecisionDenyParentConfirmed, "parent record is confirmed"), nil
	}

	if desc.Confirmable && res != nil && res.Confirmed && mutatesState(req.Action) {
		return deny(DecisionDenyConfirmed, "record is confirmed"), nil
	}

	if desc.OwnerLocked && ownerChecked(req.Action) && !ec.isCreator() {
		return deny(DecisionDenyNotOwner, "not the record creator"), nil
	}

	if desc.DependentsChecked && res != nil && res.Dependents > 0 &&
		(req.Action == ActionDelete || req.Action == ActionForceDelete) {
		return deny(DecisionDenyDependents,
			fmt.Sprintf("%d dependent records exist", res.Dependents)), nil
	}

	if desc.AdminWrites && writeAction(req.Action) && !ec.snap.HasRole(role.Admin) {
		return deny(DecisionDenyNotAdmin, "admin role required for writes"), nil
	}

	if desc.GrantGated {
		var resourceID string
		if res != nil {
			resourceID = res.ID
		}
		g, err := ec.effectiveGrant(ctx, req.Entity, resourceID)
		if err != nil {
			return nil, err
		}
		capable := grantCapability(req.Action)
		if g == nil || !capable(g.AccessType) {
			return deny(DecisionDenyNoGrant, "no effective access grant"), nil
		}
	}

	return allow(), nil
}

// infoRules implements the info entity's special decisions. View is
// permissionless: visibility flows from involvement in the record or its
// confirmed status. Confirm enforces separation of duties. Force delete
// is a hard never.
func infoRules(_ context.Context, ec *evalContext) (*CheckResult, error) {
	req := ec.req
	res := req.Resource

	switch req.Action {
	case ActionView:
		actorID := ec.snap.ActorID.String()
		switch {
		case res.Confirmed:
			return allow(), nil
		case ec.isCreator():
			return allow(), nil
		case !res.AssignedTo.IsNil() && res.AssignedTo.String() == actorID:
			return allow(), nil
		case !res.ConfirmedBy.IsNil() && res.ConfirmedBy.String() == actorID:
			return allow(), nil
		default:
			return deny(DecisionDenyNotOwner, "not involved in this record"), nil
		}

	case ActionUpdate:
		if res.Confirmed {
			return deny(DecisionDenyConfirmed, "record is confirmed"), nil
		}
		if ec.isCreator() {
			return allow(), nil
		}
		if !res.AssignedTo.IsNil() && res.AssignedTo.String() == ec.snap.ActorID.String() {
			return allow(), nil
		}

		return deny(DecisionDenyNotOwner, "not the creator or designated actor"), nil

	case ActionConfirm:
		if res.Confirmed {
			return deny(DecisionDenyConfirmed, "record is already confirmed"), nil
		}
		if !ec.can(ActionConfirm) {
			return deny(DecisionDenyNoPermission, "missing permission info.confirm"), nil
		}
		if ec.isCreator() {
			return deny(DecisionDenySelfConfirm, "creators cannot confirm their own records"), nil
		}

		return allow(), nil

	case ActionDelete, ActionRestore:
		if res.Confirmed {
			return deny(DecisionDenyConfirmed, "record is confirmed"), nil
		}
		if !ec.isCreator() {
			return deny(DecisionDenyNotOwner, "only the creator may do this"), nil
		}

		return allow(), nil

	case ActionForceDelete:
		return deny(DecisionDenyUnsupported, "info records are never force deleted"), nil

	default:
		// viewAny, create and anything else are plain permission checks.
		if ec.can(req.Action) {
			return allow(), nil
		}

		return deny(DecisionDenyNoPermission,
			"missing permission "+permission.Name(string(req.Entity), string(req.Action))), nil
	}
}

// centerInfoRules implements the national insight center info decisions.
// Reads beyond the creator flow through the access grant registry;
// mutations are creator-only and vetoed once confirmed.
func centerInfoRules(ctx context.Context, ec *evalContext) (*CheckResult, error) {
	req := ec.req
	res := req.Resource

	switch req.Action {
	case ActionViewAny, ActionCreate:
		if ec.can(req.Action) {
			return allow(), nil
		}

		return deny(DecisionDenyNoPermission,
			"missing permission "+permission.Name(string(req.Entity), string(req.Action))), nil

	case ActionView:
		if !ec.can(ActionView) {
			return deny(DecisionDenyNoPermission, "missing permission "+permission.Name(string(req.Entity), "view")), nil
		}
		if ec.isCreator() {
			return allow(), nil
		}
		g, err := ec.effectiveGrant(ctx, EntityNICInfo, res.ID)
		if err != nil {
			return nil, err
		}
		if g != nil {
			return allow(), nil
		}

		return deny(DecisionDenyNoGrant, "not the creator and no effective access grant"), nil

	case ActionUpdate, ActionDelete, ActionRestore, ActionForceDelete:
		if !ec.can(req.Action) {
			return deny(DecisionDenyNoPermission,
				"missing permission "+permission.Name(string(req.Entity), string(req.Action))), nil
		}
		if res.Confirmed {
			return deny(DecisionDenyConfirmed, "record is confirmed"), nil
		}
		if !ec.isCreator() {
			return deny(DecisionDenyNotOwner, "only the creator may do this"), nil
		}

		return allow(), nil

	case ActionConfirm:
		if !ec.can(ActionConfirm) {
			return deny(DecisionDenyNoPermission, "missing permission "+permission.Name(string(req.Entity), "confirm")), nil
		}
		if res.Confirmed {
			return deny(DecisionDenyConfirmed, "record is already confirmed"), nil
		}
		if !ec.isCreator() {
			return deny(DecisionDenyNotOwner, "only the creator may confirm"), nil
		}

		return allow(), nil

	case ActionPrint:
		// Looser than view: print skips the grant check entirely.
		if ec.isCreator() || ec.can(ActionPrint) {
			return allow(), nil
		}

		return deny(DecisionDenyNoPermission, "missing permission "+permission.Name(string(req.Entity), "print")), nil

	case ActionPrintDates:
		if !ec.can(ActionPrintDates) {
			return deny(DecisionDenyNoPermission, "missing permission "+permission.Name(string(req.Entity), "print_dates")), nil
		}
		if res == nil {
			// List-level: permission alone suffices.
			return allow(), nil
		}
		if ec.isCreator() {
			return allow(), nil
		}
		g, err := ec.effectiveGrant(ctx, EntityNICInfo, res.ID)
		if err != nil {
			return nil, err
		}
		if g != nil {
			return allow(), nil
		}

		return deny(DecisionDenyNoGrant, "not the creator and no effective access grant"), nil

	default:
		return deny(DecisionDenyUnsupported,
			fmt.Sprintf("action %q not supported for %s", req.Action, req.Entity)), nil
	}
}

// centerInfoItemRules implements decisions for child items of a center
// info record. The parent's confirmation locks everything; the item's own
// confirmation locks everything except update_stats, which deliberately
// stays open so statistics can be attached to confirmed items while the
// parent record is still open.
func centerInfoItemRules(ctx context.Context, ec *evalContext) (*CheckResult, error) {
	req := ec.req
	res := req.Resource

	// Creator or a grant covering the parent record.
	coveredByParent := func() (bool, error) {
		if ec.isCreator() {
			return true, nil
		}
		g, err := ec.effectiveGrant(ctx, EntityNICInfo, res.ParentID)
		if err != nil {
			return false, err
		}

		return g != nil, nil
	}

	switch req.Action {
	case ActionViewAny:
		if ec.can(ActionViewAny) {
			return allow(), nil
		}

		return deny(DecisionDenyNoPermission, "missing permission "+permission.Name(string(req.Entity), "view_any")), nil

	case ActionView:
		if !ec.can(ActionView) {
			return deny(DecisionDenyNoPermission, "missing permission "+permission.Name(string(req.Entity), "view")), nil
		}
		covered, err := coveredByParent()
		if err != nil {
			return nil, err
		}
		if covered {
			return allow(), nil
		}

		return deny(DecisionDenyNoGrant, "not the creator and no grant covers the parent"), nil

	case ActionCreate:
		if res.ParentConfirmed {
			return deny(DecisionDenyParentConfirmed, "parent record is confirmed"), nil
		}
		if ec.can(ActionCreate) {
			return allow(), nil
		}

		return deny(DecisionDenyNoPermission, "missing permission "+permission.Name(string(req.Entity), "create")), nil

	case ActionUpdate, ActionDelete, ActionRestore, ActionForceDelete, ActionConfirm:
		if res.ParentConfirmed {
			return deny(DecisionDenyParentConfirmed, "parent record is confirmed"), nil
		}
		if res.Confirmed {
			return deny(DecisionDenyConfirmed, "item is confirmed"), nil
		}
		if !ec.can(req.Action) {
			return deny(DecisionDenyNoPermission,
				"missing permission "+permission.Name(string(req.Entity), string(req.Action))), nil
		}
		covered, err := coveredByParent()
		if err != nil {
			return nil, err
		}
		if covered {
			return allow(), nil
		}

		return deny(DecisionDenyNoGrant, "not the creator and no grant covers the parent"), nil

	case ActionUpdateStats:
		// No item-level confirmed check here. The asymmetry with update
		// is intentional and load-bearing.
		if res.ParentConfirmed {
			return deny(DecisionDenyParentConfirmed, "parent record is confirmed"), nil
		}
		if !ec.can(ActionUpdateStats) {
			return deny(DecisionDenyNoPermission,
				"missing permission "+permission.Name(string(req.Entity), "update_stats")), nil
		}
		covered, err := coveredByParent()
		if err != nil {
			return nil, err
		}
		if covered {
			return allow(), nil
		}

		return deny(DecisionDenyNoGrant, "not the creator and no grant covers the parent"), nil

	default:
		return deny(DecisionDenyUnsupported,
			fmt.Sprintf("action %q not supported for %s", req.Action, req.Entity)), nil
	}
}
