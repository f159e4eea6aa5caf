// Package verdict is the policy decision engine for the Trackline
// incident-tracking platform.
//
// Given an actor (user with roles and permissions), a typed action, and
// optionally a target resource with its current state (confirmation flags,
// ownership, dependent rows), the engine returns a single allow/deny
// verdict. Decisions compose four sources: the actor's flat permission set,
// the role hierarchy (admin/superadmin), per-resource state predicates
// (confirmation locks, owner locks, dependent-row locks), and the access
// grant registry for restricted records.
//
//	eng, err := verdict.NewEngine(
//	    verdict.WithStore(memStore),
//	)
//	result, err := eng.Check(ctx, &verdict.CheckRequest{
//	    ActorID: userID,
//	    Action:  verdict.ActionView,
//	    Entity:  verdict.EntityIncident,
//	    Resource: &verdict.Resource{ID: "inc_42", CreatedBy: userID},
//	})
package verdict

import "github.com/trackline/verdict/id"

// Action is what the actor wants to do.
type Action string

// All recognized actions. Anything else resolves to a deny verdict.
const (
	ActionViewAny     Action = "view_any"
	ActionView        Action = "view"
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionRestore     Action = "restore"
	ActionForceDelete Action = "force_delete"
	ActionConfirm     Action = "confirm"
	ActionPrint       Action = "print"
	ActionPrintDates  Action = "print_dates"
	ActionUpdateStats Action = "update_stats"
	ActionManage      Action = "manage"
	ActionDownload    Action = "download"
)

// Valid reports whether a is a recognized action.
func (a Action) Valid() bool {
	switch a {
	case ActionViewAny, ActionView, ActionCreate, ActionUpdate, ActionDelete,
		ActionRestore, ActionForceDelete, ActionConfirm, ActionPrint,
		ActionPrintDates, ActionUpdateStats, ActionManage, ActionDownload:
		return true
	default:
		return false
	}
}

// Entity identifies the domain model a check targets.
type Entity string

// All recognized entity types.
const (
	EntityCriminal         Entity = "criminal"
	EntityDistrict         Entity = "district"
	EntityIncident         Entity = "incident"
	EntityIncidentCategory Entity = "incident_category"
	EntityIncidentReport   Entity = "incident_report"
	EntityMeeting          Entity = "meeting"
	EntityMeetingMessage   Entity = "meeting_message"
	EntityMeetingSession   Entity = "meeting_session"
	EntityNICInfo          Entity = "national_insight_center_info"
	EntityNICInfoItem      Entity = "national_insight_center_info_item"
	EntityProvince         Entity = "province"
	EntityReport           Entity = "report"
	EntityReportStat       Entity = "report_stat"
	EntityStatCategory     Entity = "stat_category"
	EntityStatCategoryItem Entity = "stat_category_item"
	EntityTranslation      Entity = "translation"
	EntityDepartment       Entity = "department"
	EntityInfoCategory     Entity = "info_category"
	EntityInfoType         Entity = "info_type"
	EntityInfo             Entity = "info"
	EntityUser             Entity = "user"
	EntityRole             Entity = "role"
)

// Resource is the state of the record a check targets, supplied by the
// caller. Only the fields relevant to the target entity need to be set:
// confirmation flags for confirmable entities, parent state for child
// entities, Dependents for referential-integrity-locked deletes, RoleName
// when the target is a role.
type Resource struct {
	ID string `json:"id"`

	// CreatedBy is the record's owner reference.
	CreatedBy id.UserID `json:"created_by,omitempty"`

	// Confirmed and ConfirmedBy carry the confirmation lock state.
	Confirmed   bool      `json:"confirmed,omitempty"`
	ConfirmedBy id.UserID `json:"confirmed_by,omitempty"`

	// AssignedTo is the designated actor for records that name one.
	AssignedTo id.UserID `json:"assigned_to,omitempty"`

	// ParentID and ParentConfirmed describe the owning record for child
	// entities whose parent can lock them.
	ParentID        string `json:"parent_id,omitempty"`
	ParentConfirmed bool   `json:"parent_confirmed,omitempty"`

	// Dependents is the number of child rows referencing this record.
	Dependents int `json:"dependents,omitempty"`

	// RoleName is the target role's name when Entity is "role".
	RoleName string `json:"role_name,omitempty"`

	Attributes map[string]any `json:"attributes,omitempty"`
}

// CheckRequest is the input to an authorization check. Roles and
// Permissions may be supplied by the caller when the actor state is
// already resolved; when both are nil the engine loads them from the
// store.
type CheckRequest struct {
	ActorID     id.UserID      `json:"actor_id"`
	Roles       []string       `json:"roles,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	Action      Action         `json:"action"`
	Entity      Entity         `json:"entity"`
	Resource    *Resource      `json:"resource,omitempty"`
	Context     map[string]any `json:"context,omitempty"`
}

// CheckResult is the outcome of an authorization check.
type CheckResult struct {
	Allowed    bool     `json:"allowed"`
	Decision   Decision `json:"decision"`
	Reason     string   `json:"reason,omitempty"`
	EvalTimeNs int64    `json:"eval_time_ns"`
}

// Decision is the authorization outcome.
type Decision string

const (
	// DecisionAllow means the request is permitted.
	DecisionAllow Decision = "allow"

	// DecisionDenyDefault means no rule produced an allow.
	DecisionDenyDefault Decision = "deny_default"

	// DecisionDenyUnknownAction means the action is not recognized.
	DecisionDenyUnknownAction Decision = "deny_unknown_action"

	// DecisionDenyUnsupported means the entity never permits the action
	// for any actor.
	DecisionDenyUnsupported Decision = "deny_unsupported"

	// DecisionDenyNoPermission means the actor lacks the required permission.
	DecisionDenyNoPermission Decision = "deny_no_permission"

	// DecisionDenyNotOwner means the actor is not the record's creator.
	DecisionDenyNotOwner Decision = "deny_not_owner"

	// DecisionDenyConfirmed means the record's confirmation lock blocks
	// the mutation.
	DecisionDenyConfirmed Decision = "deny_confirmed"

	// DecisionDenyParentConfirmed means the parent record's confirmation
	// lock blocks the mutation.
	DecisionDenyParentConfirmed Decision = "deny_parent_confirmed"

	// DecisionDenySelfConfirm means the creator attempted to confirm
	// their own record.
	DecisionDenySelfConfirm Decision = "deny_self_confirm"

	// DecisionDenyDependents means dependent rows block the delete.
	DecisionDenyDependents Decision = "deny_dependents"

	// DecisionDenyReservedRole means the target role carries a protected name.
	DecisionDenyReservedRole Decision = "deny_reserved_role"

	// DecisionDenyNotAdmin means the action requires an admin-tier role.
	DecisionDenyNotAdmin Decision = "deny_not_admin"

	// DecisionDenyNoGrant means no effective access grant covers the actor.
	DecisionDenyNoGrant Decision = "deny_no_grant"
)
