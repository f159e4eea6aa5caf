package verdict

import "context"

// overrideFunc implements entity-specific rules that replace the generic
// evaluation path entirely.
type overrideFunc func(ctx context.Context, ec *evalContext) (*CheckResult, error)

// Descriptor captures the evaluation shape of one entity type. The
// generic evaluator reads these flags; the few genuinely special entities
// carry an override hook instead of repeating near-identical rule sets.
type Descriptor struct {
	Entity Entity

	// OwnerLocked restricts view/update/delete/restore/force_delete to
	// the record's creator, on top of the permission check.
	OwnerLocked bool

	// Confirmable marks entities whose confirmed flag is a terminal lock
	// on update/delete/restore/force_delete.
	Confirmable bool

	// ParentConfirmable marks child entities locked by the parent
	// record's confirmed flag.
	ParentConfirmable bool

	// DependentsChecked denies delete/force_delete while dependent rows
	// reference the record.
	DependentsChecked bool

	// AdminOnly bypasses permission strings entirely: coarse role checks
	// gate every action (user and role management).
	AdminOnly bool

	// AdminWrites additionally requires the admin role for mutations.
	AdminWrites bool

	// GrantGated requires an effective access grant capability on top of
	// the permission check.
	GrantGated bool

	override overrideFunc
}

// descriptors is the evaluation table, one entry per entity type.
var descriptors = map[Entity]*Descriptor{
	EntityCriminal:         {Entity: EntityCriminal},
	EntityDistrict:         {Entity: EntityDistrict},
	EntityIncident:         {Entity: EntityIncident},
	EntityIncidentCategory: {Entity: EntityIncidentCategory},
	EntityIncidentReport:   {Entity: EntityIncidentReport, GrantGated: true},
	EntityMeeting:          {Entity: EntityMeeting, OwnerLocked: true},
	EntityMeetingMessage:   {Entity: EntityMeetingMessage},
	EntityMeetingSession:   {Entity: EntityMeetingSession, OwnerLocked: true},
	EntityNICInfo: {
		Entity:      EntityNICInfo,
		Confirmable: true,
		override:    centerInfoRules,
	},
	EntityNICInfoItem: {
		Entity:            EntityNICInfoItem,
		Confirmable:       true,
		ParentConfirmable: true,
		override:          centerInfoItemRules,
	},
	EntityProvince:         {Entity: EntityProvince},
	EntityReport:           {Entity: EntityReport},
	EntityReportStat:       {Entity: EntityReportStat},
	EntityStatCategory:     {Entity: EntityStatCategory},
	EntityStatCategoryItem: {Entity: EntityStatCategoryItem},
	EntityTranslation:      {Entity: EntityTranslation},
	EntityDepartment:       {Entity: EntityDepartment, DependentsChecked: true},
	EntityInfoCategory:     {Entity: EntityInfoCategory, DependentsChecked: true, AdminWrites: true},
	EntityInfoType:         {Entity: EntityInfoType, DependentsChecked: true, AdminWrites: true},
	EntityInfo:             {Entity: EntityInfo, Confirmable: true, override: infoRules},
	EntityUser:             {Entity: EntityUser, AdminOnly: true},
	EntityRole:             {Entity: EntityRole, AdminOnly: true},
}

// DescriptorFor returns the descriptor for an entity type.
func DescriptorFor(e Entity) (*Descriptor, bool) {
	d, ok := descriptors[e]
	return d, ok
}

// Entities returns all entity types known to the evaluator.
func Entities() []Entity {
	out := make([]Entity, 0, len(descriptors))
	for e := range descriptors {
		out = append(out, e)
	}

	return out
}

// resourceRequired reports whether the action needs a resource argument
// for this entity. A missing-but-required resource is a caller contract
// violation surfaced as ErrResourceRequired, not a deny.
func (d *Descriptor) resourceRequired(a Action) bool {
	switch a {
	case ActionViewAny:
		return false
	case ActionCreate:
		// Child creation consults the parent's confirmation state.
		return d.ParentConfirmable
	case ActionPrintDates:
		// List-level print is permission-only; a resource narrows it.
		return false
	default:
		return true
	}
}
