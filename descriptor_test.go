package verdict

import "testing"

var allEntities = []Entity{
	EntityCriminal, EntityDistrict, EntityIncident, EntityIncidentCategory,
	EntityIncidentReport, EntityMeeting, EntityMeetingMessage,
	EntityMeetingSession, EntityNICInfo, EntityNICInfoItem, EntityProvince,
	EntityReport, EntityReportStat, EntityStatCategory, EntityStatCategoryItem,
	EntityTranslation, EntityDepartment, EntityInfoCategory, EntityInfoType,
	EntityInfo, EntityUser, EntityRole,
}

func TestDescriptorTable_Complete(t *testing.T) {
	for _, e := range allEntities {
		d, ok := DescriptorFor(e)
		if !ok {
			t.Fatalf("no descriptor for entity %q", e)
		}
		if d.Entity != e {
			t.Fatalf("descriptor for %q names entity %q", e, d.Entity)
		}
	}
	if len(descriptors) != len(allEntities) {
		t.Fatalf("descriptor table has %d entries, want %d", len(descriptors), len(allEntities))
	}
}

func TestDescriptorTable_Shapes(t *testing.T) {
	for _, e := range []Entity{EntityUser, EntityRole} {
		d, _ := DescriptorFor(e)
		if !d.AdminOnly {
			t.Errorf("%q should be admin-only", e)
		}
	}
	for _, e := range []Entity{EntityInfo, EntityNICInfo, EntityNICInfoItem} {
		d, _ := DescriptorFor(e)
		if d.override == nil {
			t.Errorf("%q should carry an override rule set", e)
		}
		if !d.Confirmable {
			t.Errorf("%q should be confirmable", e)
		}
	}
	for _, e := range []Entity{EntityMeeting, EntityMeetingSession} {
		d, _ := DescriptorFor(e)
		if !d.OwnerLocked {
			t.Errorf("%q should be owner-locked", e)
		}
	}
	for _, e := range []Entity{EntityDepartment, EntityInfoCategory, EntityInfoType} {
		d, _ := DescriptorFor(e)
		if !d.DependentsChecked {
			t.Errorf("%q should check dependents on delete", e)
		}
	}
}

func TestDescriptor_ResourceRequired(t *testing.T) {
	incident, _ := DescriptorFor(EntityIncident)
	if incident.resourceRequired(ActionViewAny) {
		t.Error("view_any should never require a resource")
	}
	if incident.resourceRequired(ActionCreate) {
		t.Error("create should not require a resource without a parent lock")
	}
	if !incident.resourceRequired(ActionUpdate) {
		t.Error("update should require a resource")
	}

	// Child creation consults the parent's confirmation state.
	item, _ := DescriptorFor(EntityNICInfoItem)
	if !item.resourceRequired(ActionCreate) {
		t.Error("child create should require a resource")
	}
}
