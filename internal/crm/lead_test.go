package crm

import (
	"testing"
	"time"
)

func TestLead_FieldResolvesLabels(t *testing.T) {
	l := Lead{ID: 7, Stage: StageGeneralEnquiry, Budget: 2500000, Tags: []string{"hot"}}

	if v, ok := l.Field("stage"); !ok || v != "Init - General Enquiry" {
		t.Fatalf("Field(stage) = %v, %v", v, ok)
	}
	if v, ok := l.Field("budget"); !ok || v != 2500000.0 {
		t.Fatalf("Field(budget) = %v, %v", v, ok)
	}
	if _, ok := l.Field("nope"); ok {
		t.Fatalf("Field(nope) should not resolve")
	}
}

func TestLead_MergeOverlaysPopulatedFields(t *testing.T) {
	base := Lead{ID: 1, Name: "Asha", Phone: "111", Budget: 10, Tags: []string{"a"}}
	merged := base.Merge(Lead{ID: 1, Phone: "222", Stage: StageQualified})

	if merged.Name != "Asha" {
		t.Fatalf("Name = %q, want kept", merged.Name)
	}
	if merged.Phone != "222" || merged.Stage != StageQualified {
		t.Fatalf("merge did not overlay: %#v", merged)
	}
	if len(merged.Tags) != 1 {
		t.Fatalf("Tags = %v, want kept", merged.Tags)
	}
}

func TestLeadPatch_ChangesSkipsIdenticalValues(t *testing.T) {
	current := Lead{Name: "Ravi", Stage: StageContacted, Tags: []string{"hot", "vip"}}

	same := LeadPatch{
		Name:  Ptr("Ravi"),
		Stage: Ptr(StageContacted),
		Tags:  Ptr([]string{"hot", "vip"}),
	}
	if !same.Changes(current).IsEmpty() {
		t.Fatalf("identical patch produced changes: %#v", same.Changes(current))
	}

	diff := LeadPatch{Name: Ptr("Ravi"), Tags: Ptr([]string{"hot"})}
	changes := diff.Changes(current)
	if changes.Name != nil {
		t.Fatalf("unchanged Name kept in changes")
	}
	if changes.Tags == nil {
		t.Fatalf("changed Tags dropped")
	}
}

func TestLeadPatch_EmptyTagsEqualNil(t *testing.T) {
	current := Lead{}
	p := LeadPatch{Tags: Ptr([]string{})}
	if !p.Changes(current).IsEmpty() {
		t.Fatalf("empty tags vs nil should not count as a change")
	}
}

func TestLeadPatch_ApplyStampsAndCopies(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tags := []string{"x"}
	l := LeadPatch{Tags: &tags, Notes: Ptr("call back")}.Apply(Lead{ID: 3}, now)

	if !l.UpdatedAt.Equal(now) || l.Notes != "call back" {
		t.Fatalf("Apply = %#v", l)
	}
	tags[0] = "mutated"
	if l.Tags[0] != "x" {
		t.Fatalf("Apply should copy slices")
	}
}

func TestTodo_CloneDeepCopiesLead(t *testing.T) {
	orig := Todo{ID: 1, Lead: &Lead{ID: 2, Name: "A"}, Participants: []string{"p"}}
	c := orig.Clone()
	c.Lead.Name = "B"
	c.Participants[0] = "q"
	if orig.Lead.Name != "A" || orig.Participants[0] != "p" {
		t.Fatalf("Clone shares memory with original")
	}
}

func TestTodo_FieldLeadName(t *testing.T) {
	todo := Todo{Lead: &Lead{Name: "Meera"}}
	if v, _ := todo.Field("leadName"); v != "Meera" {
		t.Fatalf("Field(leadName) = %v", v)
	}
	if v, _ := (Todo{}).Field("leadName"); v != "" {
		t.Fatalf("Field(leadName) without lead = %v", v)
	}
}
