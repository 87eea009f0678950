package crm

import (
	"slices"
	"time"
)

// LeadPatch is a partial update. Nil fields are left unchanged.
type LeadPatch struct {
	Name         *string
	Phone        *string
	Email        *string
	Budget       *float64
	Stage        *Stage
	Source       *Source
	Requirement  *Requirement
	PropertyType *PropertyType
	Locations    *[]string
	Tags         *[]string
	Notes        *string
	AssignedTo   *string
}

// IsEmpty reports whether the patch changes nothing.
func (p LeadPatch) IsEmpty() bool {
	return p == LeadPatch{}
}

// Changes returns the subset of p that differs from current. Array fields are
// compared element-wise.
func (p LeadPatch) Changes(current Lead) LeadPatch {
	var out LeadPatch
	if p.Name != nil && *p.Name != current.Name {
		out.Name = p.Name
	}
	if p.Phone != nil && *p.Phone != current.Phone {
		out.Phone = p.Phone
	}
	if p.Email != nil && *p.Email != current.Email {
		out.Email = p.Email
	}
	if p.Budget != nil && *p.Budget != current.Budget {
		out.Budget = p.Budget
	}
	if p.Stage != nil && *p.Stage != current.Stage {
		out.Stage = p.Stage
	}
	if p.Source != nil && *p.Source != current.Source {
		out.Source = p.Source
	}
	if p.Requirement != nil && *p.Requirement != current.Requirement {
		out.Requirement = p.Requirement
	}
	if p.PropertyType != nil && *p.PropertyType != current.PropertyType {
		out.PropertyType = p.PropertyType
	}
	if p.Locations != nil && !sameStrings(*p.Locations, current.Locations) {
		out.Locations = p.Locations
	}
	if p.Tags != nil && !sameStrings(*p.Tags, current.Tags) {
		out.Tags = p.Tags
	}
	if p.Notes != nil && *p.Notes != current.Notes {
		out.Notes = p.Notes
	}
	if p.AssignedTo != nil && *p.AssignedTo != current.AssignedTo {
		out.AssignedTo = p.AssignedTo
	}
	return out
}

// Apply returns l with the patch applied and UpdatedAt stamped.
func (p LeadPatch) Apply(l Lead, now time.Time) Lead {
	l = l.Clone()
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Phone != nil {
		l.Phone = *p.Phone
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Budget != nil {
		l.Budget = *p.Budget
	}
	if p.Stage != nil {
		l.Stage = *p.Stage
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.Requirement != nil {
		l.Requirement = *p.Requirement
	}
	if p.PropertyType != nil {
		l.PropertyType = *p.PropertyType
	}
	if p.Locations != nil {
		l.Locations = slices.Clone(*p.Locations)
	}
	if p.Tags != nil {
		l.Tags = slices.Clone(*p.Tags)
	}
	if p.Notes != nil {
		l.Notes = *p.Notes
	}
	if p.AssignedTo != nil {
		l.AssignedTo = *p.AssignedTo
	}
	l.UpdatedAt = now
	return l
}

// TodoPatch is a partial task update. Nil fields are left unchanged.
type TodoPatch struct {
	Type         *TodoType
	Status       *TodoStatus
	DateTime     *time.Time
	Participants *[]string
	Location     *string
	Notes        *string
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p == TodoPatch{}
}

// Apply returns t with the patch applied and UpdatedAt stamped.
func (p TodoPatch) Apply(t Todo, now time.Time) Todo {
	t = t.Clone()
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DateTime != nil {
		t.DateTime = *p.DateTime
	}
	if p.Participants != nil {
		t.Participants = slices.Clone(*p.Participants)
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	t.UpdatedAt = now
	return t
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }

func sameStrings(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return slices.Equal(a, b)
}
