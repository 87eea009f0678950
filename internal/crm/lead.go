// Package crm holds the domain records leaddesk works with and the lookup
// tables that translate them to and from the CRM API's wire values.
package crm

import (
	"slices"
	"time"
)

// Lead is a prospective real-estate client.
type Lead struct {
	ID           int64
	Name         string
	Phone        string
	Email        string
	Budget       float64
	Stage        Stage
	Source       Source
	Requirement  Requirement
	PropertyType PropertyType
	Locations    []string
	Tags         []string
	Notes        string
	AssignedTo   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Field resolves a filterable field by name. Enum fields resolve to their
// display labels, times to RFC3339 strings.
func (l Lead) Field(name string) (any, bool) {
	switch name {
	case "id":
		return l.ID, true
	case "name":
		return l.Name, true
	case "phone":
		return l.Phone, true
	case "email":
		return l.Email, true
	case "budget":
		return l.Budget, true
	case "stage":
		return l.Stage.String(), true
	case "source":
		return l.Source.String(), true
	case "requirement":
		return l.Requirement.String(), true
	case "propertyType":
		return l.PropertyType.String(), true
	case "locations":
		return l.Locations, true
	case "tags":
		return l.Tags, true
	case "notes":
		return l.Notes, true
	case "assignedTo":
		return l.AssignedTo, true
	case "createdAt":
		return formatTime(l.CreatedAt), true
	case "updatedAt":
		return formatTime(l.UpdatedAt), true
	}
	return nil, false
}

// Clone returns a copy that shares no slices with l.
func (l Lead) Clone() Lead {
	l.Locations = slices.Clone(l.Locations)
	l.Tags = slices.Clone(l.Tags)
	return l
}

// Merge overlays the populated fields of partial onto l. It is used when a
// task response embeds a denormalized subset of a lead.
func (l Lead) Merge(partial Lead) Lead {
	if partial.Name != "" {
		l.Name = partial.Name
	}
	if partial.Phone != "" {
		l.Phone = partial.Phone
	}
	if partial.Email != "" {
		l.Email = partial.Email
	}
	if partial.Budget != 0 {
		l.Budget = partial.Budget
	}
	if partial.Stage != StageUnset {
		l.Stage = partial.Stage
	}
	if partial.Source != SourceUnset {
		l.Source = partial.Source
	}
	if partial.Requirement != RequirementUnset {
		l.Requirement = partial.Requirement
	}
	if partial.PropertyType != PropertyUnset {
		l.PropertyType = partial.PropertyType
	}
	if partial.Locations != nil {
		l.Locations = slices.Clone(partial.Locations)
	}
	if partial.Tags != nil {
		l.Tags = slices.Clone(partial.Tags)
	}
	if partial.Notes != "" {
		l.Notes = partial.Notes
	}
	if partial.AssignedTo != "" {
		l.AssignedTo = partial.AssignedTo
	}
	if !partial.CreatedAt.IsZero() {
		l.CreatedAt = partial.CreatedAt
	}
	if partial.UpdatedAt.After(l.UpdatedAt) {
		l.UpdatedAt = partial.UpdatedAt
	}
	return l
}

// CloneLeads copies a slice of leads.
func CloneLeads(leads []Lead) []Lead {
	if len(leads) == 0 {
		return nil
	}
	out := make([]Lead, len(leads))
	for i, l := range leads {
		out[i] = l.Clone()
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
