package crm

import (
	"slices"
	"time"
)

// Todo is a scheduled task linked to a lead.
type Todo struct {
	ID           int64
	LeadID       int64
	Type         TodoType
	Status       TodoStatus
	DateTime     time.Time
	Participants []string
	Location     string
	Notes        string
	Lead         *Lead // denormalized copy from get_tasks, may be partial
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Field resolves a filterable field by name.
func (t Todo) Field(name string) (any, bool) {
	switch name {
	case "id":
		return t.ID, true
	case "leadId":
		return t.LeadID, true
	case "type":
		return t.Type.String(), true
	case "status":
		return t.Status.String(), true
	case "dateTime":
		return formatTime(t.DateTime), true
	case "participants":
		return t.Participants, true
	case "location":
		return t.Location, true
	case "notes":
		return t.Notes, true
	case "leadName":
		if t.Lead == nil {
			return "", true
		}
		return t.Lead.Name, true
	}
	return nil, false
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Todo) Clone() Todo {
	t.Participants = slices.Clone(t.Participants)
	if t.Lead != nil {
		lead := t.Lead.Clone()
		t.Lead = &lead
	}
	return t
}

// IsOpen reports whether the task still needs doing.
func (t Todo) IsOpen() bool {
	return t.Status == TodoPending || t.Status == TodoStatusUnset
}

// CloneTodos copies a slice of todos.
func CloneTodos(todos []Todo) []Todo {
	if len(todos) == 0 {
		return nil
	}
	out := make([]Todo, len(todos))
	for i, t := range todos {
		out[i] = t.Clone()
	}
	return out
}
