package crmapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/leaddesk/internal/crm"
)

// apiTimestampLayout is the API's local-time timestamp format.
const apiTimestampLayout = "2006-01-02 15:04:05"

// envelope is the common response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Total   flexInt         `json:"total"`
	Message string          `json:"message"`
}

func (e envelope) ok() bool {
	return strings.EqualFold(strings.TrimSpace(e.Status), "success")
}

// wireLead mirrors a lead as the API sends it: snake_case keys, most values
// strings.
type wireLead struct {
	ID           flexInt     `json:"id"`
	Name         string      `json:"name"`
	Phone        string      `json:"phone"`
	Email        string      `json:"email"`
	Budget       flexFloat   `json:"budget"`
	Stage        string      `json:"stage"`
	Source       string      `json:"source"`
	Requirement  string      `json:"requirement"`
	PropertyType string      `json:"property_type"`
	Locations    flexStrings `json:"locations"`
	Tags         flexStrings `json:"tags"`
	Notes        string      `json:"notes"`
	AssignedTo   string      `json:"assigned_to"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
}

// wireTodo mirrors a task. Lead is a partial, denormalized copy.
type wireTodo struct {
	ID           flexInt     `json:"id"`
	LeadID       flexInt     `json:"lead_id"`
	Type         string      `json:"type"`
	Status       string      `json:"status"`
	DateTime     string      `json:"date_time"`
	Participants flexStrings `json:"participants"`
	Location     string      `json:"location"`
	Notes        string      `json:"notes"`
	Lead         *wireLead   `json:"lead,omitempty"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
}

// decodeEnum decodes leniently: values the codec does not know come back
// unset rather than failing the whole page.
func decodeEnum[E comparable](c *crm.Codec[E], s string) E {
	v, _ := c.Decode(s)
	return v
}

func (w wireLead) toLead() crm.Lead {
	return crm.Lead{
		ID:           int64(w.ID),
		Name:         strings.TrimSpace(w.Name),
		Phone:        strings.TrimSpace(w.Phone),
		Email:        strings.TrimSpace(w.Email),
		Budget:       float64(w.Budget),
		Stage:        decodeEnum(crm.StageCodec, w.Stage),
		Source:       decodeEnum(crm.SourceCodec, w.Source),
		Requirement:  decodeEnum(crm.RequirementCodec, w.Requirement),
		PropertyType: decodeEnum(crm.PropertyTypeCodec, w.PropertyType),
		Locations:    []string(w.Locations),
		Tags:         []string(w.Tags),
		Notes:        w.Notes,
		AssignedTo:   w.AssignedTo,
		CreatedAt:    parseTime(w.CreatedAt),
		UpdatedAt:    parseTime(w.UpdatedAt),
	}
}

func (w wireTodo) toTodo() crm.Todo {
	t := crm.Todo{
		ID:           int64(w.ID),
		LeadID:       int64(w.LeadID),
		Type:         decodeEnum(crm.TodoTypeCodec, w.Type),
		Status:       decodeEnum(crm.TodoStatusCodec, w.Status),
		DateTime:     parseTime(w.DateTime),
		Participants: []string(w.Participants),
		Location:     w.Location,
		Notes:        w.Notes,
		CreatedAt:    parseTime(w.CreatedAt),
		UpdatedAt:    parseTime(w.UpdatedAt),
	}
	if w.Lead != nil {
		lead := w.Lead.toLead()
		if lead.ID == 0 {
			lead.ID = t.LeadID
		}
		t.Lead = &lead
	}
	return t
}

// leadBody encodes a full lead for add_lead.
func leadBody(l crm.Lead) (map[string]any, error) {
	body := map[string]any{
		"name":        l.Name,
		"phone":       l.Phone,
		"email":       l.Email,
		"budget":      formatFloat(l.Budget),
		"locations":   joinList(l.Locations),
		"tags":        joinList(l.Tags),
		"notes":       l.Notes,
		"assigned_to": l.AssignedTo,
	}
	if err := putEnum(body, "stage", crm.StageCodec, l.Stage, crm.StageUnset); err != nil {
		return nil, err
	}
	if err := putEnum(body, "source", crm.SourceCodec, l.Source, crm.SourceUnset); err != nil {
		return nil, err
	}
	if err := putEnum(body, "requirement", crm.RequirementCodec, l.Requirement, crm.RequirementUnset); err != nil {
		return nil, err
	}
	if err := putEnum(body, "property_type", crm.PropertyTypeCodec, l.PropertyType, crm.PropertyUnset); err != nil {
		return nil, err
	}
	return body, nil
}

// leadPatchBody encodes only the patched fields for edit_lead.
func leadPatchBody(id int64, p crm.LeadPatch) (map[string]any, error) {
	body := map[string]any{"id": strconv.FormatInt(id, 10)}
	if p.Name != nil {
		body["name"] = *p.Name
	}
	if p.Phone != nil {
		body["phone"] = *p.Phone
	}
	if p.Email != nil {
		body["email"] = *p.Email
	}
	if p.Budget != nil {
		body["budget"] = formatFloat(*p.Budget)
	}
	if p.Stage != nil {
		if err := putEnum(body, "stage", crm.StageCodec, *p.Stage, crm.StageUnset); err != nil {
			return nil, err
		}
	}
	if p.Source != nil {
		if err := putEnum(body, "source", crm.SourceCodec, *p.Source, crm.SourceUnset); err != nil {
			return nil, err
		}
	}
	if p.Requirement != nil {
		if err := putEnum(body, "requirement", crm.RequirementCodec, *p.Requirement, crm.RequirementUnset); err != nil {
			return nil, err
		}
	}
	if p.PropertyType != nil {
		if err := putEnum(body, "property_type", crm.PropertyTypeCodec, *p.PropertyType, crm.PropertyUnset); err != nil {
			return nil, err
		}
	}
	if p.Locations != nil {
		body["locations"] = joinList(*p.Locations)
	}
	if p.Tags != nil {
		body["tags"] = joinList(*p.Tags)
	}
	if p.Notes != nil {
		body["notes"] = *p.Notes
	}
	if p.AssignedTo != nil {
		body["assigned_to"] = *p.AssignedTo
	}
	return body, nil
}

// todoBody encodes a full task for add_task.
func todoBody(t crm.Todo) (map[string]any, error) {
	body := map[string]any{
		"lead_id":      strconv.FormatInt(t.LeadID, 10),
		"date_time":    formatTime(t.DateTime),
		"participants": joinList(t.Participants),
		"location":     t.Location,
		"notes":        t.Notes,
	}
	if err := putEnum(body, "type", crm.TodoTypeCodec, t.Type, crm.TodoTypeUnset); err != nil {
		return nil, err
	}
	status := t.Status
	if status == crm.TodoStatusUnset {
		status = crm.TodoPending
	}
	if err := putEnum(body, "status", crm.TodoStatusCodec, status, crm.TodoStatusUnset); err != nil {
		return nil, err
	}
	return body, nil
}

// todoPatchBody encodes only the patched fields for edit_task.
func todoPatchBody(id int64, p crm.TodoPatch) (map[string]any, error) {
	body := map[string]any{"id": strconv.FormatInt(id, 10)}
	if p.Type != nil {
		if err := putEnum(body, "type", crm.TodoTypeCodec, *p.Type, crm.TodoTypeUnset); err != nil {
			return nil, err
		}
	}
	if p.Status != nil {
		if err := putEnum(body, "status", crm.TodoStatusCodec, *p.Status, crm.TodoStatusUnset); err != nil {
			return nil, err
		}
	}
	if p.DateTime != nil {
		body["date_time"] = formatTime(*p.DateTime)
	}
	if p.Participants != nil {
		body["participants"] = joinList(*p.Participants)
	}
	if p.Location != nil {
		body["location"] = *p.Location
	}
	if p.Notes != nil {
		body["notes"] = *p.Notes
	}
	return body, nil
}

// putEnum writes the wire value of v under key. An unset value is sent as an
// empty string.
func putEnum[E comparable](body map[string]any, key string, c *crm.Codec[E], v, unset E) error {
	if v == unset {
		body[key] = ""
		return nil
	}
	wire, err := c.Encode(v)
	if err != nil {
		return err
	}
	body[key] = wire
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(apiTimestampLayout)
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	for _, layout := range []string{apiTimestampLayout, "2006-01-02T15:04", time.DateOnly} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// flexInt accepts a JSON number, a numeric string, or null.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse integer %q: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

// flexFloat accepts a JSON number, a numeric string, or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*f = flexFloat(n)
	return nil
}

// flexStrings accepts a JSON array of strings, a comma separated string, or
// null. Blank items are dropped.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = nil
		return nil
	}
	var items []string
	if b[0] == '[' {
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
	} else {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		items = strings.Split(s, ",")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*f = out
	return nil
}
