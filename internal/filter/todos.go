package filter

import (
	"strings"
	"time"

	"github.com/five82/leaddesk/internal/crm"
)

// TodoFilter is the todo list's evaluator.
//
// With ActiveLeadID set, any leadId option matches todos of the active lead
// regardless of its literal value; without it leadId compares numerically.
// String equality ignores case, and a list value on a single-valued field
// matches any of its entries. dateTime supports >= and <= against RFC 3339
// timestamps or plain dates.
type TodoFilter struct {
	ActiveLeadID *int64
}

// Apply returns the todos passing every option.
func (f TodoFilter) Apply(todos []crm.Todo, opts []Option) []crm.Todo {
	if len(opts) == 0 {
		return todos
	}
	out := make([]crm.Todo, 0, len(todos))
	for _, t := range todos {
		if f.Match(t, opts) {
			out = append(out, t)
		}
	}
	return out
}

// Match reports whether t passes every option.
func (f TodoFilter) Match(t crm.Todo, opts []Option) bool {
	for _, opt := range opts {
		if !f.matchOne(t, opt) {
			return false
		}
	}
	return true
}

func (f TodoFilter) matchOne(t crm.Todo, opt Option) bool {
	value := Normalize(opt.Value)

	switch opt.Field {
	case "leadId":
		if f.ActiveLeadID != nil {
			return t.LeadID == *f.ActiveLeadID
		}
		want, ok := toNumber(value)
		return ok && float64(t.LeadID) == want
	case "dateTime":
		return matchTime(t.DateTime, opt.Operator, value)
	}

	raw, ok := t.Field(opt.Field)
	if !ok {
		return false
	}
	field := Normalize(raw)

	if arr, isArr := field.([]string); isArr {
		return anyOf(arr, value, equalFold)
	}

	switch opt.Operator {
	case OpEqual:
		if wants, isArr := value.([]string); isArr {
			return anyOf([]string{toString(field)}, wants, equalFold)
		}
		return equalFold(field, value)
	case OpContains:
		s, isStr := field.(string)
		return isStr && strings.Contains(strings.ToLower(s), strings.ToLower(toString(value)))
	case OpGTE, OpLTE:
		n, isNum := field.(float64)
		want, ok := toNumber(value)
		if !isNum || !ok {
			return false
		}
		if opt.Operator == OpGTE {
			return n >= want
		}
		return n <= want
	}
	return false
}

func equalFold(a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.EqualFold(strings.TrimSpace(as), strings.TrimSpace(bs))
	}
	an, aok := toNumber(a)
	bn, bok := toNumber(b)
	return aok && bok && an == bn
}

func matchTime(at time.Time, op Operator, value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	want, dateOnly, ok := parseTime(s)
	if !ok {
		return false
	}
	if dateOnly {
		local := at.In(want.Location())
		at = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, want.Location())
	}
	switch op {
	case OpEqual:
		return at.Equal(want)
	case OpGTE:
		return !at.Before(want)
	case OpLTE:
		return !at.After(want)
	case OpContains:
		return strings.Contains(at.Format(time.RFC3339), s)
	}
	return false
}

func parseTime(s string) (time.Time, bool, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, true
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, true, true
	}
	return time.Time{}, false, false
}
