package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/five82/leaddesk/internal/crm"
)

func sampleTodos() []crm.Todo {
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.Local)
	return []crm.Todo{
		{ID: 1, LeadID: 7, Type: crm.TodoMeeting, Status: crm.TodoPending, DateTime: day.Add(10 * time.Hour), Participants: []string{"Asha", "Neel"}, Location: "Baner Office"},
		{ID: 2, LeadID: 7, Type: crm.TodoCall, Status: crm.TodoCompleted, DateTime: day.Add(34 * time.Hour)},
		{ID: 3, LeadID: 9, Type: crm.TodoSiteVisit, Status: crm.TodoPending, DateTime: day.Add(58 * time.Hour), Location: "Wakad Plot"},
	}
}

func ids(todos []crm.Todo) []int64 {
	out := make([]int64, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.ID)
	}
	return out
}

func TestTodoFilter_LeadIDUsesActiveLead(t *testing.T) {
	todos := sampleTodos()
	opt := []Option{{Field: "leadId", Operator: OpEqual, Value: 9}}

	assert.Equal(t, []int64{3}, ids(TodoFilter{}.Apply(todos, opt)))

	active := int64(7)
	assert.Equal(t, []int64{1, 2}, ids(TodoFilter{ActiveLeadID: &active}.Apply(todos, opt)),
		"active lead overrides the literal leadId value")

	// The general evaluator has no notion of an active lead.
	assert.Equal(t, []int64{3}, ids(Apply(todos, opt)))
}

func TestTodoFilter_StringEqualityIgnoresCase(t *testing.T) {
	todos := sampleTodos()
	opt := []Option{{Field: "status", Operator: OpEqual, Value: "pending"}}

	assert.Equal(t, []int64{1, 3}, ids(TodoFilter{}.Apply(todos, opt)))
	assert.Empty(t, Apply(todos, opt), "general evaluator compares labels exactly")
}

func TestTodoFilter_ListValueOnScalarFieldMatchesAnyEntry(t *testing.T) {
	todos := sampleTodos()
	opt := []Option{{Field: "type", Operator: OpEqual, Value: []string{"call", "Site Visit"}}}

	assert.Equal(t, []int64{2, 3}, ids(TodoFilter{}.Apply(todos, opt)))
}

func TestTodoFilter_DateRange(t *testing.T) {
	todos := sampleTodos()
	opts := []Option{
		{Field: "dateTime", Operator: OpGTE, Value: "2026-04-11"},
		{Field: "dateTime", Operator: OpLTE, Value: "2026-04-11"},
	}
	assert.Equal(t, []int64{2}, ids(TodoFilter{}.Apply(todos, opts)))

	at := todos[0].DateTime.Format(time.RFC3339)
	assert.Equal(t, []int64{1}, ids(TodoFilter{}.Apply(todos, []Option{{Field: "dateTime", Operator: OpLTE, Value: at}})))
	assert.Empty(t, TodoFilter{}.Apply(todos, []Option{{Field: "dateTime", Operator: OpGTE, Value: "soon"}}))
}

func TestTodoFilter_ArraysAndContains(t *testing.T) {
	todos := sampleTodos()

	got := TodoFilter{}.Apply(todos, []Option{{Field: "participants", Operator: OpEqual, Value: []string{"neel"}}})
	assert.Equal(t, []int64{1}, ids(got))

	got = TodoFilter{}.Apply(todos, []Option{{Field: "location", Operator: OpContains, Value: "PLOT"}})
	assert.Equal(t, []int64{3}, ids(got))
}

func TestTodoFilter_EmptyOptions(t *testing.T) {
	todos := sampleTodos()
	assert.Equal(t, todos, TodoFilter{}.Apply(todos, nil))
}
