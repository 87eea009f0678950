package workspace

import (
	"slices"
	"strings"
	"time"

	"github.com/five82/leaddesk/internal/crm"
	"github.com/five82/leaddesk/internal/crmapi"
	"github.com/five82/leaddesk/internal/filter"
	"github.com/five82/leaddesk/internal/uistate"
)

// SetActiveLead makes id the lead whose tasks the todo list focuses on.
func (w *Workspace) SetActiveLead(id int64) {
	w.mu.Lock()
	w.activeLead = &id
	w.mu.Unlock()
}

// ClearActiveLead removes the focus.
func (w *Workspace) ClearActiveLead() {
	w.mu.Lock()
	w.activeLead = nil
	w.mu.Unlock()
}

// ActiveLead returns the focused lead id.
func (w *Workspace) ActiveLead() (int64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.activeLead == nil {
		return 0, false
	}
	return *w.activeLead, true
}

// SetTodoFilters replaces the todo list's in-context filters.
func (w *Workspace) SetTodoFilters(opts []filter.Option) {
	w.mu.Lock()
	w.todoFilters = slices.Clone(opts)
	w.mu.Unlock()
}

// TodoFilters returns the todo list's in-context filters.
func (w *Workspace) TodoFilters() []filter.Option {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.todoFilters)
}

// FilteredTodos applies opts, or the in-context filters when opts is nil, to
// the held tasks with the todo evaluator. A leadId option follows the active
// lead when one is set.
func (w *Workspace) FilteredTodos(opts []filter.Option) []crm.Todo {
	w.mu.RLock()
	var active *int64
	if w.activeLead != nil {
		id := *w.activeLead
		active = &id
	}
	if opts == nil {
		opts = slices.Clone(w.todoFilters)
	}
	w.mu.RUnlock()

	return filter.TodoFilter{ActiveLeadID: active}.Apply(w.store.Snapshot().Todos, opts)
}

// FilteredLeads applies opts to the held leads with the general evaluator.
func (w *Workspace) FilteredLeads(opts []filter.Option) []crm.Lead {
	return filter.Apply(w.store.Snapshot().Leads, opts)
}

// Tab is a todo list tab.
type Tab string

const (
	TabToday     Tab = "today"
	TabUpcoming  Tab = "upcoming"
	TabOverdue   Tab = "overdue"
	TabCompleted Tab = "completed"
	TabCancelled Tab = "cancelled"
	TabAll       Tab = "all"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabToday, TabUpcoming, TabOverdue, TabCompleted, TabCancelled, TabAll}

// ParseTab returns the tab named s, defaulting to today.
func ParseTab(s string) Tab {
	for _, t := range Tabs {
		if string(t) == strings.ToLower(strings.TrimSpace(s)) {
			return t
		}
	}
	return TabToday
}

// Next returns the tab after t, wrapping around.
func (t Tab) Next() Tab {
	i := slices.Index(Tabs, t)
	return Tabs[(i+1)%len(Tabs)]
}

// Prev returns the tab before t, wrapping around.
func (t Tab) Prev() Tab {
	i := slices.Index(Tabs, t)
	if i <= 0 {
		return Tabs[len(Tabs)-1]
	}
	return Tabs[i-1]
}

// TodosForTab selects the tasks belonging to tab relative to now, ordered by
// time. Today holds open tasks due today, upcoming those due after today, and
// overdue open tasks due before today.
func TodosForTab(todos []crm.Todo, tab Tab, now time.Time) []crm.Todo {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	out := make([]crm.Todo, 0, len(todos))
	for _, t := range todos {
		at := t.DateTime.In(now.Location())
		var keep bool
		switch tab {
		case TabToday:
			keep = t.IsOpen() && !at.Before(start) && at.Before(end)
		case TabUpcoming:
			keep = t.IsOpen() && !at.Before(end)
		case TabOverdue:
			keep = t.IsOpen() && at.Before(start)
		case TabCompleted:
			keep = t.Status == crm.TodoCompleted
		case TabCancelled:
			keep = t.Status == crm.TodoCancelled
		case TabAll:
			keep = true
		}
		if keep {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b crm.Todo) int {
		if tab == TabCompleted || tab == TabCancelled {
			return b.DateTime.Compare(a.DateTime)
		}
		return a.DateTime.Compare(b.DateTime)
	})
	return out
}

// TodoSection is the uistate section key of a todo list scoped to type t.
// TodoTypeUnset is the combined list.
func TodoSection(t crm.TodoType) string {
	return "todos_" + t.SectionName()
}

// LeadSection is the uistate section key of the lead list.
const LeadSection = "leads"

// LeadQueryFor builds a get_leads query from persisted list state.
func LeadQueryFor(st uistate.State, perPage int) crmapi.LeadQuery {
	return crmapi.LeadQuery{
		Page:      max(st.CurrentPage, 1),
		PerPage:   perPage,
		SortField: st.SortField,
		SortOrder: st.SortDirection,
		Query:     strings.TrimSpace(st.SearchQuery),
		Filters:   slices.Clone(st.Filters),
	}
}

// TodoQueryFor builds a get_tasks query from persisted list state. Tabs are
// applied client-side, so the query covers every status.
func TodoQueryFor(st uistate.State, t crm.TodoType, perPage int) crmapi.TodoQuery {
	return crmapi.TodoQuery{
		Page:      max(st.CurrentPage, 1),
		PerPage:   perPage,
		SortField: st.SortField,
		SortOrder: st.SortDirection,
		Query:     strings.TrimSpace(st.SearchQuery),
		Type:      t,
		Filters:   slices.Clone(st.Filters),
	}
}
