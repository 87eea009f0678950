package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/leaddesk/internal/crm"
	"github.com/five82/leaddesk/internal/crmapi"
	"github.com/five82/leaddesk/internal/crmerr"
	"github.com/five82/leaddesk/internal/filter"
	"github.com/five82/leaddesk/internal/uistate"
	"github.com/five82/leaddesk/internal/workspace"
)

var todoSortFields = []string{"date_time", "created_at", "type", "status"}

var todoFilterFields = []string{"type", "status", "location", "participants", "leadName", "dateTime", "notes"}

// todoKinds are the type sections, the combined list first.
var todoKinds = append([]crm.TodoType{crm.TodoTypeUnset}, crm.TodoTypeCodec.Values()...)

type todoList struct {
	listStatus
	page      crmapi.TodoPage
	row       int
	kind      crm.TodoType
	focusName string
}

func (l *todoList) apply(msg todosMsg) {
	if l.finish(msg.seq, msg.err, msg.at) {
		l.page = msg.page
	}
}

func (m Model) todoSection() *uistate.Section {
	return m.section(workspace.TodoSection(m.todos.kind))
}

func (m Model) todoTab() workspace.Tab {
	return workspace.ParseTab(m.todoSection().State().ActiveTab)
}

// todoRows narrows the fetched page with the task evaluator, then selects
// the active tab.
func (m Model) todoRows() []crm.Todo {
	tf := filter.TodoFilter{}
	if id, ok := m.ws.ActiveLead(); ok {
		tf.ActiveLeadID = &id
	}
	opts := append(m.ws.TodoFilters(), m.todoSection().State().Filters...)
	return workspace.TodosForTab(tf.Apply(m.todos.page.Todos, opts), m.todoTab(), m.now())
}

func (m Model) selectedTodo() (crm.Todo, bool) {
	rows := m.todoRows()
	if m.todos.row < 0 || m.todos.row >= len(rows) {
		return crm.Todo{}, false
	}
	return rows[m.todos.row], true
}

func (m Model) handleTodosKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if row, ok := m.navigate(msg, m.todos.row, len(m.todoRows())); ok {
		m.todos.row = row
		return m, nil
	}

	sec := m.todoSection()
	st := sec.State()

	switch {
	case key.Matches(msg, m.keys.NextTab):
		m.todos.row = 0
		return m.stateChanged(sec.UpdateState(uistate.Tab(string(m.todoTab().Next()))))
	case key.Matches(msg, m.keys.PrevTab):
		m.todos.row = 0
		return m.stateChanged(sec.UpdateState(uistate.Tab(string(m.todoTab().Prev()))))
	case key.Matches(msg, m.keys.NextSection):
		m.todos.kind = stepKind(m.todos.kind, 1)
		m.todos.row = 0
		return m.load(false, false)
	case key.Matches(msg, m.keys.PrevSection):
		m.todos.kind = stepKind(m.todos.kind, -1)
		m.todos.row = 0
		return m.load(false, false)
	case key.Matches(msg, m.keys.PrevPage):
		if st.CurrentPage <= 1 {
			return m, nil
		}
		return m.stateChanged(sec.UpdateState(uistate.Page(st.CurrentPage - 1)))
	case key.Matches(msg, m.keys.NextPage):
		if st.CurrentPage >= totalPages(m.todos.page.Total, m.perPage) {
			return m, nil
		}
		return m.stateChanged(sec.UpdateState(uistate.Page(st.CurrentPage + 1)))
	case key.Matches(msg, m.keys.CycleSort):
		return m.stateChanged(sec.UpdateState(sortPatch(nextField(todoSortFields, st.SortField), st.SortDirection)))
	case key.Matches(msg, m.keys.FlipSort):
		return m.stateChanged(sec.UpdateState(sortPatch(st.SortField, flipDirection(st.SortDirection))))
	case key.Matches(msg, m.keys.Search):
		m.modal = newSearchModal(ViewTodos, "Search todos", st.SearchQuery)
		return m, nil
	case key.Matches(msg, m.keys.Filters):
		m.modal = newFilterModal("Todo filters", todoFilterFields, st.Filters)
		return m, nil
	case key.Matches(msg, m.keys.ClearFilters):
		return m.stateChanged(sec.ClearFilters())
	case key.Matches(msg, m.keys.ResetView):
		return m.stateChanged(sec.ResetState())
	case key.Matches(msg, m.keys.ClearFocus):
		m.ws.ClearActiveLead()
		m.ws.SetTodoFilters(nil)
		m.todos.focusName = ""
		return m.load(false, false)
	}

	todo, ok := m.selectedTodo()
	if !ok {
		return m, nil
	}
	ws := m.ws
	switch {
	case key.Matches(msg, m.keys.Complete):
		return m, m.todoActionCmd("completed", func(ctx context.Context) (crm.Todo, error) {
			return ws.CompleteTodo(ctx, todo.ID, "")
		})
	case key.Matches(msg, m.keys.CancelTodo):
		return m, m.todoActionCmd("cancelled", func(ctx context.Context) (crm.Todo, error) {
			return ws.CancelTodo(ctx, todo.ID)
		})
	case key.Matches(msg, m.keys.Reschedule):
		at := todo.DateTime
		if at.IsZero() {
			at = m.now()
		}
		return m, m.todoActionCmd("rescheduled", func(ctx context.Context) (crm.Todo, error) {
			return ws.RescheduleTodo(ctx, todo.ID, at.AddDate(0, 0, 1))
		})
	}
	return m, nil
}

func stepKind(current crm.TodoType, delta int) crm.TodoType {
	i := 0
	for idx, k := range todoKinds {
		if k == current {
			i = idx
		}
	}
	n := len(todoKinds)
	return todoKinds[((i+delta)%n+n)%n]
}

func (m Model) handleTodoSaved(msg todoSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.pushToast(workspace.Notice{Level: workspace.LevelError, Message: "Update failed: " + crmerr.UserMessage(msg.err), At: m.now()})
	}
	for _, page := range []*crmapi.TodoPage{&m.todos.page, &m.calendar.page} {
		for i, t := range page.Todos {
			if t.ID == msg.todo.ID {
				page.Todos[i] = msg.todo
			}
		}
	}
	return m.pushToast(workspace.Notice{Level: workspace.LevelSuccess, Message: "Task " + msg.action, At: m.now()})
}

func (m Model) renderTodos() string {
	styles := m.theme.Styles()
	st := m.todoSection().State()

	var b strings.Builder
	b.WriteString(m.renderListStatus(st, m.todos.page.Total, "todos"))
	b.WriteString("\n")

	kinds := make([]string, len(todoKinds))
	for i, k := range todoKinds {
		label := k.String()
		if k == crm.TodoTypeUnset {
			label = "All"
		}
		kinds[i] = choice(label, k == m.todos.kind, styles)
	}
	tabs := make([]string, len(workspace.Tabs))
	current := m.todoTab()
	for i, t := range workspace.Tabs {
		tabs[i] = choice(string(t), t == current, styles)
	}
	b.WriteString(strings.Join(kinds, " ") + styles.FaintText.Render("  │  ") + strings.Join(tabs, " "))
	b.WriteString("\n")

	height := m.contentHeight() - 2
	if m.todos.focusName != "" {
		b.WriteString(styles.WarningText.Render(fmt.Sprintf("Focused on %s", m.todos.focusName)) +
			styles.FaintText.Render("  (u to clear)"))
		b.WriteString("\n")
		height--
	}

	rows := m.todoRows()
	if placeholder, ok := m.placeholder(m.todos.listStatus, len(rows), "Nothing here"); ok {
		b.WriteString(placeholder)
		return b.String()
	}

	cols := []column{
		{title: "When", width: 16},
		{title: "Type", width: 10},
		{title: "Lead", width: 16, flex: true},
		{title: "Status", width: 11},
	}
	compact := m.width < LayoutCompactWidth
	if !compact {
		cols = append(cols,
			column{title: "Location", width: 16},
			column{title: "Notes", width: 20, flex: true},
		)
	}

	out := make([]tableRow, len(rows))
	for i, t := range rows {
		cells := []string{formatWhen(t.DateTime, m.now()), t.Type.String(), todoLeadName(t), t.Status.String()}
		if !compact {
			cells = append(cells, t.Location, t.Notes)
		}
		styled := make([]string, len(cells))
		if wire, err := crm.TodoStatusCodec.Encode(t.Status); err == nil {
			styled[3] = styles.BadgeStyle(wire).Render(t.Status.String())
		}
		if t.IsOpen() && t.DateTime.Before(m.now()) {
			styled[0] = styles.DangerText.Render(cells[0])
		}
		out[i] = tableRow{cells: cells, styled: styled}
	}
	b.WriteString(m.renderTable(cols, out, clampRow(m.todos.row, len(out)), height))
	return b.String()
}

func todoLeadName(t crm.Todo) string {
	if t.Lead != nil && t.Lead.Name != "" {
		return t.Lead.Name
	}
	if t.LeadID != 0 {
		return fmt.Sprintf("#%d", t.LeadID)
	}
	return ""
}

func choice(label string, active bool, styles Styles) string {
	if active {
		return styles.AccentText.Bold(true).Underline(true).Render(label)
	}
	return styles.MutedText.Render(label)
}
