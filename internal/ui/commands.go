package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/leaddesk/internal/crm"
	"github.com/five82/leaddesk/internal/crmapi"
	"github.com/five82/leaddesk/internal/fetcher"
	"github.com/five82/leaddesk/internal/logtail"
	"github.com/five82/leaddesk/internal/uistate"
	"github.com/five82/leaddesk/internal/workspace"
)

// listStatus tracks one list's loading indicators.
type listStatus struct {
	loading    bool
	background bool
	err        error
	has        bool
	updatedAt  time.Time
	// seq numbers the latest issued fetch; older results are dropped.
	seq uint64
}

// begin marks a fetch in flight. Background fetches keep rows on screen and
// only show the subtle indicator.
func (s *listStatus) begin(background bool) {
	s.seq++
	if background {
		s.background = true
		return
	}
	s.loading = true
}

// finish records the result of fetch seq and reports whether its data should
// replace what is on screen. A result older than the latest issued fetch
// changes nothing, loading flags included.
func (s *listStatus) finish(seq uint64, err error, at time.Time) bool {
	if seq != s.seq {
		return false
	}
	s.loading = false
	s.background = false
	s.err = err
	if err != nil {
		return false
	}
	s.has = true
	s.updatedAt = at
	return true
}

type leadsMsg struct {
	seq  uint64
	page crmapi.LeadPage
	err  error
	at   time.Time
}

type todosMsg struct {
	seq      uint64
	page     crmapi.TodoPage
	err      error
	at       time.Time
	calendar bool
}

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

type leadSavedMsg struct {
	lead    crm.Lead
	created bool
	err     error
}

type todoSavedMsg struct {
	todo   crm.Todo
	action string
	err    error
}

type loginMsg struct {
	err error
}

func callOptions(background, force bool) []fetcher.CallOption {
	var opts []fetcher.CallOption
	if background {
		opts = append(opts, fetcher.Background())
	}
	if force {
		opts = append(opts, fetcher.ForceRefresh())
	}
	return opts
}

// fetchCmd runs one fetch and wraps its outcome.
func fetchCmd[P, T any](ctx context.Context, f *fetcher.Fetcher[P, T], params P, opts []fetcher.CallOption, now func() time.Time, wrap func(T, error, time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		data, err := f.Fetch(ctx, params, opts...)
		return wrap(data, err, now())
	}
}

func (m Model) section(name string) *uistate.Section {
	return m.views.Section(name)
}

func (m Model) fetchLeadsCmd(background, force bool) tea.Cmd {
	if m.lists == nil {
		return nil
	}
	q := workspace.LeadQueryFor(m.section(workspace.LeadSection).State(), m.perPage)
	seq := m.leads.seq
	return fetchCmd(m.ctx, m.lists.Leads, q, callOptions(background, force), m.now,
		func(page crmapi.LeadPage, err error, at time.Time) tea.Msg {
			return leadsMsg{seq: seq, page: page, err: err, at: at}
		})
}

func (m Model) todoQuery() crmapi.TodoQuery {
	st := m.section(workspace.TodoSection(m.todos.kind)).State()
	q := workspace.TodoQueryFor(st, m.todos.kind, m.perPage)
	if id, ok := m.ws.ActiveLead(); ok {
		q.LeadID = id
	}
	return q
}

func (m Model) fetchTodosCmd(background, force bool) tea.Cmd {
	if m.lists == nil {
		return nil
	}
	seq := m.todos.seq
	return fetchCmd(m.ctx, m.lists.Todos, m.todoQuery(), callOptions(background, force), m.now,
		func(page crmapi.TodoPage, err error, at time.Time) tea.Msg {
			return todosMsg{seq: seq, page: page, err: err, at: at}
		})
}

func (m Model) calendarQuery() crmapi.TodoQuery {
	return crmapi.TodoQuery{
		Page:      1,
		PerPage:   CalendarPageSize,
		SortField: "date_time",
		SortOrder: uistate.SortAsc,
		From:      m.calendar.start,
		To:        m.calendar.start.AddDate(0, 0, CalendarDays),
	}
}

func (m Model) fetchCalendarCmd(background, force bool) tea.Cmd {
	if m.lists == nil {
		return nil
	}
	seq := m.calendar.seq
	return fetchCmd(m.ctx, m.lists.Todos, m.calendarQuery(), callOptions(background, force), m.now,
		func(page crmapi.TodoPage, err error, at time.Time) tea.Msg {
			return todosMsg{seq: seq, page: page, err: err, at: at, calendar: true}
		})
}

func (m Model) tailActivityCmd() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.Tail(path, ActivityTailLines)
		return activityMsg{entries: entries, err: err}
	}
}

func (m Model) saveLeadCmd(msg leadSubmitMsg) tea.Cmd {
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		if msg.id == 0 {
			lead, err := ws.AddLead(ctx, msg.lead)
			return leadSavedMsg{lead: lead, created: true, err: err}
		}
		lead, err := ws.UpdateLead(ctx, msg.lead, msg.patch)
		return leadSavedMsg{lead: lead, err: err}
	}
}

func (m Model) todoActionCmd(action string, fn func(context.Context) (crm.Todo, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		todo, err := fn(ctx)
		return todoSavedMsg{todo: todo, action: action, err: err}
	}
}

func (m Model) verifyCmd(code string) tea.Cmd {
	gate, ctx := m.gate, m.ctx
	return func() tea.Msg {
		return loginMsg{err: gate.Verify(ctx, code)}
	}
}
