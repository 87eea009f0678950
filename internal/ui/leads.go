package ui

import (
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

// leadSortFields are the server-side sort keys the lead list cycles through.
var leadSortFields = []string{"created_at", "updated_at", "name", "budget", "stage"}

// leadFilterFields are the lead fields offered by the filter editor.
var leadFilterFields = []string{"stage", "source", "requirement", "propertyType", "budget", "locations", "tags", "assignedTo", "name"}

type leadList struct {
	listStatus
	page crmapi.LeadPage
	row  int
}

func (l *leadList) apply(msg leadsMsg) {
	if l.finish(msg.seq, msg.err, msg.at) {
		l.page = msg.page
	}
	l.row = clampRow(l.row, len(l.page.Leads))
}

// leadRows is the fetched page narrowed by the list's filters.
func (m Model) leadRows() []crm.Lead {
	st := m.section(workspace.LeadSection).State()
	return narrowLeads(m.leads.page.Leads, st.Filters)
}

// narrowLeads applies opts the way the server reads them. An "=" option with
// a list value on a single-valued field such as stage matches any entry;
// filter.Apply would compare the whole list against the field.
func narrowLeads(leads []crm.Lead, opts []filter.Option) []crm.Lead {
	var plain, alternatives []filter.Option
	for _, opt := range opts {
		if _, isList := filter.Normalize(opt.Value).([]string); isList && opt.Operator == filter.OpEqual {
			alternatives = append(alternatives, opt)
		} else {
			plain = append(plain, opt)
		}
	}
	rows := filter.Apply(leads, plain)
	if len(alternatives) == 0 {
		return rows
	}
	out := make([]crm.Lead, 0, len(rows))
	for _, l := range rows {
		if matchesAll(l, alternatives) {
			out = append(out, l)
		}
	}
	return out
}

func matchesAll(item filter.Fielder, alternatives []filter.Option) bool {
	for _, opt := range alternatives {
		if !matchesAny(item, opt) {
			return false
		}
	}
	return true
}

// matchesAny reports whether item equals one of opt's listed values. Array
// fields keep the evaluator's own any-of semantics.
func matchesAny(item filter.Fielder, opt filter.Option) bool {
	raw, ok := item.Field(opt.Field)
	if !ok {
		return false
	}
	if _, isArr := filter.Normalize(raw).([]string); isArr {
		return filter.Match(item, []filter.Option{opt})
	}
	for _, want := range filter.Normalize(opt.Value).([]string) {
		single := filter.Option{Field: opt.Field, Operator: filter.OpEqual, Value: parseFilterValue(want)}
		if filter.Match(item, []filter.Option{single}) {
			return true
		}
	}
	return false
}

func (m Model) selectedLead() (crm.Lead, bool) {
	rows := m.leadRows()
	if m.leads.row < 0 || m.leads.row >= len(rows) {
		return crm.Lead{}, false
	}
	return rows[m.leads.row], true
}

func (m Model) handleLeadsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if row, ok := m.navigate(msg, m.leads.row, len(m.leadRows())); ok {
		m.leads.row = row
		return m, nil
	}

	sec := m.section(workspace.LeadSection)
	st := sec.State()

	switch {
	case key.Matches(msg, m.keys.PrevPage):
		if st.CurrentPage <= 1 {
			return m, nil
		}
		return m.stateChanged(sec.UpdateState(uistate.Page(st.CurrentPage - 1)))
	case key.Matches(msg, m.keys.NextPage):
		if st.CurrentPage >= totalPages(m.leads.page.Total, m.perPage) {
			return m, nil
		}
		return m.stateChanged(sec.UpdateState(uistate.Page(st.CurrentPage + 1)))
	case key.Matches(msg, m.keys.CycleSort):
		return m.stateChanged(sec.UpdateState(sortPatch(nextField(leadSortFields, st.SortField), st.SortDirection)))
	case key.Matches(msg, m.keys.FlipSort):
		return m.stateChanged(sec.UpdateState(sortPatch(st.SortField, flipDirection(st.SortDirection))))
	case key.Matches(msg, m.keys.Search):
		m.modal = newSearchModal(ViewLeads, "Search leads", st.SearchQuery)
		return m, nil
	case key.Matches(msg, m.keys.Filters):
		m.modal = newFilterModal("Lead filters", leadFilterFields, st.Filters)
		return m, nil
	case key.Matches(msg, m.keys.ClearFilters):
		return m.stateChanged(sec.ClearFilters())
	case key.Matches(msg, m.keys.ResetView):
		return m.stateChanged(sec.ResetState())
	case key.Matches(msg, m.keys.NewLead):
		m.modal = newLeadModal(nil)
		return m, nil
	case key.Matches(msg, m.keys.EditLead):
		if lead, ok := m.selectedLead(); ok {
			m.modal = newLeadModal(&lead)
		}
		return m, nil
	case key.Matches(msg, m.keys.LeadTodos):
		lead, ok := m.selectedLead()
		if !ok {
			return m, nil
		}
		m.ws.SetActiveLead(lead.ID)
		m.ws.SetTodoFilters([]filter.Option{{Field: "leadId", Operator: filter.OpEqual, Value: lead.ID}})
		m.todos.focusName = lead.Name
		return m.switchView(ViewTodos)
	}
	return m, nil
}

// stateChanged reloads the current view after a list-state mutation. A
// persistence failure is reported but the in-memory state already moved.
func (m Model) stateChanged(err error) (tea.Model, tea.Cmd) {
	m2, cmd := m.load(false, false)
	if err != nil {
		m2.logger.Warn("persist view state failed", "error", err)
		next, toastCmd := m2.pushToast(workspace.Notice{Level: workspace.LevelError, Message: crmerr.UserMessage(err), At: m2.now()})
		return next, tea.Batch(cmd, toastCmd)
	}
	return m2, cmd
}

func (m Model) handleLeadSaved(msg leadSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.pushToast(workspace.Notice{Level: workspace.LevelError, Message: "Save failed: " + crmerr.UserMessage(msg.err), At: m.now()})
	}
	if msg.created {
		// The workspace announces additions itself.
		return m, nil
	}
	for i, l := range m.leads.page.Leads {
		if l.ID == msg.lead.ID {
			m.leads.page.Leads[i] = l.Merge(msg.lead)
		}
	}
	return m.pushToast(workspace.Notice{Level: workspace.LevelSuccess, Message: fmt.Sprintf("Saved %s", msg.lead.Name), At: m.now()})
}

func (m Model) renderLeads() string {
	styles := m.theme.Styles()
	st := m.section(workspace.LeadSection).State()

	var b strings.Builder
	b.WriteString(m.renderListStatus(st, m.leads.page.Total, "leads"))
	b.WriteString("\n")

	leads := m.leadRows()
	if placeholder, ok := m.placeholder(m.leads.listStatus, len(leads), "No leads match"); ok {
		b.WriteString(placeholder)
		return b.String()
	}

	compact := m.width < LayoutCompactWidth
	cols := []column{
		{title: "Name", width: 18, flex: true},
		{title: "Phone", width: 14},
		{title: "Stage", width: 24},
		{title: "Budget", width: 10},
	}
	if !compact {
		cols = append(cols,
			column{title: "Source", width: 15},
			column{title: "Locations", width: 18, flex: true},
		)
	}
	if m.width >= LayoutUpdatedWidth {
		cols = append(cols, column{title: "Updated", width: 10})
	}

	rows := make([]tableRow, len(leads))
	for i, l := range leads {
		cells := []string{l.Name, l.Phone, l.Stage.String(), formatBudget(l.Budget)}
		if !compact {
			cells = append(cells, l.Source.String(), strings.Join(l.Locations, ", "))
		}
		if m.width >= LayoutUpdatedWidth {
			cells = append(cells, humanizeAge(m.now().Sub(l.UpdatedAt)))
		}
		styled := make([]string, len(cells))
		styled[2] = m.stageBadge(l.Stage, styles)
		rows[i] = tableRow{cells: cells, styled: styled}
	}

	b.WriteString(m.renderTable(cols, rows, clampRow(m.leads.row, len(rows)), m.contentHeight()-1))
	return b.String()
}

func (m Model) stageBadge(s crm.Stage, styles Styles) string {
	if s == crm.StageUnset {
		return styles.FaintText.Render("-")
	}
	wire, _ := crm.StageCodec.Encode(s)
	return styles.BadgeStyle(wire).Render(s.String())
}

// renderListStatus summarizes page, sort, search and filters of a list.
func (m Model) renderListStatus(st uistate.State, total int, noun string) string {
	styles := m.theme.Styles()
	parts := []string{
		fmt.Sprintf("Page %d/%d", max(st.CurrentPage, 1), totalPages(total, m.perPage)),
		fmt.Sprintf("%d %s", total, noun),
	}
	if st.SortField != "" {
		parts = append(parts, fmt.Sprintf("sort %s %s", st.SortField, directionArrow(st.SortDirection)))
	}
	if q := strings.TrimSpace(st.SearchQuery); q != "" {
		parts = append(parts, fmt.Sprintf("search %q", q))
	}
	line := styles.MutedText.Render(strings.Join(parts, "  "))
	if len(st.Filters) > 0 {
		labels := make([]string, len(st.Filters))
		for i, f := range st.Filters {
			labels[i] = f.String()
		}
		line += "  " + styles.AccentText.Render("filters: "+strings.Join(labels, ", "))
	}
	return line
}

// placeholder returns a message to show instead of an empty table.
func (m Model) placeholder(s listStatus, rows int, empty string) (string, bool) {
	styles := m.theme.Styles()
	switch {
	case rows > 0:
		return "", false
	case s.loading:
		return m.spinner.View() + " " + styles.MutedText.Render("Loading..."), true
	case s.err != nil && !s.has:
		return styles.DangerText.Render(crmerr.UserMessage(s.err)), true
	default:
		return styles.FaintText.Render(empty), true
	}
}

func sortPatch(field, direction string) uistate.Patch {
	p := uistate.Sort(field, direction)
	one := 1
	p.CurrentPage = &one
	return p
}

func nextField(fields []string, current string) string {
	for i, f := range fields {
		if f == current {
			return fields[(i+1)%len(fields)]
		}
	}
	return fields[0]
}

func flipDirection(dir string) string {
	if dir == uistate.SortAsc {
		return uistate.SortDesc
	}
	return uistate.SortAsc
}

func directionArrow(dir string) string {
	if dir == uistate.SortAsc {
		return "↑"
	}
	return "↓"
}

func totalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
