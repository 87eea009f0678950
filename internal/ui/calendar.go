package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/leaddesk/internal/crm"
	"github.com/five82/leaddesk/internal/crmapi"
)

type calendarView struct {
	listStatus
	start time.Time
	page  crmapi.TodoPage
}

func (c *calendarView) apply(msg todosMsg) {
	if c.finish(msg.seq, msg.err, msg.at) {
		c.page = msg.page
	}
}

// agendaDay is one day of the agenda and the tasks due on it.
type agendaDay struct {
	date  time.Time
	todos []crm.Todo
}

// buildAgenda buckets todos into days consecutive days from start, in the
// start's location. Tasks outside the window are dropped.
func buildAgenda(todos []crm.Todo, start time.Time, days int) []agendaDay {
	start = startOfDay(start)
	out := make([]agendaDay, days)
	for i := range out {
		out[i].date = start.AddDate(0, 0, i)
	}
	for _, t := range todos {
		at := t.DateTime.In(start.Location())
		for i := range out {
			next := out[i].date.AddDate(0, 0, 1)
			if !at.Before(out[i].date) && at.Before(next) {
				out[i].todos = append(out[i].todos, t)
				break
			}
		}
	}
	for i := range out {
		slices.SortStableFunc(out[i].todos, func(a, b crm.Todo) int {
			return a.DateTime.Compare(b.DateTime)
		})
	}
	return out
}

func (m Model) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.NextPage):
		m.calendar.start = m.calendar.start.AddDate(0, 0, CalendarDays)
		return m.load(false, false)
	case key.Matches(msg, m.keys.PrevTab), key.Matches(msg, m.keys.PrevPage):
		m.calendar.start = m.calendar.start.AddDate(0, 0, -CalendarDays)
		return m.load(false, false)
	case key.Matches(msg, m.keys.Top):
		m.calendar.start = startOfDay(m.now())
		return m.load(false, false)
	}
	return m, nil
}

func (m Model) renderCalendar() string {
	styles := m.theme.Styles()
	end := m.calendar.start.AddDate(0, 0, CalendarDays-1)

	var b strings.Builder
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("%s - %s",
		m.calendar.start.Format("Mon 2 Jan"), end.Format("Mon 2 Jan 2006"))))

	if m.calendar.loading && !m.calendar.has {
		b.WriteString("\n" + m.spinner.View() + " " + styles.MutedText.Render("Loading..."))
		return b.String()
	}

	today := startOfDay(m.now())
	lines := 1
	limit := m.contentHeight()
	for _, day := range buildAgenda(m.calendar.page.Todos, m.calendar.start, CalendarDays) {
		if lines >= limit {
			break
		}
		title := day.date.Format("Monday 2 Jan")
		style := styles.AccentText.Bold(true)
		if day.date.Equal(today) {
			style = styles.WarningText.Bold(true)
			title += "  today"
		}
		b.WriteString("\n" + style.Render(title))
		lines++

		if len(day.todos) == 0 {
			b.WriteString("\n  " + styles.FaintText.Render("nothing scheduled"))
			lines++
			continue
		}
		for _, t := range day.todos {
			if lines >= limit {
				break
			}
			line := fmt.Sprintf("%s  %-10s %s", t.DateTime.In(m.calendar.start.Location()).Format("15:04"), t.Type.String(), todoLeadName(t))
			if t.Location != "" {
				line += " @ " + t.Location
			}
			style := styles.Text
			if !t.IsOpen() {
				style = styles.FaintText.Strikethrough(true)
			}
			b.WriteString("\n  " + style.Render(truncate(line, m.width-2)))
			lines++
		}
	}
	return b.String()
}
