package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/leaddesk/internal/crmerr"
	"github.com/five82/leaddesk/internal/logtail"
)

// activityLevels is the cycle for the minimum level filter.
var activityLevels = []string{"debug", "info", "warn", "error"}

// activityView shows the tail of the application's own log file.
type activityView struct {
	viewport viewport.Model
	entries  []logtail.Entry
	level    string
	query    string
	follow   bool
	err      error
	loaded   bool
}

func (a *activityView) apply(msg activityMsg) {
	a.loaded = true
	a.err = msg.err
	if msg.err == nil {
		a.entries = msg.entries
	}
}

func (a activityView) visible() []logtail.Entry {
	return logtail.Filter(a.entries, a.level, a.query)
}

// resizeActivity fits the viewport to the content area.
func (m *Model) resizeActivity() {
	m.activity.viewport.Width = max(m.width, 0)
	m.activity.viewport.Height = max(m.contentHeight()-1, 1)
	m.renderActivity()
}

// renderActivity refreshes the viewport content from the loaded entries.
func (m *Model) renderActivity() {
	styles := m.theme.Styles()
	entries := m.activity.visible()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, m.formatEntry(e, styles))
	}
	m.activity.viewport.SetContent(strings.Join(lines, "\n"))
	if m.activity.follow {
		m.activity.viewport.GotoBottom()
	}
}

func (m Model) formatEntry(e logtail.Entry, styles Styles) string {
	if !e.Structured() {
		return styles.FaintText.Render(truncate(e.Raw, m.width))
	}

	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(styles.FaintText.Render(e.Time.Local().Format("01-02 15:04:05")))
		b.WriteString(" ")
	}
	b.WriteString(levelStyle(e.Level, styles).Render(fmt.Sprintf("%-5s", e.Level)))
	b.WriteString(" ")
	if e.Component != "" {
		b.WriteString(styles.AccentText.Render(e.Component))
		b.WriteString(" ")
	}
	b.WriteString(styles.Text.Render(e.Message))
	for _, k := range e.AttrKeys() {
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(k + "=" + e.Attrs[k]))
	}
	return b.String()
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch strings.ToUpper(level) {
	case "ERROR":
		return styles.DangerText
	case "WARN", "WARNING":
		return styles.WarningText
	case "DEBUG":
		return styles.FaintText
	default:
		return styles.InfoText
	}
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := &m.activity.viewport
	switch {
	case key.Matches(msg, m.keys.Up):
		vp.ScrollUp(1)
		m.activity.follow = false
	case key.Matches(msg, m.keys.Down):
		vp.ScrollDown(1)
		m.activity.follow = vp.AtBottom()
	case key.Matches(msg, m.keys.PrevPage):
		vp.PageUp()
		m.activity.follow = false
	case key.Matches(msg, m.keys.NextPage):
		vp.PageDown()
		m.activity.follow = vp.AtBottom()
	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
		m.activity.follow = false
	case key.Matches(msg, m.keys.Bottom):
		vp.GotoBottom()
		m.activity.follow = true
	case key.Matches(msg, m.keys.CycleLevel):
		m.activity.level = nextField(activityLevels, m.activity.level)
		m.renderActivity()
	case key.Matches(msg, m.keys.Search):
		m.modal = newSearchModal(ViewActivity, "Search activity", m.activity.query)
	case key.Matches(msg, m.keys.ClearFilters):
		m.activity.query = ""
		m.renderActivity()
	}
	return m, nil
}

func (m Model) renderActivityView() string {
	styles := m.theme.Styles()

	status := []string{
		fmt.Sprintf("level ≥ %s", m.activity.level),
		fmt.Sprintf("%d/%d lines", len(m.activity.visible()), len(m.activity.entries)),
	}
	if m.activity.query != "" {
		status = append(status, fmt.Sprintf("search %q", m.activity.query))
	}
	if m.activity.follow {
		status = append(status, "following")
	}
	head := styles.MutedText.Render(strings.Join(status, "  "))

	switch {
	case m.logPath == "":
		return head + "\n" + styles.FaintText.Render("Logging to a file is disabled")
	case m.activity.err != nil:
		return head + "\n" + styles.DangerText.Render(crmerr.UserMessage(m.activity.err))
	case !m.activity.loaded:
		return head + "\n" + styles.MutedText.Render("Loading...")
	case len(m.activity.entries) == 0:
		return head + "\n" + styles.FaintText.Render("No activity yet")
	}
	return head + "\n" + m.activity.viewport.View()
}
