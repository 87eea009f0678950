package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/leaddesk/internal/crmerr"
	"github.com/five82/leaddesk/internal/workspace"
)

// renderHeader renders the status bar: connection state, loading activity
// and list totals.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	b := newBar(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	b.add(styles.Logo, "leaddesk")

	snap := m.snapshot
	switch {
	case snap.IsOffline():
		b.add(styles.DangerText, "● OFFLINE")
	case snap.LastError != nil:
		b.add(styles.WarningText, "● "+crmerr.UserMessage(snap.LastError))
	case snap.HasLeads || snap.HasTodos:
		b.add(styles.SuccessText, "● ONLINE")
	default:
		b.add(styles.MutedText, "● connecting")
	}

	switch {
	case m.loading():
		b.add(styles.AccentText, m.spinner.View())
	case m.backgroundLoading():
		b.add(styles.FaintText, "·")
	}

	if snap.HasLeads {
		b.pair("Leads:", fmt.Sprint(snap.LeadsTotal), styles.MutedText, styles.Text)
	}
	if snap.HasTodos {
		b.pair("Todos:", fmt.Sprint(snap.TodosTotal), styles.MutedText, styles.Text)
	}
	if id, ok := m.ws.ActiveLead(); ok && !compact {
		label := fmt.Sprintf("#%d", id)
		if lead, found := snap.Lead(id); found {
			label = lead.Name
		}
		b.pair("Focus:", truncate(label, 20), styles.MutedText, styles.WarningText)
	}
	if !snap.LastUpdated.IsZero() && !compact {
		b.add(styles.FaintText, "updated "+humanizeAge(m.now().Sub(snap.LastUpdated))+" ago")
	}

	return styles.Header.Width(m.width).Render(b.join("  "))
}

// renderTabs renders the view switcher.
func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	tabs := make([]string, len(viewOrder))
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, titleCase(v.String()))
		if v == m.view {
			tabs[i] = styles.AccentText.Bold(true).Underline(true).Render(label)
		} else {
			tabs[i] = styles.MutedText.Render(label)
		}
	}
	return " " + strings.Join(tabs, "   ")
}

// renderFooter renders the newest toast or the key hint.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	b := newBar(m.theme.Surface)

	if t, ok := m.latestToast(); ok {
		style := styles.InfoText
		switch t.notice.Level {
		case workspace.LevelSuccess:
			style = styles.SuccessText
		case workspace.LevelError:
			style = styles.DangerText
		}
		text := t.notice.Message
		if more := len(m.toasts) - 1; more > 0 {
			text += fmt.Sprintf(" (+%d)", more)
		}
		b.add(style, truncate(text, m.width-2))
	} else if !m.prefs.HintDismissed {
		b.add(styles.FaintText, "? for help · H to hide")
	}
	return b.fill(m.width)
}

// bar collects segments painted on one background color. Each word is styled
// on its own so the ANSI resets between segments keep the bar color.
type bar struct {
	bg    lipgloss.Color
	parts []string
}

func newBar(color string) *bar {
	return &bar{bg: lipgloss.Color(color)}
}

func (b *bar) words(style lipgloss.Style, text string) string {
	style = style.Background(b.bg)
	fields := strings.Split(text, " ")
	for i, w := range fields {
		if w != "" {
			fields[i] = style.Render(w)
		}
	}
	return strings.Join(fields, b.space(1))
}

func (b *bar) space(n int) string {
	return lipgloss.NewStyle().Background(b.bg).Render(strings.Repeat(" ", n))
}

func (b *bar) add(style lipgloss.Style, text string) {
	if text != "" {
		b.parts = append(b.parts, b.words(style, text))
	}
}

func (b *bar) pair(label, value string, labelStyle, valueStyle lipgloss.Style) {
	b.parts = append(b.parts, b.words(labelStyle, label)+b.space(1)+b.words(valueStyle, value))
}

func (b *bar) join(sep string) string {
	return strings.Join(b.parts, b.space(len(sep)))
}

// fill renders the segments after a one cell margin, padded to width.
func (b *bar) fill(width int) string {
	content := ""
	if len(b.parts) > 0 {
		content = b.space(1) + b.join("  ")
	}
	return lipgloss.NewStyle().Background(b.bg).Width(width).Render(content)
}
