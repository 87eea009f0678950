package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// helpTitles names the FullHelp groups, in order.
var helpTitles = []string{"Views", "Navigation", "Lists", "Leads", "Todos", "Activity", "General"}

const (
	helpKeyWidth    = 12
	helpColumnWidth = 34
)

// renderHelp draws the key bindings as a centered overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := fg(m.theme.Warning).Width(helpKeyWidth)

	groups := m.keys.FullHelp()
	blocks := make([]string, 0, len(groups))
	for i, group := range groups {
		var b strings.Builder
		if i < len(helpTitles) {
			b.WriteString(styles.AccentText.Bold(true).Render(helpTitles[i]))
		}
		for _, binding := range enabled(group) {
			h := binding.Help()
			b.WriteString("\n" + keyStyle.Render(h.Key) + styles.Text.Render(h.Desc))
		}
		blocks = append(blocks, b.String())
	}

	// Views, navigation and lists on the left; the rest on the right.
	split := min(3, len(blocks))
	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(helpColumnWidth).Render(strings.Join(blocks[:split], "\n\n")),
		lipgloss.NewStyle().Width(helpColumnWidth).Render(strings.Join(blocks[split:], "\n\n")),
	)

	title := styles.Text.Bold(true).Render("Keyboard Shortcuts")
	rule := styles.FaintText.Render(strings.Repeat("─", 2*helpColumnWidth))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, rule, "", columns))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

func enabled(bindings []key.Binding) []key.Binding {
	out := bindings[:0:0]
	for _, b := range bindings {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}
