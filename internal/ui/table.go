package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// column describes one table column. A flex column takes whatever width the
// fixed columns leave over.
type column struct {
	title string
	width int
	flex  bool
}

// tableRow carries plain cells, used for the selected row, and optionally
// pre-styled cells for every other row.
type tableRow struct {
	cells  []string
	styled []string
}

// renderTable draws a header and a window of rows around selected, fitting
// height lines in total.
func (m Model) renderTable(cols []column, rows []tableRow, selected, height int) string {
	styles := m.theme.Styles()
	widths := columnWidths(cols, m.width)

	var b strings.Builder
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = padCell(truncate(c.title, widths[i]), widths[i])
	}
	b.WriteString(styles.MutedText.Bold(true).Render(strings.Join(header, " ")))

	visible := max(height-1, 1)
	offset := 0
	if selected >= visible {
		offset = selected - visible + 1
	}
	end := min(offset+visible, len(rows))

	for i := offset; i < end; i++ {
		b.WriteString("\n")
		row := rows[i]
		if i == selected {
			parts := make([]string, len(cols))
			for c := range cols {
				parts[c] = padCell(truncate(cellAt(row.cells, c), widths[c]), widths[c])
			}
			b.WriteString(styles.Selected.Width(m.width).Render(strings.Join(parts, " ")))
			continue
		}
		parts := make([]string, len(cols))
		for c := range cols {
			if row.styled != nil && cellAt(row.styled, c) != "" {
				parts[c] = padCell(row.styled[c], widths[c])
				continue
			}
			parts[c] = padCell(styles.Text.Render(truncate(cellAt(row.cells, c), widths[c])), widths[c])
		}
		b.WriteString(strings.Join(parts, " "))
	}
	return b.String()
}

func columnWidths(cols []column, total int) []int {
	widths := make([]int, len(cols))
	fixed := 0
	flex := 0
	for i, c := range cols {
		widths[i] = c.width
		if c.flex {
			flex++
			continue
		}
		fixed += c.width
	}
	spare := total - fixed - (len(cols) - 1)
	if flex > 0 && spare > 0 {
		for i, c := range cols {
			if c.flex {
				widths[i] = max(c.width, spare/flex)
			}
		}
	}
	return widths
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

// padCell pads rendered content, which may carry ANSI styling, to width.
func padCell(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func clampRow(row, n int) int {
	if n == 0 || row < 0 {
		return 0
	}
	if row >= n {
		return n - 1
	}
	return row
}

// navigate applies a navigation key to row. It reports false when msg is
// not a navigation key.
func (m Model) navigate(msg tea.KeyMsg, row, n int) (int, bool) {
	switch {
	case key.Matches(msg, m.keys.Up):
		row--
	case key.Matches(msg, m.keys.Down):
		row++
	case key.Matches(msg, m.keys.Top):
		row = 0
	case key.Matches(msg, m.keys.Bottom):
		row = n - 1
	default:
		return row, false
	}
	return clampRow(row, n), true
}
