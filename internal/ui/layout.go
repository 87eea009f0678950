package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutUpdatedWidth is the minimum width to show updated timestamps.
	LayoutUpdatedWidth = 150
)

// List and feed limits.
const (
	// DefaultPerPage is the page size when none is configured.
	DefaultPerPage = 25

	// CalendarDays is the width of the agenda window.
	CalendarDays = 7

	// CalendarPageSize is how many tasks one agenda fetch asks for.
	CalendarPageSize = 200

	// ActivityTailLines is how much of the log file the activity view reads.
	ActivityTailLines = 400
)

// Timing constants.
const (
	// ToastDuration is how long a notice stays in the footer.
	ToastDuration = 4 * time.Second
)

// Fixed chrome around the content area.
const (
	headerLines = 2 // status bar and view tabs
	footerLines = 1
)

// contentHeight is the number of lines available to the current view.
func (m Model) contentHeight() int {
	return max(m.height-headerLines-footerLines, 3)
}
