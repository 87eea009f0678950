package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Refresh    key.Binding
	Logout     key.Binding
	HideHint   key.Binding

	// View switching
	ViewLeads    key.Binding
	ViewTodos    key.Binding
	ViewCalendar key.Binding
	ViewActivity key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PrevPage key.Binding
	NextPage key.Binding

	// List state
	Search       key.Binding
	Filters      key.Binding
	ClearFilters key.Binding
	ResetView    key.Binding
	CycleSort    key.Binding
	FlipSort     key.Binding

	// Leads
	NewLead   key.Binding
	EditLead  key.Binding
	LeadTodos key.Binding

	// Todos
	PrevTab     key.Binding
	NextTab     key.Binding
	PrevSection key.Binding
	NextSection key.Binding
	Complete    key.Binding
	CancelTodo  key.Binding
	Reschedule  key.Binding
	ClearFocus  key.Binding

	// Activity
	CycleLevel key.Binding

	// Search/input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "Refresh"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Lock"),
		),
		HideHint: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "Hide hint"),
		),

		ViewLeads: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Leads"),
		),
		ViewTodos: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Todos"),
		),
		ViewCalendar: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Calendar"),
		),
		ViewActivity: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Activity"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("<", "pgup"),
			key.WithHelp("<", "Previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys(">", "pgdown"),
			key.WithHelp(">", "Next page"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		Filters: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Filters"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Clear filters"),
		),
		ResetView: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Reset view"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Sort by next field"),
		),
		FlipSort: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Flip sort direction"),
		),

		NewLead: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New lead"),
		),
		EditLead: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e/enter", "Edit lead"),
		),
		LeadTodos: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Lead's todos"),
		),

		PrevTab: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Previous tab"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "Next tab"),
		),
		PrevSection: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous type"),
		),
		NextSection: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next type"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Complete"),
		),
		CancelTodo: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Cancel task"),
		),
		Reschedule: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Push back a day"),
		),
		ClearFocus: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Unfocus lead"),
		),

		CycleLevel: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Cycle level"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewLeads, k.ViewTodos, k.ViewCalendar, k.ViewActivity},
		{k.Up, k.Down, k.Top, k.Bottom, k.PrevPage, k.NextPage},
		{k.Search, k.Filters, k.ClearFilters, k.ResetView, k.CycleSort, k.FlipSort},
		{k.NewLead, k.EditLead, k.LeadTodos},
		{k.PrevTab, k.NextTab, k.PrevSection, k.NextSection, k.Complete, k.CancelTodo, k.Reschedule, k.ClearFocus},
		{k.CycleLevel},
		{k.Refresh, k.CycleTheme, k.HideHint, k.Logout, k.Help, k.Quit},
	}
}
