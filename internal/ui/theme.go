package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette. Every style the UI draws is derived from these
// roles, including stage and task status badges.
type Theme struct {
	Name string

	Background string
	Surface    string
	Selection  string
	OnSelected string

	Text      string
	Muted     string
	Faint     string
	Accent    string
	Highlight string
	Success   string
	Warning   string
	Danger    string
	Info      string
}

// badgeColor maps a stage or task status wire value to one of the theme's
// roles. ok is false for values with no assigned role.
func (t Theme) badgeColor(wire string) (color string, ok bool) {
	switch wire {
	case "init_general_enquiry", "cancelled":
		return t.Faint, true
	case "init_contacted":
		return t.Muted, true
	case "qualified":
		return t.Info, true
	case "site_visit_scheduled":
		return t.Accent, true
	case "site_visit_done":
		return t.Highlight, true
	case "negotiation", "pending":
		return t.Warning, true
	case "booked", "completed":
		return t.Success, true
	case "lost":
		return t.Danger, true
	}
	return t.Muted, false
}

// Styles contains pre-built Lipgloss styles for a theme.
type Styles struct {
	Background lipgloss.Style
	Surface    lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	theme Theme
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles builds the Lipgloss styles for t.
func (t Theme) Styles() Styles {
	return Styles{
		Background: lipgloss.NewStyle().Background(lipgloss.Color(t.Background)),
		Surface:    fg(t.Text).Background(lipgloss.Color(t.Surface)),

		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:   fg(t.Text).Background(lipgloss.Color(t.Surface)).Padding(0, 1),
		Logo:     fg(t.Warning).Bold(true),
		Selected: fg(t.OnSelected).Background(lipgloss.Color(t.Selection)),

		theme: t,
	}
}

// BadgeStyle returns the badge style for a stage or task status wire value.
func (s Styles) BadgeStyle(wire string) lipgloss.Style {
	color, _ := s.theme.badgeColor(wire)
	return fg(s.theme.Background).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy of s whose text styles paint bgColor instead
// of inheriting the terminal background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Background, &out.Surface,
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Header, &out.Logo, &out.Selected,
	} {
		*st = st.Background(bg)
	}
	return out
}

// themes is listed in cycle order; the first entry is the fallback.
var themes = []Theme{
	{
		// https://github.com/EdenEast/nightfox.nvim
		Name:       "Nightfox",
		Background: "#131a24",
		Surface:    "#192330",
		Selection:  "#2b3b51",
		OnSelected: "#cdcecf",
		Text:       "#cdcecf",
		Muted:      "#738091",
		Faint:      "#71839b",
		Accent:     "#719cd6",
		Highlight:  "#9d79d6",
		Success:    "#81b29a",
		Warning:    "#dbc074",
		Danger:     "#c94f6d",
		Info:       "#63cdcf",
	},
	{
		// https://github.com/rebelot/kanagawa.nvim
		Name:       "Kanagawa",
		Background: "#16161D",
		Surface:    "#1F1F28",
		Selection:  "#2D4F67",
		OnSelected: "#DCD7BA",
		Text:       "#DCD7BA",
		Muted:      "#C8C093",
		Faint:      "#727169",
		Accent:     "#7E9CD8",
		Highlight:  "#957FB8",
		Success:    "#98BB6C",
		Warning:    "#E6C384",
		Danger:     "#E46876",
		Info:       "#7FB4CA",
	},
	{
		// Tailwind slate and sky
		Name:       "Slate",
		Background: "#020617",
		Surface:    "#0f172a",
		Selection:  "#0284c7",
		OnSelected: "#f8fafc",
		Text:       "#f1f5f9",
		Muted:      "#94a3b8",
		Faint:      "#64748b",
		Accent:     "#38bdf8",
		Highlight:  "#a78bfa",
		Success:    "#22c55e",
		Warning:    "#f59e0b",
		Danger:     "#ef4444",
		Info:       "#06b6d4",
	},
}

// GetTheme returns a theme by name, or the first theme for unknown names.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, t := range themes {
		if t.Name == current {
			return themes[(i+1)%len(themes)].Name
		}
	}
	return themes[0].Name
}

// ThemeNames returns available theme names in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
