package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/leaddesk/internal/crm"
	"github.com/five82/leaddesk/internal/filter"
	"github.com/five82/leaddesk/internal/uistate"
	"github.com/five82/leaddesk/internal/workspace"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

type searchSubmitMsg struct {
	view  View
	query string
}

type filterAddMsg struct {
	option filter.Option
}

type filterRemoveMsg struct {
	index int
}

type leadSubmitMsg struct {
	id    int64 // zero for a new lead
	lead  crm.Lead // the new lead, or the record being edited
	patch crm.LeadPatch
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// modalFrame draws a bordered box centered on the screen.
func modalFrame(theme Theme, width, height int, title, body, hint string) string {
	styles := theme.Styles()
	content := styles.AccentText.Bold(true).Render(title) + "\n\n" + body
	if hint != "" {
		content += "\n\n" + styles.FaintText.Render(hint)
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(min(max(width-4, 30), 64)).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 120
	ti.Width = 40
	ti.SetValue(value)
	return ti
}

// Search

type searchModal struct {
	view  View
	title string
	input textinput.Model
}

func newSearchModal(view View, title, query string) *searchModal {
	in := newInput("type to search", query)
	in.Focus()
	in.CursorEnd()
	return &searchModal{view: view, title: title, input: in}
}

func (s *searchModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Escape):
			return s, nil, true
		case key.Matches(msg, keys.Confirm):
			return s, emit(searchSubmitMsg{view: s.view, query: strings.TrimSpace(s.input.Value())}), true
		}
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd, false
}

func (s *searchModal) View(theme Theme, width, height int) string {
	return modalFrame(theme, width, height, s.title, s.input.View(), "enter apply · empty clears · esc cancel")
}

// Filters

const (
	filterFocusField = iota
	filterFocusOperator
	filterFocusValue
	filterFocusList
	filterFocusCount
)

type filterModal struct {
	title    string
	fields   []string
	field    int
	operator int
	value    textinput.Model
	current  []filter.Option
	selected int
	focus    int
	err      string
}

func newFilterModal(title string, fields []string, current []filter.Option) *filterModal {
	f := &filterModal{
		title:   title,
		fields:  fields,
		value:   newInput("value, or a,b,c for any of", ""),
		current: append([]filter.Option(nil), current...),
		focus:   filterFocusValue,
	}
	f.value.Focus()
	return f
}

func (f *filterModal) setFocus(focus int) {
	f.focus = (focus%filterFocusCount + filterFocusCount) % filterFocusCount
	if f.focus == filterFocusList && len(f.current) == 0 {
		f.focus = filterFocusField
	}
	if f.focus == filterFocusValue {
		f.value.Focus()
	} else {
		f.value.Blur()
	}
}

func (f *filterModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		f.value, cmd = f.value.Update(msg)
		return f, cmd, false
	}

	switch {
	case key.Matches(km, keys.Escape):
		return f, nil, true
	case key.Matches(km, keys.Tab):
		f.setFocus(f.focus + 1)
		return f, nil, false
	case key.Matches(km, keys.ShiftTab):
		f.setFocus(f.focus - 1)
		return f, nil, false
	}

	switch f.focus {
	case filterFocusField:
		f.field = cycle(f.field, len(f.fields), km, keys)
	case filterFocusOperator:
		f.operator = cycle(f.operator, len(filter.Operators), km, keys)
	case filterFocusList:
		switch {
		case key.Matches(km, keys.Up):
			f.selected = max(f.selected-1, 0)
		case key.Matches(km, keys.Down):
			f.selected = min(f.selected+1, len(f.current)-1)
		case key.Matches(km, keys.CancelTodo), km.Type == tea.KeyBackspace, km.Type == tea.KeyDelete:
			idx := f.selected
			f.current = append(f.current[:idx:idx], f.current[idx+1:]...)
			f.selected = clampRow(f.selected, len(f.current))
			if len(f.current) == 0 {
				f.setFocus(filterFocusField)
			}
			return f, emit(filterRemoveMsg{index: idx}), false
		}
	case filterFocusValue:
		if key.Matches(km, keys.Confirm) {
			raw := strings.TrimSpace(f.value.Value())
			if raw == "" {
				f.err = "value is required"
				return f, nil, false
			}
			opt := filter.Option{
				Field:    f.fields[f.field],
				Operator: filter.Operators[f.operator],
				Value:    parseFilterValue(raw),
			}
			f.current = append(f.current, opt)
			f.value.SetValue("")
			f.err = ""
			return f, emit(filterAddMsg{option: opt}), false
		}
		var cmd tea.Cmd
		f.value, cmd = f.value.Update(km)
		return f, cmd, false
	}
	return f, nil, false
}

// cycle moves a selector index with the left/right keys.
func cycle(i, n int, msg tea.KeyMsg, keys keyMap) int {
	if n == 0 {
		return 0
	}
	switch {
	case key.Matches(msg, keys.NextTab):
		return (i + 1) % n
	case key.Matches(msg, keys.PrevTab):
		return (i - 1 + n) % n
	}
	return i
}

func (f *filterModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	label := func(text string, focus int) string {
		if f.focus == focus {
			return styles.AccentText.Bold(true).Render("› " + text)
		}
		return styles.MutedText.Render("  " + text)
	}

	var b strings.Builder
	b.WriteString(label("Field", filterFocusField) + "     " + styles.Text.Render("‹ "+f.fields[f.field]+" ›") + "\n")
	b.WriteString(label("Operator", filterFocusOperator) + "  " + styles.Text.Render("‹ "+string(filter.Operators[f.operator])+" ›") + "\n")
	b.WriteString(label("Value", filterFocusValue) + "     " + f.value.View() + "\n")
	if f.err != "" {
		b.WriteString(styles.DangerText.Render(f.err) + "\n")
	}

	b.WriteString("\n" + label("Active", filterFocusList) + "\n")
	if len(f.current) == 0 {
		b.WriteString(styles.FaintText.Render("    none"))
	}
	for i, opt := range f.current {
		line := "    " + opt.String()
		if f.focus == filterFocusList && i == f.selected {
			line = styles.Selected.Render(line)
		} else {
			line = styles.Text.Render(line)
		}
		b.WriteString(line + "\n")
	}

	return modalFrame(theme, width, height, f.title, strings.TrimRight(b.String(), "\n"),
		"tab next · ←/→ choose · enter add · x remove · esc close")
}

// parseFilterValue turns user input into a filter value: comma lists become
// string slices and numbers become float64.
func parseFilterValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") {
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}

// Lead editor

const (
	leadFieldName = iota
	leadFieldPhone
	leadFieldEmail
	leadFieldBudget
	leadFieldStage
	leadFieldNotes
	leadFieldCount
)

var leadFieldLabels = [leadFieldCount]string{"Name", "Phone", "Email", "Budget", "Stage", "Notes"}

type leadModal struct {
	original *crm.Lead
	inputs   [leadFieldCount]textinput.Model
	stage    crm.Stage
	focus    int
	err      string
}

func newLeadModal(lead *crm.Lead) *leadModal {
	l := &leadModal{original: lead, stage: crm.StageGeneralEnquiry}
	var current crm.Lead
	if lead != nil {
		current = *lead
		if lead.Stage != crm.StageUnset {
			l.stage = lead.Stage
		}
	}
	budget := ""
	if current.Budget != 0 {
		budget = strconv.FormatFloat(current.Budget, 'f', -1, 64)
	}
	l.inputs[leadFieldName] = newInput("full name", current.Name)
	l.inputs[leadFieldPhone] = newInput("phone number", current.Phone)
	l.inputs[leadFieldEmail] = newInput("email", current.Email)
	l.inputs[leadFieldBudget] = newInput("budget", budget)
	l.inputs[leadFieldStage] = newInput("", "")
	l.inputs[leadFieldNotes] = newInput("notes", current.Notes)
	l.setFocus(leadFieldName)
	return l
}

func (l *leadModal) setFocus(focus int) {
	l.focus = (focus%leadFieldCount + leadFieldCount) % leadFieldCount
	for i := range l.inputs {
		if i == l.focus {
			l.inputs[i].Focus()
		} else {
			l.inputs[i].Blur()
		}
	}
}

func (l *leadModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if ok {
		switch {
		case key.Matches(km, keys.Escape):
			return l, nil, true
		case key.Matches(km, keys.Tab), km.Type == tea.KeyDown:
			l.setFocus(l.focus + 1)
			return l, nil, false
		case key.Matches(km, keys.ShiftTab), km.Type == tea.KeyUp:
			l.setFocus(l.focus - 1)
			return l, nil, false
		case key.Matches(km, keys.Confirm):
			submit, err := l.submit()
			if err != "" {
				l.err = err
				return l, nil, false
			}
			return l, emit(submit), true
		}
		if l.focus == leadFieldStage {
			switch {
			case key.Matches(km, keys.NextTab):
				l.stage = crm.StageCodec.Next(l.stage)
			case key.Matches(km, keys.PrevTab):
				l.stage = prevStage(l.stage)
			}
			return l, nil, false
		}
	}
	if l.focus == leadFieldStage {
		return l, nil, false
	}
	var cmd tea.Cmd
	l.inputs[l.focus], cmd = l.inputs[l.focus].Update(msg)
	return l, cmd, false
}

func prevStage(s crm.Stage) crm.Stage {
	values := crm.StageCodec.Values()
	for i, v := range values {
		if v == s {
			return values[(i-1+len(values))%len(values)]
		}
	}
	return values[len(values)-1]
}

// submit validates the form. New leads carry the full record; edits carry a
// patch of every field, which the workspace narrows to what changed.
func (l *leadModal) submit() (leadSubmitMsg, string) {
	value := func(i int) string { return strings.TrimSpace(l.inputs[i].Value()) }

	name, phone := value(leadFieldName), value(leadFieldPhone)
	if name == "" {
		return leadSubmitMsg{}, "name is required"
	}
	if phone == "" {
		return leadSubmitMsg{}, "phone is required"
	}
	var budget float64
	if raw := value(leadFieldBudget); raw != "" {
		n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil || n < 0 {
			return leadSubmitMsg{}, fmt.Sprintf("budget %q is not a number", raw)
		}
		budget = n
	}
	email, notes, stage := value(leadFieldEmail), value(leadFieldNotes), l.stage

	if l.original == nil {
		return leadSubmitMsg{lead: crm.Lead{
			Name:   name,
			Phone:  phone,
			Email:  email,
			Budget: budget,
			Stage:  stage,
			Notes:  notes,
		}}, ""
	}
	return leadSubmitMsg{
		id:   l.original.ID,
		lead: *l.original,
		patch: crm.LeadPatch{
			Name:   &name,
			Phone:  &phone,
			Email:  &email,
			Budget: &budget,
			Stage:  &stage,
			Notes:  &notes,
		},
	}, ""
}

func (l *leadModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	title := "New lead"
	if l.original != nil {
		title = "Edit " + l.original.Name
	}

	var b strings.Builder
	for i, label := range leadFieldLabels {
		marker := "  "
		style := styles.MutedText
		if i == l.focus {
			marker = "› "
			style = styles.AccentText.Bold(true)
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-7s", marker, label)))
		b.WriteString(" ")
		if i == leadFieldStage {
			wire, _ := crm.StageCodec.Encode(l.stage)
			b.WriteString(styles.FaintText.Render("‹ ") + styles.BadgeStyle(wire).Render(l.stage.String()) + styles.FaintText.Render(" ›"))
		} else {
			b.WriteString(l.inputs[i].View())
		}
		b.WriteString("\n")
	}
	if l.err != "" {
		b.WriteString("\n" + styles.DangerText.Render(l.err))
	}
	return modalFrame(theme, width, height, title, strings.TrimRight(b.String(), "\n"),
		"tab/↑↓ move · ←/→ stage · enter save · esc cancel")
}

// Applying modal results

func (m Model) applySearch(msg searchSubmitMsg) (tea.Model, tea.Cmd) {
	switch msg.view {
	case ViewActivity:
		m.activity.query = msg.query
		m.renderActivity()
		return m, nil
	case ViewTodos:
		m.todos.row = 0
		return m.stateChanged(m.todoSection().UpdateState(uistate.Search(msg.query)))
	default:
		m.leads.row = 0
		return m.stateChanged(m.section(workspace.LeadSection).UpdateState(uistate.Search(msg.query)))
	}
}

// filterSection is the section the filter editor works on.
func (m Model) filterSection() *uistate.Section {
	if m.view == ViewTodos {
		return m.todoSection()
	}
	return m.section(workspace.LeadSection)
}

func (m Model) addFilter(opt filter.Option) (tea.Model, tea.Cmd) {
	return m.stateChanged(m.filterSection().AddFilter(opt))
}

func (m Model) removeFilter(index int) (tea.Model, tea.Cmd) {
	return m.stateChanged(m.filterSection().RemoveFilter(index))
}
