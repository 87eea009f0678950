package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/leaddesk/internal/events"
	"github.com/five82/leaddesk/internal/prefs"
	"github.com/five82/leaddesk/internal/session"
	"github.com/five82/leaddesk/internal/state"
	"github.com/five82/leaddesk/internal/uistate"
	"github.com/five82/leaddesk/internal/workspace"
)

// View represents the current screen.
type View int

const (
	ViewLeads View = iota
	ViewTodos
	ViewCalendar
	ViewActivity
	ViewLogin
)

// viewOrder is the tab cycle. Login is never part of it.
var viewOrder = []View{ViewLeads, ViewTodos, ViewCalendar, ViewActivity}

func (v View) String() string {
	switch v {
	case ViewTodos:
		return "todos"
	case ViewCalendar:
		return "calendar"
	case ViewActivity:
		return "activity"
	case ViewLogin:
		return "login"
	default:
		return "leads"
	}
}

func parseView(name string) View {
	for _, v := range viewOrder {
		if v.String() == strings.ToLower(strings.TrimSpace(name)) {
			return v
		}
	}
	return ViewLeads
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Workspace *workspace.Workspace
	Lists     *workspace.Lists
	Views     *uistate.Manager
	Gate      *session.Gate
	Bus       *events.Bus
	LogPath   string
	PerPage   int
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *slog.Logger
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Dependencies
	ctx       context.Context
	ws        *workspace.Workspace
	lists     *workspace.Lists
	views     *uistate.Manager
	gate      *session.Gate
	bus       *events.Bus
	logger    *slog.Logger
	logPath   string
	perPage   int
	prefs     prefs.Prefs
	prefsPath string
	now       func() time.Time

	// UI state
	theme  Theme
	keys   keyMap
	view   View
	width  int
	height int
	ready  bool

	snapshot state.Snapshot

	leads    leadList
	todos    todoList
	calendar calendarView
	activity activityView
	login    loginView

	spinner  spinner.Model
	showHelp bool
	modal    Modal
	toasts   []toast
	toastSeq int
}

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		ws:        opts.Workspace,
		lists:     opts.Lists,
		views:     opts.Views,
		gate:      opts.Gate,
		bus:       opts.Bus,
		logger:    logger.With("component", "ui"),
		logPath:   opts.LogPath,
		perPage:   perPage,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		now:       now,
		theme:     GetTheme(opts.Prefs.Theme),
		keys:      DefaultKeyMap(),
		view:      parseView(opts.Prefs.StartView),
		spinner:   sp,
		calendar:  calendarView{start: startOfDay(now())},
		activity:  activityView{viewport: viewport.New(0, 0), level: "info", follow: true},
		login:     newLoginView(),
	}
	if m.gate != nil && !m.gate.Valid() {
		m.view = ViewLogin
	} else {
		m.begin(false)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.view == ViewLogin {
		return textinput.Blink
	}
	_, cmd := m.load(false, false)
	return cmd
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeActivity()
		return m, nil

	case tea.FocusMsg:
		m.bus.Publish(events.Focus)
		return m, nil

	case RefreshMsg:
		if m.view == ViewLogin || !m.shows(msg.Topic) {
			return m, nil
		}
		return m.load(msg.Background, msg.Force)

	case NoticeMsg:
		return m.pushToast(workspace.Notice(msg))

	case toastExpiredMsg:
		m.dropToast(int(msg))
		return m, nil

	case leadsMsg:
		m.leads.apply(msg)
		m.snapshot = m.ws.Snapshot()
		return m, nil

	case todosMsg:
		if msg.calendar {
			m.calendar.apply(msg)
		} else {
			m.todos.apply(msg)
		}
		m.snapshot = m.ws.Snapshot()
		return m, nil

	case activityMsg:
		m.activity.apply(msg)
		m.renderActivity()
		return m, nil

	case leadSavedMsg:
		return m.handleLeadSaved(msg)

	case todoSavedMsg:
		return m.handleTodoSaved(msg)

	case loginMsg:
		return m.handleLogin(msg)

	case searchSubmitMsg:
		return m.applySearch(msg)

	case filterAddMsg:
		return m.addFilter(msg.option)

	case filterRemoveMsg:
		return m.removeFilter(msg.index)

	case leadSubmitMsg:
		return m, m.saveLeadCmd(msg)

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	if m.view == ViewLogin {
		var cmd tea.Cmd
		m.login.input, cmd = m.login.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.view == ViewLogin {
		return m.renderLogin()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey routes keyboard input: overlays first, then global keys, then the
// current view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.modal != nil {
		return m.updateModal(msg)
	}
	if m.view == ViewLogin {
		return m.handleLoginKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = m.theme.Name })
		return m, nil
	case key.Matches(msg, m.keys.HideHint):
		m.prefs.HintDismissed = true
		m.savePrefs(func(p *prefs.Prefs) { p.HintDismissed = true })
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m.load(false, true)
	case key.Matches(msg, m.keys.Logout):
		return m.lock()
	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.stepView(1))
	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.stepView(-1))
	case key.Matches(msg, m.keys.ViewLeads):
		return m.switchView(ViewLeads)
	case key.Matches(msg, m.keys.ViewTodos):
		return m.switchView(ViewTodos)
	case key.Matches(msg, m.keys.ViewCalendar):
		return m.switchView(ViewCalendar)
	case key.Matches(msg, m.keys.ViewActivity):
		return m.switchView(ViewActivity)
	}

	switch m.view {
	case ViewLeads:
		return m.handleLeadsKey(msg)
	case ViewTodos:
		return m.handleTodosKey(msg)
	case ViewCalendar:
		return m.handleCalendarKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	}
	return m, nil
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	modal, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
	} else {
		m.modal = modal
	}
	return m, cmd
}

func (m Model) stepView(delta int) View {
	i := 0
	for idx, v := range viewOrder {
		if v == m.view {
			i = idx
		}
	}
	n := len(viewOrder)
	return viewOrder[((i+delta)%n+n)%n]
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	if v == m.view {
		return m, nil
	}
	m.view = v
	return m.load(false, false)
}

// load fetches whatever the current view shows.
func (m Model) load(background, force bool) (Model, tea.Cmd) {
	m.begin(background)
	var cmds []tea.Cmd
	switch m.view {
	case ViewLeads:
		cmds = append(cmds, m.fetchLeadsCmd(background, force))
	case ViewTodos:
		cmds = append(cmds, m.fetchTodosCmd(background, force))
	case ViewCalendar:
		cmds = append(cmds, m.fetchCalendarCmd(background, force))
	case ViewActivity:
		cmds = append(cmds, m.tailActivityCmd())
	}
	if m.loading() {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

// shows reports whether the current view displays data behind topic. An
// empty topic matches every view.
func (m Model) shows(topic events.Topic) bool {
	switch topic {
	case events.LeadsInvalidated:
		return m.view == ViewLeads
	case events.TodosInvalidated:
		return m.view == ViewTodos || m.view == ViewCalendar
	}
	return true
}

// begin marks the current view's list as loading.
func (m *Model) begin(background bool) {
	switch m.view {
	case ViewLeads:
		m.leads.begin(background)
	case ViewTodos:
		m.todos.begin(background)
	case ViewCalendar:
		m.calendar.begin(background)
	}
}

func (m Model) loading() bool {
	return m.leads.loading || m.todos.loading || m.calendar.loading
}

func (m Model) backgroundLoading() bool {
	return m.leads.background || m.todos.background || m.calendar.background
}

func (m Model) lock() (tea.Model, tea.Cmd) {
	if m.gate == nil {
		return m, nil
	}
	if err := m.gate.Clear(); err != nil {
		m.logger.Warn("clear session failed", "error", err)
	}
	m.view = ViewLogin
	m.login = newLoginView()
	return m, textinput.Blink
}

func (m *Model) savePrefs(fn func(*prefs.Prefs)) {
	if err := prefs.Update(m.prefsPath, fn); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

// renderMain renders header, content and footer.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	content := m.renderContent()
	b.WriteString(content)

	used := strings.Count(content, "\n") + 1 + headerLines + footerLines
	if pad := m.height - used; pad > 0 {
		b.WriteString(strings.Repeat("\n", pad))
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.view {
	case ViewLeads:
		return m.renderLeads()
	case ViewTodos:
		return m.renderTodos()
	case ViewCalendar:
		return m.renderCalendar()
	case ViewActivity:
		return m.renderActivityView()
	default:
		return ""
	}
}

// Messages

// RefreshMsg asks the UI to reload what it shows.
type RefreshMsg struct {
	Background bool
	Force      bool
	Topic      events.Topic
}

// NoticeMsg delivers a workspace notice for display as a toast.
type NoticeMsg workspace.Notice
