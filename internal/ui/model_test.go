package ui

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/leaddesk/internal/crm"
	"github.com/five82/leaddesk/internal/crmapi"
	"github.com/five82/leaddesk/internal/crmerr"
	"github.com/five82/leaddesk/internal/events"
	"github.com/five82/leaddesk/internal/kvstore"
	"github.com/five82/leaddesk/internal/session"
	"github.com/five82/leaddesk/internal/uistate"
	"github.com/five82/leaddesk/internal/workspace"
)

const testPIN = "1234"

type stubAPI struct {
	mu        sync.Mutex
	leads     crmapi.LeadPage
	todos     crmapi.TodoPage
	leadQuery crmapi.LeadQuery
	todoQuery crmapi.TodoQuery
	edits     map[int64]crm.TodoPatch
	calls     map[string]int
}

func newStubAPI() *stubAPI {
	return &stubAPI{
		leads: crmapi.LeadPage{Total: 2, Leads: []crm.Lead{
			{ID: 7, Name: "Asha", Phone: "98", Stage: crm.StageQualified},
			{ID: 9, Name: "Neel", Phone: "97", Stage: crm.StageGeneralEnquiry},
		}},
		edits: make(map[int64]crm.TodoPatch),
		calls: make(map[string]int),
	}
}

func (s *stubAPI) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubAPI) GetLeads(ctx context.Context, q crmapi.LeadQuery) (crmapi.LeadPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["get_leads"]++
	s.leadQuery = q
	return s.leads, nil
}

func (s *stubAPI) AddLead(ctx context.Context, l crm.Lead) (crm.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["add_lead"]++
	l.ID = 100
	return l, nil
}

func (s *stubAPI) EditLead(ctx context.Context, id int64, p crm.LeadPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["edit_lead"]++
	return nil
}

func (s *stubAPI) GetTasks(ctx context.Context, q crmapi.TodoQuery) (crmapi.TodoPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["get_tasks"]++
	s.todoQuery = q
	return s.todos, nil
}

func (s *stubAPI) AddTask(ctx context.Context, t crm.Todo) (crm.Todo, error) {
	return t, nil
}

func (s *stubAPI) EditTask(ctx context.Context, id int64, p crm.TodoPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["edit_task"]++
	s.edits[id] = p
	return nil
}

func (s *stubAPI) Verify(ctx context.Context, code string) error {
	if code != testPIN {
		return &crmerr.Error{Kind: crmerr.KindAPI, Op: "verify", Message: "invalid code", Err: crmerr.ErrUnauthorized}
	}
	return nil
}

type harness struct {
	api   *stubAPI
	kv    *kvstore.Mem
	ws    *workspace.Workspace
	views *uistate.Manager
}

func newHarness(t *testing.T, api *stubAPI, signedIn bool) (Model, *harness) {
	t.Helper()
	kv := kvstore.NewMem()
	bus := events.NewBus()
	ws := workspace.New(api, nil,
		workspace.WithBus(bus),
		workspace.WithNotifier(workspace.NotifierFunc(func(workspace.Notice) {})),
	)
	views := uistate.NewManager(kv)
	gate := session.NewGate(kv, api, nil)
	if signedIn {
		if err := gate.Verify(context.Background(), testPIN); err != nil {
			t.Fatalf("Verify: %v", err)
		}
	}

	m := New(Options{
		Context:   context.Background(),
		Workspace: ws,
		Lists:     ws.NewLists(workspace.ListOptions{}),
		Views:     views,
		Gate:      gate,
		Bus:       bus,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, &harness{api: api, kv: kv, ws: ws, views: views}
}

// send applies msg and drains the resulting commands.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return drain(t, next.(Model), cmd)
}

// drain runs cmd and feeds the messages it produces back into the model.
// Spinner and cursor ticks are dropped so the loop terminates.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatalf("drain did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case leadsMsg, todosMsg, activityMsg, leadSavedMsg, todoSavedMsg, loginMsg,
			searchSubmitMsg, filterAddMsg, filterRemoveMsg, leadSubmitMsg, NoticeMsg:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		case spinner.TickMsg, toastExpiredMsg:
		}
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = send(t, m, keyRunes(string(r)))
	}
	return m
}

func signedIn(t *testing.T, api *stubAPI) (Model, *harness) {
	t.Helper()
	m, h := newHarness(t, api, true)
	return drain(t, m, m.Init()), h
}

func TestNew_WithoutSessionShowsLogin(t *testing.T) {
	m, h := newHarness(t, newStubAPI(), false)
	if m.view != ViewLogin {
		t.Fatalf("view = %v, want login", m.view)
	}
	if !strings.Contains(m.View(), "PIN") {
		t.Fatalf("login view does not ask for a PIN")
	}
	if h.api.count("get_leads") != 0 {
		t.Fatalf("data was fetched before signing in")
	}
}

func TestLogin_RejectsThenAccepts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m, h := newHarness(t, newStubAPI(), false)

		m = typeText(t, m, "0000")
		m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != ViewLogin || m.login.err != "Incorrect PIN" {
			t.Fatalf("after wrong PIN view=%v err=%q, want login and Incorrect PIN", m.view, m.login.err)
		}

		m = typeText(t, m, testPIN)
		m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != ViewLeads {
			t.Fatalf("after correct PIN view = %v, want leads", m.view)
		}
		if h.api.count("get_leads") != 1 {
			t.Fatalf("get_leads calls = %d, want 1", h.api.count("get_leads"))
		}
		if got := len(m.leadRows()); got != 2 {
			t.Fatalf("lead rows = %d, want 2", got)
		}
	})
}

func TestLogin_EmptyPINIsNotSent(t *testing.T) {
	m, _ := newHarness(t, newStubAPI(), false)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.login.busy || m.login.err == "" {
		t.Fatalf("empty PIN should be rejected locally, got busy=%v err=%q", m.login.busy, m.login.err)
	}
}

func TestSearch_PersistsAndReachesTheServer(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m, h := signedIn(t, newStubAPI())

		m = send(t, m, keyRunes("/"))
		if _, ok := m.modal.(*searchModal); !ok {
			t.Fatalf("modal = %T, want search", m.modal)
		}
		m = typeText(t, m, "asha")
		m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.modal != nil {
			t.Fatalf("search modal still open")
		}
		if got := h.api.leadQuery.Query; got != "asha" {
			t.Fatalf("server query = %q, want asha", got)
		}
		rehydrated := uistate.NewManager(h.kv).Section(workspace.LeadSection).State()
		if rehydrated.SearchQuery != "asha" || rehydrated.CurrentPage != 1 {
			t.Fatalf("persisted state = %+v, want search asha on page 1", rehydrated)
		}
	})
}

func TestFilterModal_NarrowsRows(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m, h := signedIn(t, newStubAPI())

		m = send(t, m, keyRunes("f"))
		if _, ok := m.modal.(*filterModal); !ok {
			t.Fatalf("modal = %T, want filter", m.modal)
		}
		m = typeText(t, m, "Qualified")
		m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

		st := h.views.Section(workspace.LeadSection).State()
		if len(st.Filters) != 1 || st.Filters[0].Field != "stage" {
			t.Fatalf("filters = %+v, want one stage filter", st.Filters)
		}
		rows := m.leadRows()
		if len(rows) != 1 || rows[0].ID != 7 {
			t.Fatalf("rows = %+v, want only lead 7", rows)
		}

		m = send(t, m, keyRunes("F"))
		if got := len(m.leadRows()); got != 2 {
			t.Fatalf("rows after clearing filters = %d, want 2", got)
		}
	})
}

func TestViewSwitching(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m, h := signedIn(t, newStubAPI())

		m = send(t, m, keyRunes("2"))
		if m.view != ViewTodos {
			t.Fatalf("view = %v, want todos", m.view)
		}
		if h.api.count("get_tasks") != 1 {
			t.Fatalf("get_tasks calls = %d, want 1", h.api.count("get_tasks"))
		}
		m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.view != ViewCalendar {
			t.Fatalf("tab from todos = %v, want calendar", m.view)
		}
		m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
		m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
		if m.view != ViewLeads {
			t.Fatalf("view = %v, want leads", m.view)
		}
		m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
		if m.view != ViewActivity {
			t.Fatalf("shift+tab from leads = %v, want activity", m.view)
		}
	})
}

func TestRefresh_SkipsTopicsForOtherViews(t *testing.T) {
	m, _ := newHarness(t, newStubAPI(), true)
	if _, cmd := m.Update(RefreshMsg{Topic: events.TodosInvalidated}); cmd != nil {
		t.Fatalf("todo invalidation should not reload the lead list")
	}
	if _, cmd := m.Update(RefreshMsg{Topic: events.LeadsInvalidated}); cmd == nil {
		t.Fatalf("lead invalidation should reload the lead list")
	}
}

func TestLeadTodos_FocusesTheSelectedLead(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m, h := signedIn(t, newStubAPI())

		m = send(t, m, keyRunes("j"))
		m = send(t, m, keyRunes("t"))

		if m.view != ViewTodos {
			t.Fatalf("view = %v, want todos", m.view)
		}
		if id, ok := h.ws.ActiveLead(); !ok || id != 9 {
			t.Fatalf("active lead = %d, %v; want 9", id, ok)
		}
		if h.api.todoQuery.LeadID != 9 {
			t.Fatalf("todo query lead = %d, want 9", h.api.todoQuery.LeadID)
		}
		if m.todos.focusName != "Neel" {
			t.Fatalf("focus name = %q, want Neel", m.todos.focusName)
		}

		m = send(t, m, keyRunes("u"))
		if _, ok := h.ws.ActiveLead(); ok {
			t.Fatalf("focus not cleared")
		}
	})
}

func TestCompleteTodo(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newStubAPI()
		api.todos = crmapi.TodoPage{Total: 1, Todos: []crm.Todo{
			{ID: 3, LeadID: 7, Type: crm.TodoCall, Status: crm.TodoPending, DateTime: time.Now().Add(time.Minute)},
		}}
		m, h := signedIn(t, api)
		m = send(t, m, keyRunes("2"))
		if got := len(m.todoRows()); got != 1 {
			t.Fatalf("today rows = %d, want 1", got)
		}

		m = send(t, m, keyRunes("c"))

		patch, ok := h.api.edits[3]
		if !ok || patch.Status == nil || *patch.Status != crm.TodoCompleted {
			t.Fatalf("edit for todo 3 = %+v, want status completed", patch)
		}
		toast, ok := m.latestToast()
		if !ok || toast.notice.Message != "Task completed" {
			t.Fatalf("toast = %+v, want Task completed", toast)
		}
	})
}

func TestNewLead_SubmitsThroughTheWorkspace(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m, h := signedIn(t, newStubAPI())

		m = send(t, m, keyRunes("n"))
		m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		lm, ok := m.modal.(*leadModal)
		if !ok || lm.err == "" {
			t.Fatalf("blank lead should stay open with an error, modal=%T", m.modal)
		}

		m = typeText(t, m, "Ravi")
		m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
		m = typeText(t, m, "99")
		m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.modal != nil {
			t.Fatalf("lead modal still open")
		}
		if h.api.count("add_lead") != 1 {
			t.Fatalf("add_lead calls = %d, want 1", h.api.count("add_lead"))
		}
	})
}

func TestToasts_ExpireByID(t *testing.T) {
	m, _ := newHarness(t, newStubAPI(), true)
	next, _ := m.Update(NoticeMsg{Level: workspace.LevelInfo, Message: "first"})
	next, _ = next.(Model).Update(NoticeMsg{Level: workspace.LevelError, Message: "second"})
	m = next.(Model)
	if len(m.toasts) != 2 {
		t.Fatalf("toasts = %d, want 2", len(m.toasts))
	}
	if !strings.Contains(m.renderFooter(), "second") {
		t.Fatalf("footer should show the newest toast")
	}

	next, _ = m.Update(toastExpiredMsg(1))
	m = next.(Model)
	if len(m.toasts) != 1 || m.toasts[0].notice.Message != "second" {
		t.Fatalf("toasts after expiry = %+v, want only second", m.toasts)
	}
}

func TestLock_ReturnsToLogin(t *testing.T) {
	m, _ := newHarness(t, newStubAPI(), true)
	m = send(t, m, keyRunes("L"))
	if m.view != ViewLogin {
		t.Fatalf("view = %v, want login", m.view)
	}
	if m.gate.Valid() {
		t.Fatalf("session still valid after lock")
	}
}
