// Package workspace is the application data context: it owns the canonical
// lead and task collections, runs reads and writes against the CRM API, and
// exposes filtered views to the UI.
//
// Reads (FetchLeads, FetchTodos) record failures in the state store, notify,
// and return the error while leaving prior data in place. Writes validate
// locally, go through the wire codecs, and only touch local state once the API
// has acknowledged them; a failed write returns its error and changes nothing.
package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/five82/leaddesk/internal/crm"
	"github.com/five82/leaddesk/internal/crmapi"
	"github.com/five82/leaddesk/internal/crmerr"
	"github.com/five82/leaddesk/internal/events"
	"github.com/five82/leaddesk/internal/filter"
	"github.com/five82/leaddesk/internal/state"
)

// Workspace coordinates the API client, the state store and the events bus.
type Workspace struct {
	api      crmapi.API
	store    *state.Store
	bus      *events.Bus
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	group singleflight.Group

	mu          sync.RWMutex
	activeLead  *int64
	todoFilters []filter.Option
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithBus publishes invalidation and connectivity events on bus.
func WithBus(bus *events.Bus) Option {
	return func(w *Workspace) { w.bus = bus }
}

// WithNotifier routes user-facing notices to n.
func WithNotifier(n Notifier) Option {
	return func(w *Workspace) {
		if n != nil {
			w.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) {
		if now != nil {
			w.now = now
		}
	}
}

// New builds a Workspace. A nil store gets a fresh one.
func New(api crmapi.API, store *state.Store, opts ...Option) *Workspace {
	if store == nil {
		store = &state.Store{}
	}
	w := &Workspace{
		api:    api,
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.logger = w.logger.With("component", "workspace")
	if w.notifier == nil {
		w.notifier = logNotifier{logger: w.logger}
	}
	return w
}

// Store returns the state store the workspace writes to.
func (w *Workspace) Store() *state.Store { return w.store }

// Snapshot returns the current state.
func (w *Workspace) Snapshot() state.Snapshot { return w.store.Snapshot() }

// FetchLeads loads one page of leads and replaces the lead collection.
// Concurrent calls with identical queries share one request.
func (w *Workspace) FetchLeads(ctx context.Context, q crmapi.LeadQuery) (crmapi.LeadPage, error) {
	v, err := w.shared(ctx, "get_leads", q, func(ctx context.Context) (any, error) {
		before := w.store.Snapshot()
		page, err := w.api.GetLeads(ctx, q)
		if err != nil {
			w.store.UpdateLeads(nil, 0, err)
			w.readFailed("Failed to load leads", err, before)
			return crmapi.LeadPage{}, err
		}
		w.store.UpdateLeads(page.Leads, page.Total, nil)
		w.readSucceeded(before.IsOffline())
		return page, nil
	})
	page, _ := v.(crmapi.LeadPage)
	return page, err
}

// FetchTodos loads one page of tasks, replaces the task collection and merges
// the embedded leads by id.
func (w *Workspace) FetchTodos(ctx context.Context, q crmapi.TodoQuery) (crmapi.TodoPage, error) {
	v, err := w.shared(ctx, "get_tasks", q, func(ctx context.Context) (any, error) {
		before := w.store.Snapshot()
		page, err := w.api.GetTasks(ctx, q)
		if err != nil {
			w.store.UpdateTodos(nil, 0, err)
			w.readFailed("Failed to load tasks", err, before)
			return crmapi.TodoPage{}, err
		}
		w.store.UpdateTodos(page.Todos, page.Total, nil)
		w.readSucceeded(before.IsOffline())
		return page, nil
	})
	page, _ := v.(crmapi.TodoPage)
	return page, err
}

// shared runs fn once per (op, params) among concurrent callers. The shared
// call is detached from any single caller's cancellation.
func (w *Workspace) shared(ctx context.Context, op string, params any, fn func(context.Context) (any, error)) (any, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("serialize %s params: %w", op, err)
	}
	detached := context.WithoutCancel(ctx)
	ch := w.group.DoChan(op+":"+string(b), func() (any, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// readFailed logs every failed read but notifies only the first of a run of
// consecutive failures; the header keeps showing the error until a read
// succeeds.
func (w *Workspace) readFailed(msg string, err error, before state.Snapshot) {
	w.logger.Warn(msg, "error", err)
	if before.ConsecutiveFailures == 0 {
		w.notify(LevelError, msg+": "+crmerr.UserMessage(err))
	}
	if !before.IsOffline() && w.store.Snapshot().IsOffline() {
		w.publish(events.Offline)
	}
}

func (w *Workspace) readSucceeded(wasOffline bool) {
	if wasOffline {
		w.logger.Info("api reachable again")
		w.publish(events.Online)
	}
}

// AddLead validates and creates a lead, then appends it locally.
func (w *Workspace) AddLead(ctx context.Context, lead crm.Lead) (crm.Lead, error) {
	const op = "add_lead"
	if err := validateLead(op, lead.Name, lead.Phone); err != nil {
		return crm.Lead{}, err
	}
	created, err := w.api.AddLead(ctx, lead)
	if err != nil {
		w.logger.Warn("add lead failed", "error", err)
		return crm.Lead{}, err
	}
	now := w.now()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	w.store.AddLead(created)
	w.publish(events.LeadsInvalidated)
	w.notify(LevelSuccess, fmt.Sprintf("Lead %q added", created.Name))
	return created, nil
}

// UpdateLead sends the fields of patch that differ from current, the record
// the caller is showing. When nothing differs no request is made and current
// is returned.
func (w *Workspace) UpdateLead(ctx context.Context, current crm.Lead, patch crm.LeadPatch) (crm.Lead, error) {
	const op = "edit_lead"
	id := current.ID
	if id <= 0 {
		return crm.Lead{}, crmerr.Validation(op, "id", "lead id is required")
	}
	changes := patch.Changes(current)
	if changes.IsEmpty() {
		w.logger.Debug("lead update skipped, nothing changed", "lead", id)
		return current, nil
	}
	if changes.Name != nil || changes.Phone != nil {
		name, phone := current.Name, current.Phone
		if changes.Name != nil {
			name = *changes.Name
		}
		if changes.Phone != nil {
			phone = *changes.Phone
		}
		if err := validateLead(op, name, phone); err != nil {
			return crm.Lead{}, err
		}
	}

	if err := w.api.EditLead(ctx, id, changes); err != nil {
		w.logger.Warn("update lead failed", "lead", id, "error", err)
		return crm.Lead{}, err
	}
	updated, ok := w.store.PatchLead(id, changes)
	if !ok {
		updated = changes.Apply(current, w.now())
	}
	w.publish(events.LeadsInvalidated)
	return updated, nil
}

// AddTodo validates and creates a task, then appends it locally.
func (w *Workspace) AddTodo(ctx context.Context, todo crm.Todo) (crm.Todo, error) {
	const op = "add_task"
	if err := validateTodo(op, todo); err != nil {
		return crm.Todo{}, err
	}
	created, err := w.api.AddTask(ctx, todo)
	if err != nil {
		w.logger.Warn("add task failed", "error", err)
		return crm.Todo{}, err
	}
	now := w.now()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	if created.Lead == nil {
		if lead, ok := w.store.Lead(created.LeadID); ok {
			created.Lead = &lead
		}
	}
	w.store.AddTodo(created)
	w.publish(events.TodosInvalidated)
	w.notify(LevelSuccess, fmt.Sprintf("%s scheduled", created.Type))
	return created, nil
}

// UpdateTodo sends patch for the task with id and applies it locally once
// acknowledged. An empty patch makes no request.
func (w *Workspace) UpdateTodo(ctx context.Context, id int64, patch crm.TodoPatch) (crm.Todo, error) {
	if patch.IsEmpty() {
		todo, _ := w.store.Snapshot().Todo(id)
		return todo, nil
	}
	if patch.Type != nil && *patch.Type == crm.TodoTypeUnset {
		return crm.Todo{}, crmerr.Validation("edit_task", "type", "task type is required")
	}
	if patch.DateTime != nil && patch.DateTime.IsZero() {
		return crm.Todo{}, crmerr.Validation("edit_task", "dateTime", "date and time are required")
	}
	if err := w.api.EditTask(ctx, id, patch); err != nil {
		w.logger.Warn("update task failed", "task", id, "error", err)
		return crm.Todo{}, err
	}
	updated, ok := w.store.PatchTodo(id, patch)
	if !ok {
		updated = patch.Apply(crm.Todo{ID: id}, w.now())
	}
	w.publish(events.TodosInvalidated)
	return updated, nil
}

// CompleteTodo marks a task completed, appending notes when given.
func (w *Workspace) CompleteTodo(ctx context.Context, id int64, notes string) (crm.Todo, error) {
	p := crm.TodoPatch{Status: crm.Ptr(crm.TodoCompleted)}
	if notes != "" {
		p.Notes = &notes
	}
	return w.UpdateTodo(ctx, id, p)
}

// CancelTodo marks a task cancelled.
func (w *Workspace) CancelTodo(ctx context.Context, id int64) (crm.Todo, error) {
	return w.UpdateTodo(ctx, id, crm.TodoPatch{Status: crm.Ptr(crm.TodoCancelled)})
}

// RescheduleTodo moves a task to at and reopens it.
func (w *Workspace) RescheduleTodo(ctx context.Context, id int64, at time.Time) (crm.Todo, error) {
	return w.UpdateTodo(ctx, id, crm.TodoPatch{DateTime: &at, Status: crm.Ptr(crm.TodoPending)})
}

func (w *Workspace) publish(topic events.Topic) {
	if w.bus != nil {
		w.bus.Publish(topic)
	}
}

func (w *Workspace) notify(level Level, msg string) {
	w.notifier.Notify(Notice{Level: level, Message: msg, At: w.now()})
}
