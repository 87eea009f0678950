package workspace

import (
	"context"

	"github.com/five82/leaddesk/internal/cache"
	"github.com/five82/leaddesk/internal/crmapi"
	"github.com/five82/leaddesk/internal/events"
	"github.com/five82/leaddesk/internal/fetcher"
)

// Lists holds the cached, deduplicating fetchers the list views read from.
// Each list owns its cache; mutations reach it through the events bus.
type Lists struct {
	Leads *fetcher.Fetcher[crmapi.LeadQuery, crmapi.LeadPage]
	Todos *fetcher.Fetcher[crmapi.TodoQuery, crmapi.TodoPage]
}

// ListOptions configures NewLists.
type ListOptions struct {
	LeadCache *cache.Store[crmapi.LeadPage]
	TodoCache *cache.Store[crmapi.TodoPage]
	Leads     []fetcher.Option[crmapi.LeadPage]
	Todos     []fetcher.Option[crmapi.TodoPage]
}

// NewLists builds list fetchers on top of w's read path.
func (w *Workspace) NewLists(o ListOptions) *Lists {
	leadOpts := append([]fetcher.Option[crmapi.LeadPage]{
		fetcher.WithCache(o.LeadCache),
		fetcher.WithLogger[crmapi.LeadPage](w.logger.With("list", LeadSection)),
	}, o.Leads...)
	todoOpts := append([]fetcher.Option[crmapi.TodoPage]{
		fetcher.WithCache(o.TodoCache),
		fetcher.WithLogger[crmapi.TodoPage](w.logger.With("list", "todos")),
	}, o.Todos...)
	return &Lists{
		Leads: fetcher.New(w.FetchLeads, leadOpts...),
		Todos: fetcher.New(w.FetchTodos, todoOpts...),
	}
}

// Watch invalidates the matching list whenever an invalidation event is
// published, then calls onInvalidate so the view can refetch. It returns when
// ctx is done.
func (l *Lists) Watch(ctx context.Context, bus *events.Bus, onInvalidate func(events.Topic)) {
	leads, cancelLeads := bus.Subscribe(events.LeadsInvalidated)
	defer cancelLeads()
	todos, cancelTodos := bus.Subscribe(events.TodosInvalidated)
	defer cancelTodos()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-leads:
			if !ok {
				return
			}
			l.Leads.Invalidate()
			// Task rows embed lead fields.
			l.Todos.Invalidate()
			if onInvalidate != nil {
				onInvalidate(ev.Topic)
			}
		case ev, ok := <-todos:
			if !ok {
				return
			}
			l.Todos.Invalidate()
			if onInvalidate != nil {
				onInvalidate(ev.Topic)
			}
		}
	}
}
