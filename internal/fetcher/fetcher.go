package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/five82/leaddesk/internal/cache"
)

// Func performs the underlying request.
type Func[P, T any] func(ctx context.Context, params P) (T, error)

// State is what a view renders from.
type State[T any] struct {
	Data                T
	HasData             bool
	IsLoading           bool
	IsBackgroundLoading bool
	Err                 error
	Seq                 uint64 // sequence of the request that produced Data
	UpdatedAt           time.Time
}

// Fetcher deduplicates, caches and tracks state for one kind of request.
type Fetcher[P, T any] struct {
	fetch    Func[P, T]
	cache    *cache.Store[T]
	compare  func(a, b T) bool
	logger   *slog.Logger
	onChange func(State[T])
	metrics  *fetchMetrics

	group singleflight.Group

	mu        sync.Mutex
	state     State[T]
	loading   int
	bgLoading int
	issued    uint64
}

// New builds a Fetcher around fetch.
func New[P, T any](fetch Func[P, T], opts ...Option[T]) *Fetcher[P, T] {
	cfg := config[T]{compare: Equal[T]}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.cache == nil {
		cfg.cache = cache.New[T]()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Fetcher[P, T]{
		fetch:    fetch,
		cache:    cfg.cache,
		compare:  cfg.compare,
		logger:   cfg.logger,
		onChange: cfg.onChange,
		metrics:  cfg.metrics,
	}
}

// Fetch returns data for params, joining an identical in-flight request or
// answering from the cache when possible. Errors from the fetch function are
// returned unchanged and also recorded in State.Err.
func (f *Fetcher[P, T]) Fetch(ctx context.Context, params P, opts ...CallOption) (T, error) {
	var zero T
	var co callOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}

	key, err := cache.Key(params)
	if err != nil {
		return zero, fmt.Errorf("serialize fetch params: %w", err)
	}

	// The shared call must outlive any single caller; each caller can still
	// stop waiting through its own context.
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (any, error) {
		return f.run(shared, params, co)
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			f.metrics.share()
		}
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

func (f *Fetcher[P, T]) run(ctx context.Context, params P, co callOptions) (T, error) {
	seq := f.nextSeq()

	if !co.force {
		if data, ok := f.cache.Get(params); ok {
			f.apply(seq, func(s *State[T]) {
				s.Data = data
				s.HasData = true
				s.Err = nil
				s.Seq = seq
			})
			return data, nil
		}
	}

	f.beginLoading(co.background)
	defer f.endLoading(co.background)

	f.metrics.request()
	data, err := f.fetch(ctx, params)
	if err != nil {
		f.metrics.failure()
		f.logger.Debug("fetch failed", "seq", seq, "error", err)
		f.apply(seq, func(s *State[T]) { s.Err = err })
		var zero T
		return zero, err
	}

	if !co.force && f.equalsHeld(data, co) {
		f.apply(seq, func(s *State[T]) { s.Err = nil })
		return data, nil
	}

	f.cache.Set(params, data)
	f.apply(seq, func(s *State[T]) {
		s.Data = data
		s.HasData = true
		s.Err = nil
		s.Seq = seq
	})
	return data, nil
}

func (f *Fetcher[P, T]) equalsHeld(data T, co callOptions) bool {
	f.mu.Lock()
	held, has := f.state.Data, f.state.HasData
	f.mu.Unlock()
	if !has {
		return false
	}
	if co.compare != nil {
		return co.compare(held, data)
	}
	return f.compare(held, data)
}

// Snapshot returns the current state.
func (f *Fetcher[P, T]) Snapshot() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// ClearCache drops every cached result. Held state is kept so the view keeps
// showing data until the next fetch lands.
func (f *Fetcher[P, T]) ClearCache() {
	f.cache.Clear()
}

// Invalidate clears the cache and supersedes every request issued so far, so
// results still in flight are returned to their callers but never land in
// state.
func (f *Fetcher[P, T]) Invalidate() {
	f.cache.Clear()
	f.nextSeq()
}

// Cache exposes the underlying store.
func (f *Fetcher[P, T]) Cache() *cache.Store[T] {
	return f.cache
}

func (f *Fetcher[P, T]) nextSeq() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued++
	return f.issued
}

// apply runs mutate under the lock unless a newer request has been issued.
func (f *Fetcher[P, T]) apply(seq uint64, mutate func(*State[T])) {
	f.mu.Lock()
	if seq < f.issued {
		f.mu.Unlock()
		f.logger.Debug("discarding superseded result", "seq", seq, "latest", f.issued)
		return
	}
	mutate(&f.state)
	f.state.UpdatedAt = time.Now()
	snap := f.state
	f.mu.Unlock()
	f.notify(snap)
}

func (f *Fetcher[P, T]) beginLoading(background bool) {
	f.mu.Lock()
	if background {
		f.bgLoading++
	} else {
		f.loading++
	}
	f.syncFlagsLocked()
	snap := f.state
	f.mu.Unlock()
	f.notify(snap)
}

func (f *Fetcher[P, T]) endLoading(background bool) {
	f.mu.Lock()
	if background {
		f.bgLoading--
	} else {
		f.loading--
	}
	f.syncFlagsLocked()
	snap := f.state
	f.mu.Unlock()
	f.notify(snap)
}

func (f *Fetcher[P, T]) syncFlagsLocked() {
	f.state.IsLoading = f.loading > 0
	f.state.IsBackgroundLoading = f.bgLoading > 0
}

func (f *Fetcher[P, T]) notify(s State[T]) {
	if f.onChange != nil {
		f.onChange(s)
	}
}
