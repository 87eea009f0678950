package uistate

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/five82/leaddesk/internal/crmerr"
	"github.com/five82/leaddesk/internal/filter"
	"github.com/five82/leaddesk/internal/kvstore"
)

// Option configures a Section or Manager.
type Option func(*options)

type options struct {
	now      func() time.Time
	logger   *slog.Logger
	defaults map[string]Patch
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used for hydration and persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDefaults overrides the defaults of one section, e.g. todo lists sort by
// date ascending.
func WithDefaults(section string, p Patch) Option {
	return func(o *options) {
		if o.defaults == nil {
			o.defaults = make(map[string]Patch)
		}
		o.defaults[section] = p
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Key returns the durable key of a section.
func Key(section string) string {
	return section + "_state"
}

// Section is the live state of one section key. It is safe for concurrent use.
type Section struct {
	mu       sync.Mutex
	kv       kvstore.KV
	name     string
	key      string
	defaults State
	state    State
	now      func() time.Time
	logger   *slog.Logger
	watchers []func(State)
}

// Open hydrates the named section from kv, falling back to defaults when
// nothing usable is stored.
func Open(kv kvstore.KV, section string, opts ...Option) *Section {
	o := buildOptions(opts)
	defaults := Defaults()
	if p, ok := o.defaults[section]; ok {
		defaults = p.apply(defaults)
	}
	s := &Section{
		kv:       kv,
		name:     section,
		key:      Key(section),
		defaults: defaults,
		now:      o.now,
		logger:   o.logger.With("component", "uistate", "section", section),
	}
	s.state = s.hydrate()
	return s
}

func (s *Section) hydrate() State {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.logger.Warn("read saved state failed, using defaults", "error", err)
		return s.defaults.clone()
	}
	if !ok {
		return s.defaults.clone()
	}

	// Unset fields are told apart from zero values so they can be back-filled.
	var present struct {
		LastUpdated       *int64 `json:"lastUpdated"`
		IsManuallyCleared *bool  `json:"isManuallyCleared"`
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.logger.Warn("saved state is malformed, using defaults", "error", err)
		return s.defaults.clone()
	}
	_ = json.Unmarshal([]byte(raw), &present)

	switch {
	case st.Version > SchemaVersion:
		s.logger.Warn("saved state has a newer schema, using defaults", "version", st.Version)
		return s.defaults.clone()
	case st.Version == 0:
		st.Version = SchemaVersion
	}
	if present.LastUpdated == nil {
		st.LastUpdated = s.now().UnixMilli()
	}
	if present.IsManuallyCleared == nil {
		st.IsManuallyCleared = false
	}
	if st.CurrentPage < 1 {
		st.CurrentPage = 1
	}
	for i, f := range st.Filters {
		st.Filters[i].Value = filter.Normalize(f.Value)
	}
	return st.clone()
}

// Name returns the section key the state belongs to.
func (s *Section) Name() string { return s.name }

// State returns a copy of the current state.
func (s *Section) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Watch registers fn to be called with the new state after every change.
func (s *Section) Watch(fn func(State)) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

// UpdateState merges p into the state.
func (s *Section) UpdateState(p Patch) error {
	return s.mutate(p.apply)
}

// ClearFilters drops every filter and returns to the first page.
func (s *Section) ClearFilters() error {
	return s.mutate(func(st State) State {
		st.Filters = []filter.Option{}
		st.CurrentPage = 1
		return st
	})
}

// ClearSearch empties the search query and returns to the first page.
func (s *Section) ClearSearch() error {
	return s.mutate(func(st State) State {
		st.SearchQuery = ""
		st.CurrentPage = 1
		return st
	})
}

// AddFilter appends f and returns to the first page.
func (s *Section) AddFilter(f filter.Option) error {
	return s.mutate(func(st State) State {
		st.Filters = append(slices.Clone(st.Filters), f)
		st.CurrentPage = 1
		return st
	})
}

// RemoveFilter removes the filter at index i. Out of range indexes change
// nothing.
func (s *Section) RemoveFilter(i int) error {
	s.mu.Lock()
	n := len(s.state.Filters)
	s.mu.Unlock()
	if i < 0 || i >= n {
		return nil
	}
	return s.mutate(func(st State) State {
		if i < len(st.Filters) {
			st.Filters = slices.Delete(slices.Clone(st.Filters), i, i+1)
		}
		st.CurrentPage = 1
		return st
	})
}

// UpdateFilters replaces the filter list and returns to the first page.
func (s *Section) UpdateFilters(fs []filter.Option) error {
	return s.mutate(func(st State) State {
		st.Filters = slices.Clone(fs)
		st.CurrentPage = 1
		return st
	})
}

// ResetState returns to the defaults and deletes the durable copy.
func (s *Section) ResetState() error {
	s.mu.Lock()
	st := s.defaults.clone()
	st.IsManuallyCleared = true
	st.LastUpdated = s.now().UnixMilli()
	s.state = st
	watchers := slices.Clone(s.watchers)
	s.mu.Unlock()

	err := s.kv.Delete(s.key)
	if err != nil {
		s.logger.Warn("delete saved state failed", "error", err)
		err = crmerr.Storage("reset "+s.name, err)
	}
	for _, fn := range watchers {
		fn(st.clone())
	}
	return err
}

// ClearAll is ResetState under the name list views bind to their "clear"
// action.
func (s *Section) ClearAll() error {
	return s.ResetState()
}

// IsStatePersisted reports whether a durable copy exists.
func (s *Section) IsStatePersisted() bool {
	_, ok, err := s.kv.Get(s.key)
	return err == nil && ok
}

// mutate applies fn, clears the manual-clear mark and writes the result
// through. The in-memory state advances even when the write fails.
func (s *Section) mutate(fn func(State) State) error {
	s.mu.Lock()
	st := fn(s.state.clone())
	st.Version = SchemaVersion
	st.IsManuallyCleared = false
	st.LastUpdated = s.now().UnixMilli()
	s.state = st
	watchers := slices.Clone(s.watchers)
	s.mu.Unlock()

	err := s.persist(st)
	for _, fn := range watchers {
		fn(st.clone())
	}
	return err
}

func (s *Section) persist(st State) error {
	b, err := json.Marshal(st.clone())
	if err != nil {
		return crmerr.Storage("encode "+s.name, err)
	}
	if err := s.kv.Set(s.key, string(b)); err != nil {
		s.logger.Warn("save state failed", "error", err)
		return crmerr.Storage("save "+s.name, err)
	}
	return nil
}
