package cache

import (
	"encoding/json"
	"slices"
	"sync"
	"time"
)

const (
	// DefaultTTL is the generic entry lifetime.
	DefaultTTL = 5 * time.Minute
	// DefaultMaxSize is the generic entry capacity.
	DefaultMaxSize = 50
)

// Entry is a cached value along with the parameters that produced it.
type Entry[T any] struct {
	Data      T
	Timestamp time.Time
	Params    any
}

// Stats counts store activity since creation.
type Stats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Evictions int64
	Expired   int64
}

// Store is a bounded TTL cache keyed by serialized parameters.
type Store[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	entries map[string]Entry[T]
	order   []string // insertion order, oldest first
	stats   Stats
	metrics *storeMetrics
}

// Option configures a Store.
type Option func(*options)

type options struct {
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	metrics *storeMetrics
}

// WithTTL sets the entry lifetime. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithMaxSize sets the entry capacity. Non-positive values are ignored.
func WithMaxSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an empty store.
func New[T any](opts ...Option) *Store[T] {
	o := options{ttl: DefaultTTL, maxSize: DefaultMaxSize, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Store[T]{
		ttl:     o.ttl,
		maxSize: o.maxSize,
		now:     o.now,
		entries: make(map[string]Entry[T]),
		metrics: o.metrics,
	}
}

// Key returns the cache key for params.
func Key(params any) (string, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Get returns the cached data for params if present and fresh. A stale entry
// is removed.
func (s *Store[T]) Get(params any) (T, bool) {
	var zero T
	key, err := Key(params)
	if err != nil {
		s.miss()
		return zero, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		s.missLocked()
		return zero, false
	}
	if s.now().Sub(entry.Timestamp) > s.ttl {
		s.removeLocked(key)
		s.stats.Expired++
		s.metrics.expired(1, len(s.entries))
		s.missLocked()
		return zero, false
	}
	s.stats.Hits++
	s.metrics.hit()
	return entry.Data, true
}

// Set stores data for params. When the store is full and params is a new key,
// the oldest inserted entry is evicted first.
func (s *Store[T]) Set(params any, data T) {
	key, err := Key(params)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists {
		if len(s.entries) >= s.maxSize && len(s.order) > 0 {
			s.removeLocked(s.order[0])
			s.stats.Evictions++
			s.metrics.evicted()
		}
		s.order = append(s.order, key)
	}
	s.entries[key] = Entry[T]{Data: data, Timestamp: s.now(), Params: params}
	s.stats.Sets++
	s.metrics.set(len(s.entries))
}

// Peek returns the raw entry for params without expiring it.
func (s *Store[T]) Peek(params any) (Entry[T], bool) {
	key, err := Key(params)
	if err != nil {
		return Entry[T]{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// Clear removes every entry.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry[T])
	s.order = nil
	s.metrics.resize(0)
}

// ClearExpired removes every entry older than the TTL and returns how many
// were removed.
func (s *Store[T]) ClearExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for _, key := range slices.Clone(s.order) {
		if now.Sub(s.entries[key].Timestamp) > s.ttl {
			s.removeLocked(key)
			removed++
		}
	}
	if removed > 0 {
		s.stats.Expired += int64(removed)
		s.metrics.expired(removed, len(s.entries))
	}
	return removed
}

// Len returns the number of entries, fresh or not.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// TTL returns the configured entry lifetime.
func (s *Store[T]) TTL() time.Duration { return s.ttl }

// MaxSize returns the configured capacity.
func (s *Store[T]) MaxSize() int { return s.maxSize }

// Stats returns a copy of the activity counters.
func (s *Store[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Store[T]) miss() {
	s.mu.Lock()
	s.missLocked()
	s.mu.Unlock()
}

func (s *Store[T]) missLocked() {
	s.stats.Misses++
	s.metrics.miss()
}

func (s *Store[T]) removeLocked(key string) {
	delete(s.entries, key)
	if i := slices.Index(s.order, key); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}
