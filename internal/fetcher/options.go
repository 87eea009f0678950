package fetcher

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"reflect"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/five82/leaddesk/internal/cache"
)

// Option configures a Fetcher.
type Option[T any] func(*config[T])

type config[T any] struct {
	cache    *cache.Store[T]
	compare  func(a, b T) bool
	logger   *slog.Logger
	onChange func(State[T])
	metrics  *fetchMetrics
}

// WithCache sets the store used for results. Without it a store with the
// package defaults is created.
func WithCache[T any](store *cache.Store[T]) Option[T] {
	return func(c *config[T]) {
		if store != nil {
			c.cache = store
		}
	}
}

// WithCompare replaces the default structural comparison used to suppress
// state updates when fresh data equals the held data.
func WithCompare[T any](fn func(a, b T) bool) Option[T] {
	return func(c *config[T]) {
		if fn != nil {
			c.compare = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *config[T]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnChange registers a callback invoked after every state change. It runs
// on the goroutine that changed the state and must not block.
func WithOnChange[T any](fn func(State[T])) Option[T] {
	return func(c *config[T]) {
		c.onChange = fn
	}
}

// WithMetrics counts network calls and shared (deduplicated) results on reg.
func WithMetrics[T any](reg prometheus.Registerer, name string) Option[T] {
	return func(c *config[T]) {
		if reg != nil && name != "" {
			c.metrics = newFetchMetrics(reg, name)
		}
	}
}

// CallOption adjusts a single Fetch.
type CallOption func(*callOptions)

type callOptions struct {
	force      bool
	background bool
	compare    func(a, b any) bool
}

// ForceRefresh skips the cache read. The result is still written to the cache.
func ForceRefresh() CallOption {
	return func(o *callOptions) { o.force = true }
}

// Background reports loading through IsBackgroundLoading instead of IsLoading.
func Background() CallOption {
	return func(o *callOptions) { o.background = true }
}

// CompareWith overrides the equality check for this call only.
func CompareWith(fn func(a, b any) bool) CallOption {
	return func(o *callOptions) { o.compare = fn }
}

// Equal is the default comparison: values are equal when they serialize to
// the same JSON, falling back to reflect.DeepEqual for values JSON cannot
// represent.
func Equal[T any](a, b T) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(ab, bb)
}

type fetchMetrics struct {
	requests prometheus.Counter
	failures prometheus.Counter
	shared   prometheus.Counter
}

func newFetchMetrics(reg prometheus.Registerer, name string) *fetchMetrics {
	labels := prometheus.Labels{"fetcher": name}
	mk := func(metric, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "leaddesk",
			Subsystem:   "fetcher",
			Name:        metric,
			Help:        help,
			ConstLabels: labels,
		})
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
					return existing
				}
			}
		}
		return c
	}
	return &fetchMetrics{
		requests: mk("requests_total", "Underlying fetch calls issued."),
		failures: mk("failures_total", "Underlying fetch calls that returned an error."),
		shared:   mk("shared_total", "Fetch results delivered to more than one caller."),
	}
}

func (m *fetchMetrics) request() {
	if m != nil {
		m.requests.Inc()
	}
}

func (m *fetchMetrics) failure() {
	if m != nil {
		m.failures.Inc()
	}
}

func (m *fetchMetrics) share() {
	if m != nil {
		m.shared.Inc()
	}
}
