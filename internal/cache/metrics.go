package cache

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// storeMetrics mirrors Stats as Prometheus collectors. A nil *storeMetrics is
// valid and records nothing.
type storeMetrics struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	sets        prometheus.Counter
	evictions   prometheus.Counter
	expirations prometheus.Counter
	size        prometheus.Gauge
}

// WithMetrics registers hit/miss/set/eviction counters and a size gauge on reg,
// labelled with the store name. A nil registry disables metrics. Registering
// the same name twice reuses the existing collectors.
func WithMetrics(reg prometheus.Registerer, name string) Option {
	return func(o *options) {
		if reg == nil || name == "" {
			return
		}
		o.metrics = newStoreMetrics(reg, name)
	}
}

func newStoreMetrics(reg prometheus.Registerer, name string) *storeMetrics {
	labels := prometheus.Labels{"store": name}
	counter := func(metric, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "leaddesk",
			Subsystem:   "cache",
			Name:        metric,
			Help:        help,
			ConstLabels: labels,
		})
		return register(reg, c)
	}
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "leaddesk",
		Subsystem:   "cache",
		Name:        "size",
		Help:        "Current number of entries in the cache store.",
		ConstLabels: labels,
	})
	return &storeMetrics{
		hits:        counter("hits_total", "Cache lookups answered from a fresh entry."),
		misses:      counter("misses_total", "Cache lookups that found no fresh entry."),
		sets:        counter("sets_total", "Cache writes."),
		evictions:   counter("evictions_total", "Entries evicted to stay within capacity."),
		expirations: counter("expired_total", "Entries removed because they outlived the TTL."),
		size:        register(reg, gauge),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *storeMetrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *storeMetrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *storeMetrics) set(size int) {
	if m != nil {
		m.sets.Inc()
		m.size.Set(float64(size))
	}
}

func (m *storeMetrics) evicted() {
	if m != nil {
		m.evictions.Inc()
	}
}

func (m *storeMetrics) expired(n, size int) {
	if m != nil {
		m.expirations.Add(float64(n))
		m.size.Set(float64(size))
	}
}

func (m *storeMetrics) resize(size int) {
	if m != nil {
		m.size.Set(float64(size))
	}
}
