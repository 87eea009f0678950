package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/five82/leaddesk/internal/events"
	"github.com/five82/leaddesk/internal/state"
)

const (
	defaultPollInterval = 60 * time.Second
	defaultMinGap       = 5 * time.Second
	maxBackoff          = 10 * time.Minute
)

// Request asks the UI to refresh what it is showing.
type Request struct {
	// Background refreshes keep the current rows on screen.
	Background bool
	// Force bypasses the cache.
	Force bool
	// Topic is set when the refresh answers an invalidation.
	Topic events.Topic
}

// Refresher drives periodic and event-triggered refreshes. It does not fetch
// itself; fire hands each Request to whoever owns the visible queries.
type Refresher struct {
	store    *state.Store
	bus      *events.Bus
	interval time.Duration
	limiter  *rate.Limiter
	fire     func(Request)
	logger   *slog.Logger
}

// NewRefresher builds a Refresher. Ad-hoc triggers are limited to one per
// minGap.
func NewRefresher(store *state.Store, bus *events.Bus, interval, minGap time.Duration, fire func(Request), logger *slog.Logger) *Refresher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if minGap <= 0 {
		minGap = defaultMinGap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		store:    store,
		bus:      bus,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(minGap), 1),
		fire:     fire,
		logger:   logger.With("component", "refresher"),
	}
}

// Run blocks until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	focus, cancelFocus := r.bus.Subscribe(events.Focus)
	defer cancelFocus()
	online, cancelOnline := r.bus.Subscribe(events.Online)
	defer cancelOnline()

	timer := time.NewTimer(r.delay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			r.fire(Request{Background: true, Force: true})
			timer.Reset(r.delay())
		case _, ok := <-focus:
			if !ok {
				return
			}
			if r.limiter.Allow() {
				r.fire(Request{Background: true})
			}
		case _, ok := <-online:
			if !ok {
				return
			}
			r.logger.Info("api reachable again, refreshing")
			if r.limiter.Allow() {
				r.fire(Request{Background: true, Force: true})
			}
			timer.Reset(r.delay())
		}
	}
}

// Invalidated schedules a refresh for topic, waiting out the rate limit
// rather than dropping it.
func (r *Refresher) Invalidated(ctx context.Context, topic events.Topic) {
	if err := r.limiter.Wait(ctx); err != nil {
		return
	}
	r.fire(Request{Topic: topic})
}

func (r *Refresher) delay() time.Duration {
	failures := 0
	if r.store != nil {
		failures = r.store.Snapshot().ConsecutiveFailures
	}
	return nextDelay(failures, r.interval)
}

// nextDelay is the regular interval while healthy. While reads keep failing
// the interval doubles per consecutive failure, up to maxBackoff, so a failed
// read is never repeated sooner than the next regular poll.
func nextDelay(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	return calculateBackoff(failures, interval)
}

// calculateBackoff doubles base per failure, capped at maxBackoff. A base
// above the cap is returned unchanged.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
