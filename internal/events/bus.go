// Package events is the in-process notification bus. Mutations publish cache
// invalidations on it, the workspace publishes connectivity changes and the
// UI publishes terminal focus.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Topic names an event stream.
type Topic string

const (
	LeadsInvalidated Topic = "leadsCacheInvalidated"
	TodosInvalidated Topic = "todosCacheInvalidated"
	Online           Topic = "online"
	Offline          Topic = "offline"
	Focus            Topic = "focus"
)

// Event is a single notification.
type Event struct {
	Topic Topic
	At    time.Time
}

const subscriberBuffer = 8

type subscriber struct {
	topic Topic
	ch    chan Event
}

// Bus fans events out to subscribers. Publish never blocks: a subscriber whose
// buffer is full misses the event, which is acceptable for invalidation
// signals since one pending signal already triggers the refresh.
type Bus struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]subscriber
	dropped atomic.Int64
	now     func() time.Time
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscriber), now: time.Now}
}

// Subscribe returns a channel receiving events for topic and a func that
// unsubscribes and closes the channel. Calling cancel more than once is safe.
func (b *Bus) Subscribe(topic Topic) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = subscriber{topic: topic, ch: ch}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event on topic to every current subscriber and reports
// how many received it.
func (b *Bus) Publish(topic Topic) int {
	if b == nil {
		return 0
	}
	ev := Event{Topic: topic, At: b.now()}

	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, s := range b.subs {
		if s.topic != topic {
			continue
		}
		select {
		case s.ch <- ev:
			n++
		default:
			b.dropped.Add(1)
		}
	}
	return n
}

// Subscribers reports the number of live subscriptions on topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, s := range b.subs {
		if s.topic == topic {
			n++
		}
	}
	return n
}

// Dropped reports how many deliveries were skipped because a subscriber was
// not keeping up.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}
