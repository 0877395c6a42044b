// Package realtime fans named events out to every connected observer.
package realtime

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event is one named push delivered to observers.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"data"`
}

// Subscription is a registered observer. Events arrive on Events in publish
// order; the channel is closed once the subscription is unregistered.
type Subscription struct {
	id      string
	events  chan Event
	dropped atomic.Uint64
}

func (s *Subscription) ID() string           { return s.id }
func (s *Subscription) Events() <-chan Event { return s.events }
func (s *Subscription) Dropped() uint64      { return s.dropped.Load() }

// Broadcaster owns the live observer set.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
	log    zerolog.Logger
}

// NewBroadcaster creates a broadcaster whose observers each buffer up to
// buffer undelivered events.
func NewBroadcaster(buffer int, logger zerolog.Logger) *Broadcaster {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
		log:    logger.With().Str("component", "broadcaster").Logger(),
	}
}

func (b *Broadcaster) Register() *Subscription {
	s := &Subscription{
		id:     uuid.NewString(),
		events: make(chan Event, b.buffer),
	}
	b.mu.Lock()
	b.subs[s.id] = s
	n := len(b.subs)
	b.mu.Unlock()

	b.log.Debug().Str("observer", s.id).Int("observers", n).Msg("observer registered")
	return s
}

// Unregister removes s and closes its channel. Safe to call more than once.
func (b *Broadcaster) Unregister(s *Subscription) {
	b.mu.Lock()
	if _, ok := b.subs[s.id]; !ok {
		b.mu.Unlock()
		return
	}
	delete(b.subs, s.id)
	close(s.events)
	n := len(b.subs)
	b.mu.Unlock()

	b.log.Debug().Str("observer", s.id).Int("observers", n).Msg("observer unregistered")
}

// Publish delivers the event to every registered observer without waiting on
// any of them. An observer whose buffer is full misses this event.
func (b *Broadcaster) Publish(name string, payload any) {
	ev := Event{Name: name, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		select {
		case s.events <- ev:
		default:
			s.dropped.Add(1)
			b.log.Warn().Str("observer", s.id).Str("event", name).Msg("observer queue full, event dropped")
		}
	}
}

// Count returns the number of connected observers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
