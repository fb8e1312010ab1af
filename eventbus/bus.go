// Package eventbus implements the in-process notification bus the panel
// modules decouple through. Publishing is fire-and-forget: a publish never
// fails and never blocks the caller, and subscribers are expected to
// re-fetch the state they care about rather than trust the payload.
package eventbus

import (
	"sync"

	"github.com/rs/zerolog"
)

// Topic is a named event stream. Topic names are kept identical to the
// browser events the panel frontend listens for.
type Topic string

const (
	TopicDriversUpdated       Topic = "driversUpdated"
	TopicDriverCalled         Topic = "driverCalled"
	TopicRunAssigned          Topic = "runAssigned"
	TopicCallFinalized        Topic = "callFinalized"
	TopicCallReopened         Topic = "callReopened"
	TopicServiceStatusUpdated Topic = "serviceStatusUpdated"
	TopicActionHistoryUpdated Topic = "actionHistoryUpdated"
)

// AllTopics returns every topic the panel publishes.
func AllTopics() []Topic {
	return []Topic{
		TopicDriversUpdated,
		TopicDriverCalled,
		TopicRunAssigned,
		TopicCallFinalized,
		TopicCallReopened,
		TopicServiceStatusUpdated,
		TopicActionHistoryUpdated,
	}
}

// Event is a published notification. Payload values are display hints, not
// authoritative state.
type Event struct {
	Topic   Topic
	Payload map[string]interface{}
}

// Handler consumes events for one subscription. Handlers run on the
// subscriber's own goroutine, never on the publisher's.
type Handler func(Event)

type subscriber struct {
	id     int
	topics map[Topic]bool
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// Bus is a topic-based publish/subscribe hub.
type Bus struct {
	logger zerolog.Logger
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
}

// NewBus creates an event bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		logger: logger.With().Str("module", "event_bus").Logger(),
		subs:   make(map[int]*subscriber),
	}
}

// Subscribe registers a handler for the given topics (all topics when none
// are given) and returns an unsubscribe function. The handler keeps
// receiving events until unsubscribe is called.
func (b *Bus) Subscribe(handler Handler, topics ...Topic) func() {
	sub := &subscriber{
		topics: make(map[Topic]bool),
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	for _, t := range topics {
		sub.topics[t] = true
	}

	b.mu.Lock()
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	b.mu.Unlock()

	go func() {
		for {
			select {
			case event := <-sub.events:
				handler(event)
			case <-sub.done:
				return
			}
		}
	}()

	return func() {
		b.mu.Lock()
		delete(b.subs, sub.id)
		b.mu.Unlock()
		sub.close()
	}
}

// Publish delivers the event to every matching subscriber. A subscriber
// whose queue is full is skipped; consumers re-fetch state, so a dropped
// hint costs at most one refresh.
func (b *Bus) Publish(topic Topic, payload map[string]interface{}) {
	event := Event{Topic: topic, Payload: payload}

	b.mu.RLock()
	subs := make([]*subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		if len(sub.topics) == 0 || sub.topics[topic] {
			subs = append(subs, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.events <- event:
		default:
			b.logger.Warn().
				Str("topic", string(topic)).
				Int("subscriber_id", sub.id).
				Msg("subscriber queue full, dropping event")
		}
	}
}
