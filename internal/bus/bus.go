// Package bus provides the in-process change-notification channel for the
// profile engine.
//
// Settings-store writes and broadcast-style external events (profile
// selected/updated, time-trigger firings) are all delivered as topics on a
// single Bus. Handlers run sequentially on one dispatch goroutine, so
// re-render logic never races with itself; because every handler fully
// recomputes from the authoritative store, ordering and duplication of
// events are harmless.
//
// The queue is unbounded so publishers never block: a settings write that
// happens inside a handler can enqueue its own notification without
// deadlocking the dispatch loop.
package bus

import (
	"sync"
)

// Topics for broadcast-style events. Settings-change topics are derived
// per key via SettingTopic.
const (
	// TopicProfileSelected is published when the active profile changes.
	TopicProfileSelected = "profile/selected"
	// TopicProfileUpdated is published when the profile list or a profile
	// definition changes.
	TopicProfileUpdated = "profile/updated"
	// TopicTimeTrigger is published when a scheduled time trigger fires.
	TopicTimeTrigger = "profile/time-trigger"
)

// SettingTopic returns the change-notification topic for one settings key.
// Handlers re-fetch the value; the event carries no payload.
func SettingTopic(scope, key string) string {
	return "setting/" + scope + "/" + key
}

// Event is delivered to subscribed handlers. It identifies only the topic:
// handlers must re-read authoritative state rather than trust payload data.
type Event struct {
	Topic string
}

// Handler receives events on the dispatch goroutine. Handlers must not
// block indefinitely; long work should be handed off.
type Handler func(Event)

// Subscription is a cancellable registration for one topic.
type Subscription struct {
	bus   *Bus
	topic string
	fn    Handler
}

// Cancel removes the subscription. It is safe to call more than once.
// After Cancel returns, no new events are dispatched to the handler,
// though an event already being dispatched may still complete.
func (s *Subscription) Cancel() {
	s.bus.unsubscribe(s)
}

// Bus is an unbounded FIFO topic bus with a single dispatch goroutine.
//
// Thread-safety model:
//   - Publish/Subscribe/Cancel: safe from any goroutine
//   - handler execution: exactly one goroutine, FIFO publish order
type Bus struct {
	mu     sync.Mutex
	subs   map[string][]*Subscription
	events []Event
	closed bool
	signal chan struct{} // signals event availability (buffered, size 1)
	done   chan struct{} // closed when the dispatch loop exits
}

// New creates a Bus and starts its dispatch goroutine.
func New() *Bus {
	b := &Bus{
		subs:   make(map[string][]*Subscription),
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for a topic and returns its cancellable
// handle. Returns nil if the bus is closed.
func (b *Bus) Subscribe(topic string, fn Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	s := &Subscription{bus: b, topic: topic, fn: fn}
	b.subs[topic] = append(b.subs[topic], s)
	return s
}

func (b *Bus) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[s.topic]
	for i, cur := range list {
		if cur == s {
			b.subs[s.topic] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Publish enqueues an event for the topic. Never blocks. Events published
// after Close are dropped.
func (b *Bus) Publish(topic string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.events = append(b.events, Event{Topic: topic})
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default: // already signaled
	}
}

// Close stops the dispatch loop after draining already-queued events and
// waits for it to exit. Subsequent publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	b.closed = true
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
	<-b.done
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for {
		<-b.signal

		for {
			b.mu.Lock()
			if len(b.events) == 0 {
				closed := b.closed
				b.mu.Unlock()
				if closed {
					return
				}
				break
			}
			ev := b.events[0]
			b.events = b.events[1:]
			// Copy the handler list so Cancel during dispatch is safe.
			handlers := make([]Handler, 0, len(b.subs[ev.Topic]))
			for _, s := range b.subs[ev.Topic] {
				handlers = append(handlers, s.fn)
			}
			b.mu.Unlock()

			for _, fn := range handlers {
				fn(ev)
			}
		}
	}
}
