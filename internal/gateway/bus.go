// bus.go — fan-out bus for pushing view snapshots to connected clients.
package gateway

import "sync"

// Event is one push to connected clients.
type Event struct {
	Type string
	Data any
}

// EventBus broadcasts events to all subscribers. Sends never block: a slow
// consumer drops events and catches up on the next snapshot, which is safe
// because every event carries the full view.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string]chan Event)}
}

// Publish broadcasts an event to every subscriber.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a consumer and returns its channel.
func (b *EventBus) Subscribe(id string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, 32)
	b.subscribers[id] = ch
	return ch
}

// Unsubscribe removes a consumer.
//
// The channel is not closed — handlers exit via their own done signal and
// the unreferenced channel is collected.
func (b *EventBus) Unsubscribe(id string) {
	b.mu.Lock()
	delete(b.subscribers, id)
	b.mu.Unlock()
}
