package memstore

import (
	"sync"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// EventRecorder is a shared.EventPublisher that keeps every event.
type EventRecorder struct {
	mu     sync.Mutex
	events []shared.Event
}

var _ shared.EventPublisher = (*EventRecorder)(nil)

// Publish records the event.
func (r *EventRecorder) Publish(event shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns the recorded events in publish order.
func (r *EventRecorder) Events() []shared.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.Event(nil), r.events...)
}

// Types returns the types of the recorded events.
func (r *EventRecorder) Types() []shared.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]shared.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}
