package bookingstore

import (
	"context"
	"sync"

	"booking-wizard/internal/domain/events"
)

// InMemoryEventStore keeps events per session in memory. Used for tests and
// single-node runs without Postgres.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events map[string][]events.Event
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		events: make(map[string][]events.Event),
	}
}

func (es *InMemoryEventStore) SaveEvent(ctx context.Context, event events.Event) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.events[event.SessionID()] = append(es.events[event.SessionID()], event)
	return nil
}

func (es *InMemoryEventStore) LoadEvents(ctx context.Context, sessionID string) ([]events.Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	stored := es.events[sessionID]
	out := make([]events.Event, len(stored))
	copy(out, stored)
	return out, nil
}
