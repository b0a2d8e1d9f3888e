package bookingstore

import (
	"context"

	"booking-wizard/internal/domain/events"
)

// EventStore defines the interface for booking event storage
type EventStore interface {
	// SaveEvent persists an event to the store
	SaveEvent(ctx context.Context, event events.Event) error
	// LoadEvents loads all events for a given session
	LoadEvents(ctx context.Context, sessionID string) ([]events.Event, error)
}
