package dlq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"booking-wizard/internal/domain/events"
)

// DLQEvent wraps an event whose processing was abandoned after retries,
// typically a payment request the gateway kept rejecting.
type DLQEvent struct {
	DLQEventID     string
	OriginalEvent  events.Event
	FailureReason  string
	FailureCount   int
	FirstFailureAt time.Time
	LastAttemptAt  time.Time
	OriginalTopic  string
}

type DLQHandler func(ctx context.Context, event DLQEvent) error

// DLQ receives events whose processing was abandoned
type DLQ interface {
	Publish(ctx context.Context, originalEvent events.Event, failureReason, originalTopic string, failureCount int) error
	Subscribe(ctx context.Context, handler DLQHandler) error
	Events() []DLQEvent
}

type InMemoryDLQ struct {
	mu        sync.RWMutex
	events    []DLQEvent
	consumers []DLQHandler
	running   bool
	maxEvents int
}

func NewInMemoryDLQ() *InMemoryDLQ {
	return &InMemoryDLQ{
		events:    make([]DLQEvent, 0),
		consumers: make([]DLQHandler, 0),
		running:   true,
		maxEvents: 10000,
	}
}

func (d *InMemoryDLQ) Publish(ctx context.Context, originalEvent events.Event, failureReason, originalTopic string, failureCount int) error {
	d.mu.RLock()
	if !d.running {
		d.mu.RUnlock()
		return fmt.Errorf("DLQ is closed")
	}
	d.mu.RUnlock()

	dlqEvent := DLQEvent{
		DLQEventID:     fmt.Sprintf("dlq_%d_%s", time.Now().UnixNano(), originalEvent.ID()),
		OriginalEvent:  originalEvent,
		FailureReason:  failureReason,
		FailureCount:   failureCount,
		FirstFailureAt: time.Now(),
		LastAttemptAt:  time.Now(),
		OriginalTopic:  originalTopic,
	}

	d.mu.Lock()
	if len(d.events) >= d.maxEvents {
		d.events = d.events[1000:]
	}
	d.events = append(d.events, dlqEvent)
	consumers := make([]DLQHandler, len(d.consumers))
	copy(consumers, d.consumers)
	d.mu.Unlock()

	for _, handler := range consumers {
		if err := handler(ctx, dlqEvent); err != nil {
			return fmt.Errorf("DLQ handler failed for %s: %w", dlqEvent.DLQEventID, err)
		}
	}

	return nil
}

func (d *InMemoryDLQ) Subscribe(ctx context.Context, handler DLQHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.consumers = append(d.consumers, handler)
	return nil
}

// Events returns a copy of the dead-lettered events, newest last.
func (d *InMemoryDLQ) Events() []DLQEvent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]DLQEvent, len(d.events))
	copy(out, d.events)
	return out
}
