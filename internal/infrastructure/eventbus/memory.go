package eventbus

import (
	"context"
	"fmt"
	"sync"

	"booking-wizard/internal/domain/events"
)

// InMemoryEventBus delivers events synchronously to in-process subscribers.
// Backs tests and single-node runs without a broker.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	running  bool
}

func NewInMemoryEventBus() *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]EventHandler),
		running:  true,
	}
}

func (b *InMemoryEventBus) Publish(ctx context.Context, topic string, event events.Event) error {
	b.mu.RLock()
	if !b.running {
		b.mu.RUnlock()
		return fmt.Errorf("event bus is closed")
	}
	handlers := make([]EventHandler, len(b.handlers[topic]))
	copy(handlers, b.handlers[topic])
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			return fmt.Errorf("handler failed for event %s: %w", event.Type(), err)
		}
	}
	return nil
}

func (b *InMemoryEventBus) Subscribe(ctx context.Context, topic string, handler EventHandler) error {
	return b.SubscribeWithGroupID(ctx, topic, "", handler)
}

func (b *InMemoryEventBus) SubscribeWithGroupID(ctx context.Context, topic, groupID string, handler EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}

func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
	return nil
}
