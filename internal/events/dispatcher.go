package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher publishes domain events to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
	// SubscribeAll registers a handler that receives every event type.
	SubscribeAll(handler EventHandler)
}

type inMemoryDispatcher struct {
	mu       sync.RWMutex
	byType   map[EventType][]EventHandler
	wildcard []EventHandler
	now      func() time.Time
}

// NewInMemoryDispatcher creates a synchronous, in-process dispatcher.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		byType: make(map[EventType][]EventHandler),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Publish stamps the event with an id and timestamp when missing, then runs typed handlers
// followed by wildcard handlers. Every handler runs; the first failure is returned.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now()
	}

	d.mu.RLock()
	handlers := make([]EventHandler, 0, len(d.byType[event.Type])+len(d.wildcard))
	handlers = append(handlers, d.byType[event.Type]...)
	handlers = append(handlers, d.wildcard...)
	d.mu.RUnlock()

	var firstErr error
	for _, handle := range handlers {
		if err := handle(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	d.byType[eventType] = append(d.byType[eventType], handler)
	d.mu.Unlock()
}

func (d *inMemoryDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	d.wildcard = append(d.wildcard, handler)
	d.mu.Unlock()
}
