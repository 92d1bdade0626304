// Package events delivers domain events to side-effect collaborators off the
// command path.
package events

import (
	"context"
	"errors"
	"sync"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// ErrBusClosed is returned by Publish after the bus stopped
var ErrBusClosed = errors.New("event bus closed")

// Bus is an in-process EventPublisher: Publish enqueues, one goroutine delivers
type Bus struct {
	log   logger.Logger
	queue chan domain.Event

	mu       sync.RWMutex
	handlers map[domain.EventType][]ports.EventHandler

	done chan struct{}
	once sync.Once
}

var _ ports.EventPublisher = (*Bus)(nil)

// NewBus creates a bus with a queue of bufferSize events
func NewBus(bufferSize int, log logger.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Bus{
		log:      log.WithFields(map[string]interface{}{"component": "events.bus"}),
		queue:    make(chan domain.Event, bufferSize),
		handlers: make(map[domain.EventType][]ports.EventHandler),
		done:     make(chan struct{}),
	}
}

// Subscribe registers a handler for one event type
func (b *Bus) Subscribe(eventType domain.EventType, handler ports.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish enqueues the event. It blocks only while the queue is full.
func (b *Bus) Publish(ctx context.Context, event domain.Event) error {
	select {
	case <-b.done:
		return ErrBusClosed
	default:
	}

	select {
	case b.queue <- event:
		return nil
	case <-b.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run delivers events until ctx is canceled, then drains what is queued.
func (b *Bus) Run(ctx context.Context) {
	defer b.once.Do(func() { close(b.done) })

	for {
		select {
		case event := <-b.queue:
			b.deliver(ctx, event)
		case <-ctx.Done():
			b.drain()
			return
		}
	}
}

func (b *Bus) drain() {
	for {
		select {
		case event := <-b.queue:
			// Handlers get a fresh context: the run context is already done.
			b.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (b *Bus) deliver(ctx context.Context, event domain.Event) {
	b.mu.RLock()
	handlers := append([]ports.EventHandler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	fields := map[string]interface{}{
		"event_id":   event.ID,
		"event_type": string(event.Type),
		"subject_id": event.SubjectID,
	}
	if len(handlers) == 0 {
		b.log.Debug(ctx, "event has no subscribers", fields)
		return
	}

	for _, h := range handlers {
		b.safeHandle(ctx, h, event, fields)
	}
}

func (b *Bus) safeHandle(ctx context.Context, h ports.EventHandler, event domain.Event, fields map[string]interface{}) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error(ctx, "event handler panicked", domain.Internal("event handler panic", nil), fields)
		}
	}()
	if err := h(ctx, event); err != nil {
		b.log.Error(ctx, "event handler failed", err, fields)
	}
}
