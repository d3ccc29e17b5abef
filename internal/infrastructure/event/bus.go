// Package event delivers ledger domain events to in-process
// subscribers. Publication is synchronous so a payment's projections
// are current by the time the recording request returns.
package event

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/posledger/backend/internal/domain/shared"
)

// InMemoryEventBus fans events out to the registered handlers. A
// failing or panicking handler is logged and skipped; it never fails
// the publish or starves other subscribers.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish delivers each event to its subscribers in registration order.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		for _, handler := range b.registry.GetHandlers(ev.EventType()) {
			if err := b.deliver(ctx, handler, ev); err != nil {
				b.logger.Error("Event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. With no explicit event types the
// handler's own EventTypes decide what it sees; an empty list there
// means everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("Event handler unsubscribed")
}

func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("Event bus started")
	return nil
}

func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.logger.Info("Event bus stopped")
	return nil
}

func (b *InMemoryEventBus) deliver(ctx context.Context, handler shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, ev)
}
