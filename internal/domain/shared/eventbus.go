package shared

import "context"

// EventHandler consumes domain events. EventTypes lists the event
// types the handler wants; an empty slice subscribes it to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is the side the application services depend on. The
// ledger service publishes after its transaction commits so handlers
// never observe state that later rolls back.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus adds subscription management and lifecycle control on top
// of publishing. Subscribe without event types falls back to the
// handler's own EventTypes.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
