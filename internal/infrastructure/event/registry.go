package event

import (
	"slices"
	"sync"

	"github.com/posledger/backend/internal/domain/shared"
)

// HandlerRegistry maps event types to subscribed handlers. Handlers
// registered without event types are wildcards and see every event.
type HandlerRegistry struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{byType: make(map[string][]shared.EventHandler)}
}

// Register subscribes a handler to the given event types, or to all
// events when none are given.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.wildcard = append(r.wildcard, handler)
		return
	}
	for _, eventType := range eventTypes {
		r.byType[eventType] = append(r.byType[eventType], handler)
	}
}

// Unregister drops a handler from every subscription, wildcard included.
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop := func(h shared.EventHandler) bool { return h == handler }
	r.wildcard = slices.DeleteFunc(r.wildcard, drop)
	for eventType, handlers := range r.byType {
		remaining := slices.DeleteFunc(handlers, drop)
		if len(remaining) == 0 {
			delete(r.byType, eventType)
			continue
		}
		r.byType[eventType] = remaining
	}
}

// GetHandlers returns the handlers subscribed to eventType, wildcard
// subscribers last.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.byType[eventType]
	out := make([]shared.EventHandler, 0, len(matched)+len(r.wildcard))
	out = append(out, matched...)
	return append(out, r.wildcard...)
}
