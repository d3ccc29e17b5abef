// Package testutil holds test doubles shared by the integration suite.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/posledger/backend/internal/domain/shared"
)

// MockEventHandler records every event delivered to it. It stands in
// for audit-style subscribers in integration tests.
type MockEventHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
}

func NewMockEventHandler(eventTypes ...string) *MockEventHandler {
	return &MockEventHandler{types: eventTypes}
}

// EventTypes implements shared.EventHandler.
func (h *MockEventHandler) EventTypes() []string {
	return h.types
}

// Handle implements shared.EventHandler, recording the event.
func (h *MockEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of every recorded event.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// FailWith makes every subsequent Handle call return err.
func (h *MockEventHandler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// WaitForEventCount polls until the handler has seen at least count
// events, giving asynchronous dispatch time to drain.
func WaitForEventCount(t *testing.T, handler *MockEventHandler, count int, timeout time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if handler.HandledCount() >= count {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return handler.HandledCount() >= count
}
