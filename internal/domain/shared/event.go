package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to an aggregate. Aggregates
// record events in memory; the application layer publishes them after
// the transaction commits.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	BusinessID() uuid.UUID
}

// BaseDomainEvent carries the identity fields common to every event.
// Concrete events embed it and add their own payload.
type BaseDomainEvent struct {
	ID              uuid.UUID `json:"id"`
	Type            string    `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	AggID           uuid.UUID `json:"aggregate_id"`
	AggType         string    `json:"aggregate_type"`
	BusinessIDValue uuid.UUID `json:"business_id"`
}

// NewBaseDomainEvent stamps a fresh event ID and occurrence time.
func NewBaseDomainEvent(eventType, aggType string, aggID, businessID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:              uuid.New(),
		Type:            eventType,
		Timestamp:       time.Now(),
		AggID:           aggID,
		AggType:         aggType,
		BusinessIDValue: businessID,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string  { return e.AggType }
func (e *BaseDomainEvent) BusinessID() uuid.UUID  { return e.BusinessIDValue }
