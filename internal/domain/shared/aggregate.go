// Package shared holds the building blocks the ledger aggregates are
// assembled from: identity and timestamps, optimistic-lock versioning,
// domain events, and the error types services translate to HTTP.
package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps. Aggregates embed it
// through BaseAggregateRoot.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BaseAggregateRoot adds optimistic-lock versioning and in-memory
// event recording on top of BaseEntity. Recorded events stay with the
// aggregate until the application layer publishes and clears them.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

// IncrementVersion bumps the version; repositories compare it against
// the stored row to detect concurrent writes.
func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent records an event for publication after the aggregate
// is persisted.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.domainEvents }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.domainEvents = nil }

// BusinessAggregateRoot scopes an aggregate to one business. Every
// ledger aggregate embeds it; queries must filter on BusinessID.
type BusinessAggregateRoot struct {
	BaseAggregateRoot
	BusinessID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid;index"`
}

// NewBusinessAggregateRoot initializes a business-scoped aggregate at
// version one with a fresh identity.
func NewBusinessAggregateRoot(businessID uuid.UUID) BusinessAggregateRoot {
	now := time.Now()
	return BusinessAggregateRoot{
		BaseAggregateRoot: BaseAggregateRoot{
			BaseEntity: BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			Version:    1,
		},
		BusinessID: businessID,
	}
}

// SetCreatedBy records which user created the aggregate.
func (b *BusinessAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	b.CreatedBy = &userID
}
