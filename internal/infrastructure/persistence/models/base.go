// Package models holds the GORM row types and their conversions to and
// from the domain aggregates. Domain types never carry GORM concerns
// beyond the embedded base structs; the row types own column mapping.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/posledger/backend/internal/domain/shared"
)

// BaseModel is the column set every row type shares.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the optimistic-lock version column.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// BusinessAggregateModel adds the business scope and creator columns
// shared by every business-owned aggregate.
type BusinessAggregateModel struct {
	AggregateModel
	BusinessID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid;index"`
}

// FromDomainBusinessAggregateRoot copies the aggregate base fields
// into the row columns.
func (m *BusinessAggregateModel) FromDomainBusinessAggregateRoot(b shared.BusinessAggregateRoot) {
	m.ID = b.ID
	m.CreatedAt = b.CreatedAt
	m.UpdatedAt = b.UpdatedAt
	m.Version = b.Version
	m.BusinessID = b.BusinessID
	m.CreatedBy = b.CreatedBy
}

// PopulateBusinessAggregateRoot is the inverse direction, filling a
// domain aggregate base from the row columns.
func (m *BusinessAggregateModel) PopulateBusinessAggregateRoot(b *shared.BusinessAggregateRoot) {
	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	b.Version = m.Version
	b.BusinessID = m.BusinessID
	b.CreatedBy = m.CreatedBy
}
