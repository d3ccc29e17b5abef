package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/ledger"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreditSaleModel is the persistence model for the CreditSale aggregate root.
type CreditSaleModel struct {
	BusinessAggregateModel
	SaleID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_credit_sales_sale_id"`
	CustomerPhone string              `gorm:"type:varchar(32);not null;index"`
	CustomerName  string              `gorm:"type:varchar(200)"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	PaidAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	BalanceAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;index"`
	Status        ledger.CreditStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
}

// TableName returns the table name for GORM
func (CreditSaleModel) TableName() string {
	return "credit_sales"
}

// ToDomain converts the persistence model to a domain CreditSale entity.
func (m *CreditSaleModel) ToDomain() *ledger.CreditSale {
	return &ledger.CreditSale{
		BusinessAggregateRoot: shared.BusinessAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			BusinessID: m.BusinessID,
			CreatedBy:  m.CreatedBy,
		},
		SaleID:        m.SaleID,
		CustomerPhone: m.CustomerPhone,
		CustomerName:  m.CustomerName,
		TotalAmount:   m.TotalAmount,
		PaidAmount:    m.PaidAmount,
		BalanceAmount: m.BalanceAmount,
		Status:        m.Status,
	}
}

// FromDomain populates the persistence model from a domain CreditSale entity.
func (m *CreditSaleModel) FromDomain(cs *ledger.CreditSale) {
	m.FromDomainBusinessAggregateRoot(cs.BusinessAggregateRoot)
	m.SaleID = cs.SaleID
	m.CustomerPhone = cs.CustomerPhone
	m.CustomerName = cs.CustomerName
	m.TotalAmount = cs.TotalAmount
	m.PaidAmount = cs.PaidAmount
	m.BalanceAmount = cs.BalanceAmount
	m.Status = cs.Status
}

// CreditSaleModelFromDomain creates a new persistence model from a domain CreditSale.
func CreditSaleModelFromDomain(cs *ledger.CreditSale) *CreditSaleModel {
	m := &CreditSaleModel{}
	m.FromDomain(cs)
	return m
}

// CreditPaymentModel is the persistence model for a payment ledger entry.
// Rows are append-only; there is no UpdatedAt and no soft delete.
type CreditPaymentModel struct {
	ID             uuid.UUID            `gorm:"type:uuid;primary_key"`
	CreditSaleID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Method         ledger.PaymentMethod `gorm:"type:varchar(30);not null;default:'CASH'"`
	ReceivedBy     uuid.UUID            `gorm:"type:uuid;index"`
	ReceivedByName string               `gorm:"type:varchar(100);not null"`
	Notes          string               `gorm:"type:text"`
	CreatedAt      time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CreditPaymentModel) TableName() string {
	return "credit_payments"
}

// ToDomain converts the persistence model to a domain CreditPayment entry.
func (m *CreditPaymentModel) ToDomain() *ledger.CreditPayment {
	return &ledger.CreditPayment{
		ID:             m.ID,
		CreditSaleID:   m.CreditSaleID,
		Amount:         m.Amount,
		Method:         m.Method,
		ReceivedBy:     m.ReceivedBy,
		ReceivedByName: m.ReceivedByName,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain CreditPayment entry.
func (m *CreditPaymentModel) FromDomain(p *ledger.CreditPayment) {
	m.ID = p.ID
	m.CreditSaleID = p.CreditSaleID
	m.Amount = p.Amount
	m.Method = p.Method
	m.ReceivedBy = p.ReceivedBy
	m.ReceivedByName = p.ReceivedByName
	m.Notes = p.Notes
	m.CreatedAt = p.CreatedAt
}

// CreditPaymentModelFromDomain creates a new persistence model from a domain CreditPayment.
func CreditPaymentModelFromDomain(p *ledger.CreditPayment) *CreditPaymentModel {
	m := &CreditPaymentModel{}
	m.FromDomain(p)
	return m
}
