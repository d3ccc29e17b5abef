package ledger

import (
	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreditSaleOpenedEvent is raised when a sale is made on credit and the
// credit record is opened with balance = total
type CreditSaleOpenedEvent struct {
	shared.BaseDomainEvent
	CreditSaleID  uuid.UUID       `json:"credit_sale_id"`
	SaleID        uuid.UUID       `json:"sale_id"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *CreditSaleOpenedEvent) EventType() string {
	return "CreditSaleOpened"
}

// NewCreditSaleOpenedEvent creates a new CreditSaleOpenedEvent
func NewCreditSaleOpenedEvent(cs *CreditSale) *CreditSaleOpenedEvent {
	return &CreditSaleOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CreditSaleOpened", "CreditSale", cs.ID, cs.BusinessID),
		CreditSaleID:    cs.ID,
		SaleID:          cs.SaleID,
		CustomerPhone:   cs.CustomerPhone,
		CustomerName:    cs.CustomerName,
		TotalAmount:     cs.TotalAmount,
	}
}

// CreditPaymentRecordedEvent is raised when a partial payment is applied
// and a balance remains outstanding
type CreditPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	CreditSaleID   uuid.UUID       `json:"credit_sale_id"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	PaymentAmount  decimal.Decimal `json:"payment_amount"`
	Method         PaymentMethod   `json:"method"`
	ReceivedBy     uuid.UUID       `json:"received_by"`
	ReceivedByName string          `json:"received_by_name"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	BalanceAmount  decimal.Decimal `json:"balance_amount"`
}

// EventType returns the event type name
func (e *CreditPaymentRecordedEvent) EventType() string {
	return "CreditPaymentRecorded"
}

// NewCreditPaymentRecordedEvent creates a new CreditPaymentRecordedEvent
func NewCreditPaymentRecordedEvent(cs *CreditSale, payment *CreditPayment) *CreditPaymentRecordedEvent {
	return &CreditPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CreditPaymentRecorded", "CreditSale", cs.ID, cs.BusinessID),
		CreditSaleID:    cs.ID,
		PaymentID:       payment.ID,
		PaymentAmount:   payment.Amount,
		Method:          payment.Method,
		ReceivedBy:      payment.ReceivedBy,
		ReceivedByName:  payment.ReceivedByName,
		PaidAmount:      cs.PaidAmount,
		BalanceAmount:   cs.BalanceAmount,
	}
}

// CreditSalePaidEvent is raised when a payment settles the sale in full
type CreditSalePaidEvent struct {
	shared.BaseDomainEvent
	CreditSaleID  uuid.UUID       `json:"credit_sale_id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	CustomerPhone string          `json:"customer_phone"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

// EventType returns the event type name
func (e *CreditSalePaidEvent) EventType() string {
	return "CreditSalePaid"
}

// NewCreditSalePaidEvent creates a new CreditSalePaidEvent
func NewCreditSalePaidEvent(cs *CreditSale, payment *CreditPayment) *CreditSalePaidEvent {
	return &CreditSalePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CreditSalePaid", "CreditSale", cs.ID, cs.BusinessID),
		CreditSaleID:    cs.ID,
		PaymentID:       payment.ID,
		PaymentAmount:   payment.Amount,
		CustomerPhone:   cs.CustomerPhone,
		TotalAmount:     cs.TotalAmount,
		PaidAmount:      cs.PaidAmount,
	}
}
