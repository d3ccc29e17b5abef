package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreditStatus represents the settlement status of a credit sale
type CreditStatus string

const (
	CreditStatusPending CreditStatus = "PENDING" // No payment received yet
	CreditStatusPartial CreditStatus = "PARTIAL" // Partially paid, 0 < paid < total
	CreditStatusPaid    CreditStatus = "PAID"    // Fully settled, balance = 0
)

// IsValid checks if the status is a valid CreditStatus
func (s CreditStatus) IsValid() bool {
	switch s {
	case CreditStatusPending, CreditStatusPartial, CreditStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of CreditStatus
func (s CreditStatus) String() string {
	return string(s)
}

// IsSettled returns true if no further payments can be applied
func (s CreditStatus) IsSettled() bool {
	return s == CreditStatusPaid
}

// DeriveStatus computes the settlement status from the amounts.
// It is the single authority for the status field: every write path goes
// through it, so status can never drift from (total, paid).
func DeriveStatus(totalAmount, paidAmount decimal.Decimal) CreditStatus {
	balance := totalAmount.Sub(paidAmount)
	if balance.LessThanOrEqual(decimal.Zero) {
		return CreditStatusPaid
	}
	if paidAmount.GreaterThan(decimal.Zero) {
		return CreditStatusPartial
	}
	return CreditStatusPending
}

// PaymentMethod represents how a payment was received
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodMobile PaymentMethod = "MOBILE"
	PaymentMethodCard   PaymentMethod = "CARD"
)

// DefaultPaymentMethod is used when the caller does not specify one
const DefaultPaymentMethod = PaymentMethodCash

// NormalizePaymentMethod uppercases the given tag, defaulting to CASH when empty.
// Unknown tags are stored as given after normalization; the method set is open.
func NormalizePaymentMethod(method string) PaymentMethod {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return DefaultPaymentMethod
	}
	return PaymentMethod(method)
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// ReceivedByUnknown is the operator-name sentinel recorded when identity
// resolution fails; payment recording never blocks on the lookup.
const ReceivedByUnknown = "Unknown"

// CreditPayment is an append-only ledger entry for a payment received
// against a credit sale. Rows are never mutated or deleted once written;
// the operator name is a snapshot taken at write time for audit stability.
type CreditPayment struct {
	ID             uuid.UUID
	CreditSaleID   uuid.UUID
	Amount         decimal.Decimal
	Method         PaymentMethod
	ReceivedBy     uuid.UUID
	ReceivedByName string
	Notes          string
	CreatedAt      time.Time
}

// NewCreditPayment creates a new payment entry for the given sale
func NewCreditPayment(creditSaleID uuid.UUID, amount valueobject.Money, method PaymentMethod, receivedBy uuid.UUID, receivedByName, notes string) *CreditPayment {
	if receivedByName == "" {
		receivedByName = ReceivedByUnknown
	}
	return &CreditPayment{
		ID:             uuid.New(),
		CreditSaleID:   creditSaleID,
		Amount:         amount.Amount(),
		Method:         method,
		ReceivedBy:     receivedBy,
		ReceivedByName: receivedByName,
		Notes:          notes,
		CreatedAt:      time.Now(),
	}
}

// CreditSale is the aggregate root for a sale made on credit.
// It tracks the amount owed by a customer and reconciles incremental
// payments against it. Sales are never deleted (financial record retention).
type CreditSale struct {
	shared.BusinessAggregateRoot
	SaleID        uuid.UUID       `json:"sale_id"` // Originating sale, owned by the sales component
	CustomerPhone string          `json:"customer_phone"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`   // Original amount owed, immutable
	PaidAmount    decimal.Decimal `json:"paid_amount"`    // Sum of all payments, monotonically non-decreasing
	BalanceAmount decimal.Decimal `json:"balance_amount"` // total - paid, never negative
	Status        CreditStatus    `json:"status"`
}

// NewCreditSale opens a credit record for a sale with balance = total
func NewCreditSale(
	businessID uuid.UUID,
	saleID uuid.UUID,
	customerPhone string,
	customerName string,
	totalAmount valueobject.Money,
) (*CreditSale, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	customerPhone = strings.TrimSpace(customerPhone)
	if customerPhone == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_PHONE", "Customer phone cannot be empty")
	}
	if totalAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}

	cs := &CreditSale{
		BusinessAggregateRoot: shared.NewBusinessAggregateRoot(businessID),
		SaleID:                saleID,
		CustomerPhone:         customerPhone,
		CustomerName:          strings.TrimSpace(customerName),
		TotalAmount:           totalAmount.Amount(),
		PaidAmount:            decimal.Zero,
		BalanceAmount:         totalAmount.Amount(),
		Status:                CreditStatusPending,
	}

	cs.AddDomainEvent(NewCreditSaleOpenedEvent(cs))

	return cs, nil
}

// RecordPayment applies a payment against the outstanding balance and
// returns the resulting ledger entry. A payment exceeding the balance is
// rejected outright, never clamped; equality pays the sale off.
func (cs *CreditSale) RecordPayment(amount valueobject.Money, method PaymentMethod, receivedBy uuid.UUID, receivedByName, notes string) (*CreditPayment, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(cs.BalanceAmount) {
		return nil, shared.NewDomainError("EXCEEDS_BALANCE", fmt.Sprintf("Payment amount %.2f exceeds outstanding balance %.2f", amount.Amount().InexactFloat64(), cs.BalanceAmount.InexactFloat64()))
	}

	payment := NewCreditPayment(cs.ID, amount, method, receivedBy, receivedByName, notes)

	cs.PaidAmount = cs.PaidAmount.Add(amount.Amount())
	cs.BalanceAmount = cs.TotalAmount.Sub(cs.PaidAmount)
	cs.Status = DeriveStatus(cs.TotalAmount, cs.PaidAmount)

	if cs.Status == CreditStatusPaid {
		cs.AddDomainEvent(NewCreditSalePaidEvent(cs, payment))
	} else {
		cs.AddDomainEvent(NewCreditPaymentRecordedEvent(cs, payment))
	}

	cs.UpdatedAt = time.Now()
	cs.IncrementVersion()

	return payment, nil
}

// IsSettled returns true when the balance has been fully paid
func (cs *CreditSale) IsSettled() bool {
	return cs.Status.IsSettled()
}

// Validate checks the aggregate's accounting invariants
func (cs *CreditSale) Validate() error {
	if cs.BalanceAmount.IsNegative() {
		return shared.NewDomainError("INVALID_STATE", "Balance amount cannot be negative")
	}
	if !cs.PaidAmount.Add(cs.BalanceAmount).Equal(cs.TotalAmount) {
		return shared.NewDomainError("INVALID_STATE", "Paid and balance amounts do not reconcile with total")
	}
	if cs.Status != DeriveStatus(cs.TotalAmount, cs.PaidAmount) {
		return shared.NewDomainError("INVALID_STATE", "Status is inconsistent with amounts")
	}
	return nil
}
