package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreditSaleFilter defines filtering options for credit sale queries.
// Nil fields are ignored; there are no implicit defaults beyond an
// always-true base predicate.
type CreditSaleFilter struct {
	shared.Filter
	BusinessID    *uuid.UUID    // Filter by business (store)
	CustomerPhone *string       // Filter by customer phone
	Status        *CreditStatus // Filter by derived settlement status
	SaleID        *uuid.UUID    // Filter by originating sale
}

// CreditSummary is the aggregate view over current credit sale rows.
// It is recomputed on every call; there is no stored aggregate.
type CreditSummary struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalCount       int64           `json:"total_count"`
	PendingCount     int64           `json:"pending_count"`
	PartialCount     int64           `json:"partial_count"`
	PaidCount        int64           `json:"paid_count"`
}

// CreditSaleRepository defines the interface for credit sale persistence
type CreditSaleRepository interface {
	// FindByID finds a credit sale by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CreditSale, error)

	// FindByIDForUpdate finds a credit sale by ID holding a row lock for
	// the duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*CreditSale, error)

	// FindBySale finds the credit sale opened for an originating sale
	FindBySale(ctx context.Context, saleID uuid.UUID) (*CreditSale, error)

	// FindAll finds credit sales matching the filter
	FindAll(ctx context.Context, filter CreditSaleFilter) ([]CreditSale, error)

	// Save creates or updates a credit sale
	Save(ctx context.Context, sale *CreditSale) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, sale *CreditSale) error

	// Count counts credit sales matching the filter
	Count(ctx context.Context, filter CreditSaleFilter) (int64, error)

	// CountByStatus counts credit sales in the given status
	CountByStatus(ctx context.Context, businessID *uuid.UUID, status CreditStatus) (int64, error)

	// SumOutstanding calculates the total outstanding balance
	SumOutstanding(ctx context.Context, businessID *uuid.UUID) (decimal.Decimal, error)

	// ExistsBySale checks if a credit sale was already opened for the sale
	ExistsBySale(ctx context.Context, saleID uuid.UUID) (bool, error)
}

// CreditPaymentRepository defines the interface for the append-only
// payment ledger. There is deliberately no update or delete.
type CreditPaymentRepository interface {
	// Append inserts a new payment row
	Append(ctx context.Context, payment *CreditPayment) error

	// ListBySale returns all payments for a sale, newest first
	ListBySale(ctx context.Context, creditSaleID uuid.UUID) ([]CreditPayment, error)

	// ListBySales returns payments for a set of sales keyed by sale ID,
	// each list newest first
	ListBySales(ctx context.Context, creditSaleIDs []uuid.UUID) (map[uuid.UUID][]CreditPayment, error)

	// CountBySale counts payments recorded against a sale
	CountBySale(ctx context.Context, creditSaleID uuid.UUID) (int64, error)
}

// TransactionManager runs a function inside a single database transaction.
// Repositories resolve the transactional handle from the context, so the
// read-check-insert-update sequence of a payment commits or rolls back as
// one unit.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
