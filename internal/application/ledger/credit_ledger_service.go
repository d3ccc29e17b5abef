package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/identity"
	"github.com/posledger/backend/internal/domain/ledger"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/shared/valueobject"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CreditLedgerService provides application-level credit ledger operations.
// All mutating operations run inside a single database transaction; the
// relational store is the only source of truth and the only point of
// mutation serialization.
type CreditLedgerService struct {
	sales    ledger.CreditSaleRepository
	payments ledger.CreditPaymentRepository
	names    identity.NameResolver
	tx       ledger.TransactionManager
	metrics  *telemetry.LedgerMetrics
	events   shared.EventPublisher
	logger   *zap.Logger
}

// CreditLedgerServiceOption is a functional option for configuring CreditLedgerService
type CreditLedgerServiceOption func(*CreditLedgerService)

// WithLedgerMetrics wires payment metrics recording into the service
func WithLedgerMetrics(metrics *telemetry.LedgerMetrics) CreditLedgerServiceOption {
	return func(s *CreditLedgerService) {
		s.metrics = metrics
	}
}

// WithEventPublisher wires domain event publishing into the service.
// Events are published after the enclosing transaction commits.
func WithEventPublisher(events shared.EventPublisher) CreditLedgerServiceOption {
	return func(s *CreditLedgerService) {
		s.events = events
	}
}

// NewCreditLedgerService creates a new CreditLedgerService
func NewCreditLedgerService(
	sales ledger.CreditSaleRepository,
	payments ledger.CreditPaymentRepository,
	names identity.NameResolver,
	tx ledger.TransactionManager,
	logger *zap.Logger,
	opts ...CreditLedgerServiceOption,
) *CreditLedgerService {
	s := &CreditLedgerService{
		sales:    sales,
		payments: payments,
		names:    names,
		tx:       tx,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreditPaymentResponse represents a payment ledger entry in API responses
type CreditPaymentResponse struct {
	ID             uuid.UUID       `json:"id"`
	CreditSaleID   uuid.UUID       `json:"credit_sale_id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"payment_method"`
	ReceivedBy     uuid.UUID       `json:"received_by"`
	ReceivedByName string          `json:"received_by_name"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CreditSaleResponse represents a credit sale with its payment history
type CreditSaleResponse struct {
	ID            uuid.UUID               `json:"id"`
	BusinessID    uuid.UUID               `json:"business_id"`
	SaleID        uuid.UUID               `json:"sale_id"`
	CustomerPhone string                  `json:"customer_phone"`
	CustomerName  string                  `json:"customer_name,omitempty"`
	TotalAmount   decimal.Decimal         `json:"total_amount"`
	PaidAmount    decimal.Decimal         `json:"paid_amount"`
	BalanceAmount decimal.Decimal         `json:"balance_amount"`
	Status        string                  `json:"status"`
	Payments      []CreditPaymentResponse `json:"payments"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	Version       int                     `json:"version"`
}

// CreditSummaryResponse is the aggregate view over current credit sales
type CreditSummaryResponse struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalCount       int64           `json:"total_count"`
	PendingCount     int64           `json:"pending_count"`
	PartialCount     int64           `json:"partial_count"`
	PaidCount        int64           `json:"paid_count"`
}

// OpenCreditSaleInput carries the fields for opening a credit record
type OpenCreditSaleInput struct {
	BusinessID    uuid.UUID
	SaleID        uuid.UUID
	CustomerPhone string
	CustomerName  string
	TotalAmount   decimal.Decimal
	OpenedBy      uuid.UUID
}

// RecordPaymentInput carries the fields for recording a payment
type RecordPaymentInput struct {
	CreditSaleID  uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod string
	OperatorID    uuid.UUID
	Notes         string
}

// ListCreditSalesFilter defines the list query dimensions; empty fields are ignored
type ListCreditSalesFilter struct {
	Status        string
	CustomerPhone string
	BusinessID    *uuid.UUID
	Page          int
	PageSize      int
}

// OpenCreditSale opens a credit record for a sale with balance = total
func (s *CreditLedgerService) OpenCreditSale(ctx context.Context, input OpenCreditSaleInput) (*CreditSaleResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "credit_ledger.open",
		attribute.String(telemetry.SpanAttrSaleID, input.SaleID.String()),
		attribute.String(telemetry.SpanAttrCustomerPhone, input.CustomerPhone))
	defer span.End()

	exists, err := s.sales.ExistsBySale(ctx, input.SaleID)
	if err != nil {
		s.logger.Error("Failed to check for existing credit sale",
			zap.String("sale_id", input.SaleID.String()),
			zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A credit record already exists for this sale")
	}

	total, err := valueobject.NewMoney(input.TotalAmount, valueobject.DefaultCurrency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}

	sale, err := ledger.NewCreditSale(input.BusinessID, input.SaleID, input.CustomerPhone, input.CustomerName, total)
	if err != nil {
		return nil, err
	}
	if input.OpenedBy != uuid.Nil {
		sale.SetCreatedBy(input.OpenedBy)
	}

	if err := s.sales.Save(ctx, sale); err != nil {
		// A concurrent open for the same sale wins the unique index race
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A credit record already exists for this sale")
		}
		telemetry.RecordSpanError(span, err)
		s.logger.Error("Failed to save credit sale",
			zap.String("sale_id", input.SaleID.String()),
			zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, sale)

	s.logger.Info("Credit sale opened",
		zap.String("credit_sale_id", sale.ID.String()),
		zap.String("customer_phone", sale.CustomerPhone),
		zap.String("total_amount", sale.TotalAmount.String()))

	return toCreditSaleResponse(sale, nil), nil
}

// RecordPayment applies a payment to a credit sale as a single atomic unit:
// lock the sale row, validate the amount against the live balance, append
// the payment, update the sale. Either both rows become visible or neither.
func (s *CreditLedgerService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*CreditSaleResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "credit_ledger.record_payment",
		attribute.String(telemetry.SpanAttrCreditSaleID, input.CreditSaleID.String()),
		attribute.String(telemetry.SpanAttrAmount, input.Amount.String()))
	defer span.End()

	// Reject malformed amounts before any store access
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if input.CreditSaleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Credit sale ID is required")
	}

	amount, err := valueobject.NewMoney(input.Amount, valueobject.DefaultCurrency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}
	method := ledger.NormalizePaymentMethod(input.PaymentMethod)
	operatorName := s.resolveOperatorName(ctx, input.OperatorID)

	var response *CreditSaleResponse
	var sale *ledger.CreditSale
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		sale, err = s.sales.FindByIDForUpdate(txCtx, input.CreditSaleID)
		if err != nil {
			return err
		}

		payment, err := sale.RecordPayment(amount, method, input.OperatorID, operatorName, input.Notes)
		if err != nil {
			return err
		}

		if err := s.payments.Append(txCtx, payment); err != nil {
			return err
		}
		if err := s.sales.SaveWithLock(txCtx, sale); err != nil {
			return err
		}

		history, err := s.payments.ListBySale(txCtx, sale.ID)
		if err != nil {
			return err
		}
		response = toCreditSaleResponse(sale, history)
		return nil
	})
	if err != nil {
		telemetry.RecordSpanError(span, err)
		s.logger.Warn("Payment recording failed",
			zap.String("credit_sale_id", input.CreditSaleID.String()),
			zap.String("amount", input.Amount.String()),
			zap.String("operator_id", input.OperatorID.String()),
			zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, sale)

	if s.metrics != nil {
		s.metrics.RecordPayment(ctx, method.String(), input.Amount)
	}

	s.logger.Info("Payment recorded",
		zap.String("credit_sale_id", response.ID.String()),
		zap.String("amount", input.Amount.String()),
		zap.String("method", method.String()),
		zap.String("status", response.Status))

	return response, nil
}

// GetCreditSale returns a credit sale with its payment history, newest first
func (s *CreditLedgerService) GetCreditSale(ctx context.Context, id uuid.UUID) (*CreditSaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.payments.ListBySale(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	return toCreditSaleResponse(sale, history), nil
}

func toRepoFilter(filter ListCreditSalesFilter) (ledger.CreditSaleFilter, error) {
	repoFilter := ledger.CreditSaleFilter{Filter: shared.DefaultFilter()}
	repoFilter.BusinessID = filter.BusinessID
	if filter.Page > 0 {
		repoFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		repoFilter.PageSize = filter.PageSize
	}
	if filter.CustomerPhone != "" {
		phone := filter.CustomerPhone
		repoFilter.CustomerPhone = &phone
	}
	if filter.Status != "" {
		status := ledger.CreditStatus(filter.Status)
		if !status.IsValid() {
			return repoFilter, shared.NewDomainError("INVALID_STATUS", "Status must be one of PENDING, PARTIAL, PAID")
		}
		repoFilter.Status = &status
	}
	return repoFilter, nil
}

// ListCreditSales returns the matching page of credit sales, each annotated
// with its payment list, together with the total match count across all
// pages. Unfiltered dimensions are ignored.
func (s *CreditLedgerService) ListCreditSales(ctx context.Context, filter ListCreditSalesFilter) ([]CreditSaleResponse, int64, error) {
	repoFilter, err := toRepoFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	sales, err := s.sales.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.sales.Count(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
	}
	paymentsBySale, err := s.payments.ListBySales(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CreditSaleResponse, len(sales))
	for i := range sales {
		responses[i] = *toCreditSaleResponse(&sales[i], paymentsBySale[sales[i].ID])
	}
	return responses, total, nil
}

// Summarize recomputes the aggregate credit position from current rows.
// There is no stored aggregate and no cache.
func (s *CreditLedgerService) Summarize(ctx context.Context, businessID *uuid.UUID) (*CreditSummaryResponse, error) {
	outstanding, err := s.sales.SumOutstanding(ctx, businessID)
	if err != nil {
		return nil, err
	}

	filter := ledger.CreditSaleFilter{Filter: shared.DefaultFilter(), BusinessID: businessID}
	total, err := s.sales.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &CreditSummaryResponse{
		TotalOutstanding: outstanding,
		TotalCount:       total,
	}
	for _, sc := range []struct {
		status ledger.CreditStatus
		dest   *int64
	}{
		{ledger.CreditStatusPending, &summary.PendingCount},
		{ledger.CreditStatusPartial, &summary.PartialCount},
		{ledger.CreditStatusPaid, &summary.PaidCount},
	} {
		count, err := s.sales.CountByStatus(ctx, businessID, sc.status)
		if err != nil {
			return nil, err
		}
		*sc.dest = count
	}

	if s.metrics != nil {
		s.metrics.RecordOutstanding(ctx, outstanding)
	}

	return summary, nil
}

// publishEvents drains the aggregate's pending domain events into the
// publisher. Publishing happens after commit and never fails the operation.
func (s *CreditLedgerService) publishEvents(ctx context.Context, sale *ledger.CreditSale) {
	events := sale.GetDomainEvents()
	sale.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.String("credit_sale_id", sale.ID.String()),
			zap.Error(err))
	}
}

// resolveOperatorName resolves the operator display name, degrading to
// the sentinel on any failure; payments never block on identity lookup.
func (s *CreditLedgerService) resolveOperatorName(ctx context.Context, operatorID uuid.UUID) string {
	if operatorID == uuid.Nil {
		return ledger.ReceivedByUnknown
	}
	name, err := s.names.ResolveName(ctx, operatorID)
	if err != nil || name == "" {
		s.logger.Warn("Operator name resolution failed, using sentinel",
			zap.String("operator_id", operatorID.String()),
			zap.Error(err))
		return ledger.ReceivedByUnknown
	}
	return name
}

func toCreditSaleResponse(sale *ledger.CreditSale, payments []ledger.CreditPayment) *CreditSaleResponse {
	paymentResponses := make([]CreditPaymentResponse, len(payments))
	for i, p := range payments {
		paymentResponses[i] = CreditPaymentResponse{
			ID:             p.ID,
			CreditSaleID:   p.CreditSaleID,
			Amount:         p.Amount,
			PaymentMethod:  p.Method.String(),
			ReceivedBy:     p.ReceivedBy,
			ReceivedByName: p.ReceivedByName,
			Notes:          p.Notes,
			CreatedAt:      p.CreatedAt,
		}
	}
	return &CreditSaleResponse{
		ID:            sale.ID,
		BusinessID:    sale.BusinessID,
		SaleID:        sale.SaleID,
		CustomerPhone: sale.CustomerPhone,
		CustomerName:  sale.CustomerName,
		TotalAmount:   sale.TotalAmount,
		PaidAmount:    sale.PaidAmount,
		BalanceAmount: sale.BalanceAmount,
		Status:        sale.Status.String(),
		Payments:      paymentResponses,
		CreatedAt:     sale.CreatedAt,
		UpdatedAt:     sale.UpdatedAt,
		Version:       sale.GetVersion(),
	}
}
