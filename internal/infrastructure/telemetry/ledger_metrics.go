package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LedgerMetrics provides business metrics for the credit ledger.
// It tracks payment activity and the outstanding credit position.
type LedgerMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	paymentTotal       *Counter
	paymentAmountTotal *Counter

	// Gauge metrics (point-in-time values)
	outstandingAmount *Gauge
}

// NewLedgerMetrics creates a new LedgerMetrics instance.
func NewLedgerMetrics(meter metric.Meter, logger *zap.Logger) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{
		meter:  meter,
		logger: logger,
	}

	var err error

	lm.paymentTotal, err = NewCounter(
		meter,
		"pos_credit_payment_total",
		"Total number of credit payments recorded",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	lm.paymentAmountTotal, err = NewCounter(
		meter,
		"pos_credit_payment_amount_total",
		"Total credit payment amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	lm.outstandingAmount, err = NewGauge(
		meter,
		"pos_credit_outstanding_amount",
		"Current outstanding credit balance in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	return lm, nil
}

// RecordPayment records a credit payment transaction.
// This should be called from the application layer after the payment commits.
func (lm *LedgerMetrics) RecordPayment(ctx context.Context, paymentMethod string, amount decimal.Decimal) {
	lm.paymentTotal.Inc(ctx,
		AttrPaymentMethod.String(paymentMethod),
	)

	// Convert to cents (multiply by 100)
	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	lm.paymentAmountTotal.Add(ctx, amountCents,
		AttrPaymentMethod.String(paymentMethod),
	)
}

// RecordOutstanding records the current outstanding credit balance.
// This is a gauge metric updated whenever the summary is recomputed.
func (lm *LedgerMetrics) RecordOutstanding(ctx context.Context, outstanding decimal.Decimal) {
	lm.outstandingAmount.Record(ctx, outstanding.Mul(decimal.NewFromInt(100)).IntPart())
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
