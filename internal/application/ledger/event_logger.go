package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/posledger/backend/internal/domain/ledger"
	"github.com/posledger/backend/internal/domain/shared"
)

// CreditEventLogger writes an audit line for every credit lifecycle event.
type CreditEventLogger struct {
	logger *zap.Logger
}

// NewCreditEventLogger creates a new CreditEventLogger
func NewCreditEventLogger(logger *zap.Logger) *CreditEventLogger {
	return &CreditEventLogger{logger: logger}
}

// EventTypes returns the credit lifecycle event types this handler consumes
func (h *CreditEventLogger) EventTypes() []string {
	return []string{"CreditSaleOpened", "CreditPaymentRecorded", "CreditSalePaid"}
}

// Handle logs the event with its business-relevant fields
func (h *CreditEventLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.CreditSaleOpenedEvent:
		h.logger.Info("audit: credit sale opened",
			zap.String("credit_sale_id", e.CreditSaleID.String()),
			zap.String("sale_id", e.SaleID.String()),
			zap.String("customer_phone", e.CustomerPhone),
			zap.String("total_amount", e.TotalAmount.String()))
	case *ledger.CreditPaymentRecordedEvent:
		h.logger.Info("audit: credit payment recorded",
			zap.String("credit_sale_id", e.CreditSaleID.String()),
			zap.String("payment_id", e.PaymentID.String()),
			zap.String("amount", e.PaymentAmount.String()),
			zap.String("method", e.Method.String()),
			zap.String("received_by_name", e.ReceivedByName),
			zap.String("balance", e.BalanceAmount.String()))
	case *ledger.CreditSalePaidEvent:
		h.logger.Info("audit: credit sale settled",
			zap.String("credit_sale_id", e.CreditSaleID.String()),
			zap.String("payment_id", e.PaymentID.String()),
			zap.String("customer_phone", e.CustomerPhone),
			zap.String("total_amount", e.TotalAmount.String()))
	default:
		h.logger.Debug("audit: unhandled event type",
			zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*CreditEventLogger)(nil)
