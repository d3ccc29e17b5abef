package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans emitted by the service's own code, as
// opposed to those from instrumentation libraries.
const TracerName = "posledger-backend"

// Span attribute keys used on ledger operation spans.
const (
	SpanAttrCreditSaleID  = "credit_sale_id"
	SpanAttrSaleID        = "sale_id"
	SpanAttrCustomerPhone = "customer_phone"
	SpanAttrPaymentMethod = "payment_method"
	SpanAttrAmount        = "amount"
)

// StartSpan opens an internal span named operation on the service
// tracer. The caller ends it and reports failures through
// RecordSpanError so they land on the span status.
func StartSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}
	if len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, operation, opts...)
}

// RecordSpanError records err on the span and flips its status to error.
func RecordSpanError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
