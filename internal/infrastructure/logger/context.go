package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

// Context keys for the request-scoped logger and its correlation fields.
const (
	LoggerKey     contextKey = "logger"
	RequestIDKey  contextKey = "request_id"
	BusinessIDKey contextKey = "business_id"
	UserIDKey     contextKey = "user_id"
)

// WithContext attaches the logger to the context.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, l)
}

// FromContext returns the context's logger, or a no-op logger when none
// was attached.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and returns the context plus a
// logger carrying it as a field.
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	l = l.With(zap.String("request_id", requestID))
	return WithContext(ctx, l), l
}

// WithBusinessID stores the business ID and returns the context plus a
// logger carrying it as a field.
func WithBusinessID(ctx context.Context, l *zap.Logger, businessID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, BusinessIDKey, businessID)
	l = l.With(zap.String("business_id", businessID))
	return WithContext(ctx, l), l
}

// WithUserID stores the user ID and returns the context plus a logger
// carrying it as a field.
func WithUserID(ctx context.Context, l *zap.Logger, userID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	l = l.With(zap.String("user_id", userID))
	return WithContext(ctx, l), l
}

// GetRequestID returns the request ID stored in the context, if any.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// GetBusinessID returns the business ID stored in the context, if any.
func GetBusinessID(ctx context.Context) string {
	id, _ := ctx.Value(BusinessIDKey).(string)
	return id
}

// GetUserID returns the user ID stored in the context, if any.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// WithTraceContext adds trace_id and span_id fields from the context's
// active span, so log lines correlate with traces. Without a valid span
// the logger is returned unchanged.
func WithTraceContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
