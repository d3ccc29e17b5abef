package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestWithContext_RoundTrip(t *testing.T) {
	l := zap.NewNop()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}

func TestFromContext_MissingLoggerIsNoop(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	// Safe to use
	l.Info("ignored")
}

func TestWithBusinessID_EnrichesLoggerAndContext(t *testing.T) {
	l, logs := newObservedLogger()

	ctx, enriched := WithBusinessID(context.Background(), l, "business-1")
	enriched.Info("sale opened")

	assert.Equal(t, "business-1", GetBusinessID(ctx))
	assert.Same(t, enriched, FromContext(ctx))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "business-1", entries[0].ContextMap()["business_id"])
}

func TestWithUserID_And_WithRequestID(t *testing.T) {
	l, logs := newObservedLogger()

	ctx, enriched := WithRequestID(context.Background(), l, "req-9")
	ctx, enriched = WithUserID(ctx, enriched, "cashier-4")
	enriched.Info("payment recorded")

	assert.Equal(t, "req-9", GetRequestID(ctx))
	assert.Equal(t, "cashier-4", GetUserID(ctx))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "cashier-4", fields["user_id"])
}

func TestGetters_EmptyWithoutValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetBusinessID(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestWithTraceContext_NoSpanLeavesLoggerUnchanged(t *testing.T) {
	l := zap.NewNop()
	assert.Same(t, l, WithTraceContext(context.Background(), l))
}
