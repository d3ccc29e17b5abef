package telemetry_test

import (
	"context"
	"testing"

	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestMeter(t *testing.T) *telemetry.MeterProvider {
	t.Helper()
	logger := zaptest.NewLogger(t)

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(context.Background(), cfg, logger)
	require.NoError(t, err)
	return mp
}

func TestNewLedgerMetrics(t *testing.T) {
	mp := newTestMeter(t)

	lm, err := telemetry.NewLedgerMetrics(mp.Meter("test"), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, lm)
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	lm, err := telemetry.NewLedgerMetrics(nil, nil)
	assert.Nil(t, lm)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestLedgerMetrics_RecordPayment(t *testing.T) {
	mp := newTestMeter(t)
	ctx := context.Background()

	lm, err := telemetry.NewLedgerMetrics(mp.Meter("test"), zaptest.NewLogger(t))
	require.NoError(t, err)

	// Record payments with different methods; no-op meter accepts all
	lm.RecordPayment(ctx, "CASH", decimal.NewFromFloat(400.50))
	lm.RecordPayment(ctx, "MPESA", decimal.NewFromInt(600))
}

func TestLedgerMetrics_RecordOutstanding(t *testing.T) {
	mp := newTestMeter(t)
	ctx := context.Background()

	lm, err := telemetry.NewLedgerMetrics(mp.Meter("test"), zaptest.NewLogger(t))
	require.NoError(t, err)

	lm.RecordOutstanding(ctx, decimal.NewFromInt(1500))
	lm.RecordOutstanding(ctx, decimal.Zero)
}
