package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures query span enrichment. LogFullSQL keeps
// bind variables in span statements and must stay off outside local
// development.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DefaultDBTracingConfig returns the production defaults: tracing off,
// variables stripped, 200ms slow threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin layers ledger-aware span enrichment over otelgorm:
// rows affected, table name, error status and slow query events on
// every statement span.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the plugin; call RegisterOtelGorm to
// attach it to a connection.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type startTimeKey struct{}

// RegisterOtelGorm installs otelgorm plus the enrichment callbacks on db.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	// Enrichment callbacks are registered before the otelgorm plugin so
	// they run while the statement span is still open.
	before := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, startTimeKey{}, time.Now())
		}
	}
	if err := errors.Join(
		db.Callback().Create().Before("gorm:create").Register("ledger_trace:before_create", before),
		db.Callback().Query().Before("gorm:query").Register("ledger_trace:before_query", before),
		db.Callback().Update().Before("gorm:update").Register("ledger_trace:before_update", before),
		db.Callback().Delete().Before("gorm:delete").Register("ledger_trace:before_delete", before),
		db.Callback().Row().Before("gorm:row").Register("ledger_trace:before_row", before),
		db.Callback().Raw().Before("gorm:raw").Register("ledger_trace:before_raw", before),
		db.Callback().Create().After("gorm:create").Register("ledger_trace:after_create", p.enrichSpan),
		db.Callback().Query().After("gorm:query").Register("ledger_trace:after_query", p.enrichSpan),
		db.Callback().Update().After("gorm:update").Register("ledger_trace:after_update", p.enrichSpan),
		db.Callback().Delete().After("gorm:delete").Register("ledger_trace:after_delete", p.enrichSpan),
		db.Callback().Row().After("gorm:row").Register("ledger_trace:after_row", p.enrichSpan),
		db.Callback().Raw().After("gorm:raw").Register("ledger_trace:after_raw", p.enrichSpan),
	); err != nil {
		return err
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh))
	return nil
}

// enrichSpan runs after each statement and annotates the otelgorm span.
func (p *DBTracingPlugin) enrichSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	// Not-found is an expected answer for lookups, not a failure
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(startTimeKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()))
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds())))
		}
	}
}
