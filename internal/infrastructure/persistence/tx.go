package persistence

import (
	"context"

	"github.com/posledger/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

type txContextKey struct{}

// GormTransactionManager implements ledger.TransactionManager using GORM
// transactions. The open transaction travels in the context so that
// repositories called inside the function automatically join it.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager.
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTransaction runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// Nested calls join the surrounding transaction instead of opening a new one.
func (m *GormTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// txFromContext returns the transaction stored in the context, or nil.
func txFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// dbFromContext returns the context's transaction if one is open,
// otherwise the fallback connection bound to the context.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}

// Ensure GormTransactionManager implements ledger.TransactionManager
var _ ledger.TransactionManager = (*GormTransactionManager)(nil)
