package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/ledger"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCreditPaymentRepository implements CreditPaymentRepository using GORM.
// Payment rows are append-only; the repository exposes no update or delete.
type GormCreditPaymentRepository struct {
	db *gorm.DB
}

// NewGormCreditPaymentRepository creates a new GormCreditPaymentRepository
func NewGormCreditPaymentRepository(db *gorm.DB) *GormCreditPaymentRepository {
	return &GormCreditPaymentRepository{db: db}
}

// Append inserts a new payment row
func (r *GormCreditPaymentRepository) Append(ctx context.Context, payment *ledger.CreditPayment) error {
	model := models.CreditPaymentModelFromDomain(payment)
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(model).Error
}

// ListBySale returns all payments for a sale, newest first
func (r *GormCreditPaymentRepository) ListBySale(ctx context.Context, creditSaleID uuid.UUID) ([]ledger.CreditPayment, error) {
	var paymentModels []models.CreditPaymentModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("credit_sale_id = ?", creditSaleID).
		Order("created_at DESC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]ledger.CreditPayment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// ListBySales returns payments for a set of sales keyed by sale ID.
// Sales without payments are absent from the map.
func (r *GormCreditPaymentRepository) ListBySales(ctx context.Context, creditSaleIDs []uuid.UUID) (map[uuid.UUID][]ledger.CreditPayment, error) {
	grouped := make(map[uuid.UUID][]ledger.CreditPayment)
	if len(creditSaleIDs) == 0 {
		return grouped, nil
	}

	var paymentModels []models.CreditPaymentModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("credit_sale_id IN ?", creditSaleIDs).
		Order("created_at DESC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	for _, model := range paymentModels {
		payment := model.ToDomain()
		grouped[payment.CreditSaleID] = append(grouped[payment.CreditSaleID], *payment)
	}
	return grouped, nil
}

// CountBySale counts payments recorded against a sale
func (r *GormCreditPaymentRepository) CountBySale(ctx context.Context, creditSaleID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.CreditPaymentModel{}).
		Where("credit_sale_id = ?", creditSaleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormCreditPaymentRepository implements CreditPaymentRepository
var _ ledger.CreditPaymentRepository = (*GormCreditPaymentRepository)(nil)
