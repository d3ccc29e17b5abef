package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/ledger"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// openStatuses covers every status with a non-zero balance.
var openStatuses = []ledger.CreditStatus{ledger.CreditStatusPending, ledger.CreditStatusPartial}

// GormCreditSaleRepository implements CreditSaleRepository using GORM
type GormCreditSaleRepository struct {
	db *gorm.DB
}

// NewGormCreditSaleRepository creates a new GormCreditSaleRepository
func NewGormCreditSaleRepository(db *gorm.DB) *GormCreditSaleRepository {
	return &GormCreditSaleRepository{db: db}
}

// FindByID finds a credit sale by its ID
func (r *GormCreditSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.CreditSale, error) {
	var model models.CreditSaleModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a credit sale by ID with a row lock. It must be
// called inside a transaction opened by the TransactionManager; the lock is
// released when that transaction ends.
func (r *GormCreditSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.CreditSale, error) {
	var model models.CreditSaleModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySale finds the credit sale opened for an originating sale
func (r *GormCreditSaleRepository) FindBySale(ctx context.Context, saleID uuid.UUID) (*ledger.CreditSale, error) {
	var model models.CreditSaleModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("sale_id = ?", saleID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds credit sales matching the filter
func (r *GormCreditSaleRepository) FindAll(ctx context.Context, filter ledger.CreditSaleFilter) ([]ledger.CreditSale, error) {
	var saleModels []models.CreditSaleModel
	query := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.CreditSaleModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&saleModels).Error; err != nil {
		return nil, err
	}
	sales := make([]ledger.CreditSale, len(saleModels))
	for i, model := range saleModels {
		sales[i] = *model.ToDomain()
	}
	return sales, nil
}

// Save creates or updates a credit sale. A unique violation on the sale
// reference means another writer opened the credit record first; that race
// surfaces as ErrAlreadyExists, the same answer the existence check gives.
func (r *GormCreditSaleRepository) Save(ctx context.Context, sale *ledger.CreditSale) error {
	model := models.CreditSaleModelFromDomain(sale)
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking. The update is predicated on
// the previous version, so a concurrent writer that got there first makes
// this a no-op and the caller retries.
func (r *GormCreditSaleRepository) SaveWithLock(ctx context.Context, sale *ledger.CreditSale) error {
	model := models.CreditSaleModelFromDomain(sale)
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", sale.ID, sale.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts credit sales matching the filter
func (r *GormCreditSaleRepository) Count(ctx context.Context, filter ledger.CreditSaleFilter) (int64, error) {
	var count int64
	query := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.CreditSaleModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts credit sales in the given status
func (r *GormCreditSaleRepository) CountByStatus(ctx context.Context, businessID *uuid.UUID, status ledger.CreditStatus) (int64, error) {
	var count int64
	query := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.CreditSaleModel{}).
		Where("status = ?", status)
	if businessID != nil {
		query = query.Where("business_id = ?", *businessID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumOutstanding calculates the total balance still owed across open sales
func (r *GormCreditSaleRepository) SumOutstanding(ctx context.Context, businessID *uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.CreditSaleModel{}).
		Select("COALESCE(SUM(balance_amount), 0) as total").
		Where("status IN ?", openStatuses)
	if businessID != nil {
		query = query.Where("business_id = ?", *businessID)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// ExistsBySale checks if a credit sale was already opened for the sale
func (r *GormCreditSaleRepository) ExistsBySale(ctx context.Context, saleID uuid.UUID) (bool, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.CreditSaleModel{}).
		Where("sale_id = ?", saleID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options including pagination and ordering
func (r *GormCreditSaleRepository) applyFilter(query *gorm.DB, filter ledger.CreditSaleFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query.Order(creditSaleOrderClause(filter.OrderBy, filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCreditSaleRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.CreditSaleFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("customer_phone ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern)
	}
	if filter.BusinessID != nil {
		query = query.Where("business_id = ?", *filter.BusinessID)
	}
	if filter.CustomerPhone != nil {
		query = query.Where("customer_phone = ?", *filter.CustomerPhone)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SaleID != nil {
		query = query.Where("sale_id = ?", *filter.SaleID)
	}
	return query
}

// Ensure GormCreditSaleRepository implements CreditSaleRepository
var _ ledger.CreditSaleRepository = (*GormCreditSaleRepository)(nil)
