package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/posledger/backend/internal/domain/identity"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
)

// GormUserRepository persists users through GORM. It also acts as the
// NameResolver the payment flow uses to snapshot recorder names.
type GormUserRepository struct {
	db *gorm.DB
}

var (
	_ identity.UserRepository = (*GormUserRepository)(nil)
	_ identity.NameResolver   = (*GormUserRepository)(nil)
)

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// session picks the transaction handle from ctx when one is active.
func (r *GormUserRepository) session(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return r.session(ctx).Create(models.UserModelFromDomain(user)).Error
}

func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	result := r.session(ctx).Save(models.UserModelFromDomain(user))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	err := r.session(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		return nil, asUserLookupError(err)
	}
	return model.ToDomain(), nil
}

// FindByUsername looks up a user case-insensitively. Usernames are
// stored lowercase but the lookup normalizes anyway to tolerate older
// rows.
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var model models.UserModel
	err := r.session(ctx).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&model).Error
	if err != nil {
		return nil, asUserLookupError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.session(ctx).
		Model(&models.UserModel{}).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ResolveName returns the display name for a user ID, falling back to
// the username when no display name is set.
func (r *GormUserRepository) ResolveName(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.GetDisplayNameOrUsername(), nil
}

func asUserLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
