package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/posledger/backend/internal/domain/identity"
	"github.com/posledger/backend/internal/domain/shared"
)

// UserService manages the staff accounts of a business.
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// UserDTO is the user shape returned by the management endpoints.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	BusinessID  uuid.UUID  `json:"business_id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Create provisions a new staff account. Usernames are unique across
// the whole system, not per business.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	s.logger.Info("Creating new user",
		zap.String("username", input.Username),
		zap.String("business_id", input.BusinessID.String()))

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error("Failed to check username existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check username availability")
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
	}

	role := identity.UserRole(input.Role)
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be one of owner, cashier, pharmacist")
	}

	user, err := identity.NewUser(input.BusinessID, input.Username, input.Password, role)
	if err != nil {
		return nil, err
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.Phone != "" {
		user.SetPhone(input.Phone)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return toUserDTO(user), nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

// Deactivate blocks the account from logging in until reactivated.
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.toggleActive(ctx, id, false)
}

// Activate re-enables a deactivated account.
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) error {
	return s.toggleActive(ctx, id, true)
}

func (s *UserService) toggleActive(ctx context.Context, id uuid.UUID, active bool) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	verb := "deactivate"
	if active {
		verb = "activate"
		user.Activate()
	} else {
		user.Deactivate()
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to "+verb+" user", zap.Error(err))
		return err
	}

	s.logger.Info("User "+verb+"d", zap.String("user_id", id.String()))
	return nil
}

func toUserDTO(user *identity.User) *UserDTO {
	return &UserDTO{
		ID:          user.ID,
		BusinessID:  user.BusinessID,
		Username:    user.Username,
		DisplayName: user.GetDisplayNameOrUsername(),
		Phone:       user.Phone,
		Role:        user.Role.String(),
		Active:      user.Active,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
