// Package identity contains the application services behind the auth and
// user management endpoints.
package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/posledger/backend/internal/domain/identity"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/auth"
)

// AuthService authenticates users and manages their token pairs.
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login verifies the credentials and issues a token pair. Lookup and
// password failures return the same INVALID_CREDENTIALS error so a
// caller cannot tell which usernames exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username))

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.CanLogin() {
		s.logger.Warn("Login attempt for deactivated account", zap.String("username", input.Username))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		BusinessID: user.BusinessID,
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role.String(),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	// The login already succeeded at this point. If stamping the login
	// time fails we log it and return the tokens anyway.
	user.RecordLoginSuccess(input.IP)
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", input.Username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		TokenResult: toTokenResult(tokenPair),
		User:        toUserInfo(user),
	}, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair,
// re-checking that the user still exists and is active.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	refreshClaims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	userID, err := uuid.Parse(refreshClaims.UserID)
	if err != nil {
		s.logger.Error("Invalid user ID in refresh token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if !user.CanLogin() {
		s.logger.Warn("Token refresh for inactive user", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account is no longer active")
	}

	// Username and role come from the user record, not the old token, so
	// a role change takes effect on the next refresh.
	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, user.Username, user.Role.String())
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed successfully", zap.String("user_id", userID.String()))

	return &RefreshTokenResult{TokenResult: toTokenResult(tokenPair)}, nil
}

// GetCurrentUser returns the profile for the authenticated user.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	info := toUserInfo(user)
	return &info, nil
}

// ChangePassword rotates the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if !user.VerifyPassword(input.OldPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	s.logger.Info("User password changed", zap.String("user_id", input.UserID.String()))

	return nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, auth.ErrInvalidToken):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate token")
	}
}

func toTokenResult(pair *auth.TokenPair) TokenResult {
	return TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

func toUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		BusinessID:  user.BusinessID,
		Username:    user.Username,
		DisplayName: user.GetDisplayNameOrUsername(),
		Phone:       user.Phone,
		Role:        user.Role.String(),
		Active:      user.Active,
	}
}
