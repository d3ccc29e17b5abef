package handler

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest carries the credentials for a login attempt.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest rotates the authenticated user's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// TokenResponse is the issued token pair with its expiry times.
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AuthUserResponse is the profile embedded in auth responses.
type AuthUserResponse struct {
	ID          uuid.UUID `json:"id"`
	BusinessID  uuid.UUID `json:"business_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone,omitempty"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
}

// LoginResponse pairs the issued tokens with the user's profile.
type LoginResponse struct {
	Token TokenResponse    `json:"token"`
	User  AuthUserResponse `json:"user"`
}

type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}

type CurrentUserResponse struct {
	User AuthUserResponse `json:"user"`
}
