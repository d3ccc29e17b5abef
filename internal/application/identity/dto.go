package identity

import (
	"time"

	"github.com/google/uuid"
)

// LoginInput carries the credentials presented at login. IP is the
// client address, recorded on the user for login tracking.
type LoginInput struct {
	Username string
	Password string
	IP       string
}

// TokenResult is the issued token pair shared by login and refresh.
type TokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// UserInfo is the user profile attached to a successful login.
type UserInfo struct {
	ID          uuid.UUID
	BusinessID  uuid.UUID
	Username    string
	DisplayName string
	Phone       string
	Role        string
	Active      bool
}

type LoginResult struct {
	TokenResult
	User UserInfo
}

type RefreshTokenInput struct {
	RefreshToken string
}

type RefreshTokenResult struct {
	TokenResult
}

type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// CreateUserInput carries the fields for provisioning a new user.
type CreateUserInput struct {
	BusinessID  uuid.UUID
	Username    string
	Password    string
	DisplayName string
	Phone       string
	Role        string
}
