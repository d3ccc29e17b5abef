package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserRole is the role a user holds within their business.
type UserRole string

const (
	UserRoleOwner      UserRole = "owner"
	UserRoleCashier    UserRole = "cashier"
	UserRolePharmacist UserRole = "pharmacist"
)

func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the role is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleOwner, UserRoleCashier, UserRolePharmacist:
		return true
	}
	return false
}

const bcryptCost = 12

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]{3,32}$`)

// User represents an operator account. It is the aggregate root for
// user-related operations; payments snapshot the display name at write
// time so later edits here never rewrite ledger history.
type User struct {
	shared.BusinessAggregateRoot
	Username     string
	DisplayName  string
	Phone        string
	Role         UserRole
	PasswordHash string
	Active       bool
	LastLoginAt  *time.Time
	LastLoginIP  string
}

// NewUser creates an active user. The username is normalized to lower
// case before validation.
func NewUser(businessID uuid.UUID, username, password string, role UserRole) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(username) {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username must be 3-32 characters of lowercase letters, digits, dot, dash or underscore")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role is not valid")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BusinessAggregateRoot: shared.NewBusinessAggregateRoot(businessID),
		Username:              username,
		Role:                  role,
		PasswordHash:          string(hash),
		Active:                true,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	// bcrypt reads at most 72 bytes of input.
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func (u *User) SetDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if len(displayName) > 100 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 100 characters")
	}
	u.DisplayName = displayName
	u.touch()
	return nil
}

func (u *User) SetPhone(phone string) {
	u.Phone = strings.TrimSpace(phone)
	u.touch()
}

// SetPassword replaces the stored hash after validating the new password.
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.touch()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Deactivate blocks the account from logging in.
func (u *User) Deactivate() {
	u.Active = false
	u.touch()
}

// Activate re-enables a deactivated account.
func (u *User) Activate() {
	u.Active = true
	u.touch()
}

func (u *User) CanLogin() bool {
	return u.Active
}

// RecordLoginSuccess stamps the login audit fields.
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.UpdatedAt = now
}

// GetDisplayNameOrUsername falls back to the username when no display
// name has been set.
func (u *User) GetDisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func (u *User) touch() {
	u.UpdatedAt = time.Now()
}
