package models

import (
	"time"

	"github.com/posledger/backend/internal/domain/identity"
)

// UserModel is the users table row. Usernames are globally unique so a
// login does not need a business scope.
type UserModel struct {
	BusinessAggregateModel
	Username     string            `gorm:"type:varchar(64);not null;uniqueIndex:idx_users_username"`
	DisplayName  string            `gorm:"type:varchar(200)"`
	Phone        string            `gorm:"type:varchar(32)"`
	Role         identity.UserRole `gorm:"type:varchar(20);not null;default:'cashier';index"`
	PasswordHash string            `gorm:"type:varchar(255);not null"`
	Active       bool              `gorm:"not null;default:true;index"`
	LastLoginAt  *time.Time
	LastLoginIP  string `gorm:"type:varchar(45)"`
}

func (UserModel) TableName() string {
	return "users"
}

// ToDomain rebuilds the domain user from the row.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		Username:     m.Username,
		DisplayName:  m.DisplayName,
		Phone:        m.Phone,
		Role:         m.Role,
		PasswordHash: m.PasswordHash,
		Active:       m.Active,
		LastLoginAt:  m.LastLoginAt,
		LastLoginIP:  m.LastLoginIP,
	}
	m.PopulateBusinessAggregateRoot(&user.BusinessAggregateRoot)
	return user
}

// FromDomain copies the domain user into the row.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBusinessAggregateRoot(u.BusinessAggregateRoot)
	m.Username = u.Username
	m.DisplayName = u.DisplayName
	m.Phone = u.Phone
	m.Role = u.Role
	m.PasswordHash = u.PasswordHash
	m.Active = u.Active
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
}

// UserModelFromDomain builds a fresh row from the domain user.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
