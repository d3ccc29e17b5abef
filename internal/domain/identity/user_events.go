package identity

import (
	"github.com/posledger/backend/internal/domain/shared"
)

const (
	AggregateTypeUser = "User"

	EventTypeUserCreated = "UserCreated"
)

// UserCreatedEvent is recorded when a staff account is provisioned.
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

func (e *UserCreatedEvent) EventType() string {
	return EventTypeUserCreated
}

func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID, u.BusinessID),
		Username:        u.Username,
		Role:            u.Role,
	}
}
