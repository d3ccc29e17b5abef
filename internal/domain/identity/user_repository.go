package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository is the persistence port for users. Username lookups
// are case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// NameResolver resolves a user ID to a display name. Lookup failure is
// a tolerated degradation for callers that only need the name for
// audit snapshots.
type NameResolver interface {
	ResolveName(ctx context.Context, userID uuid.UUID) (string, error)
}
