package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// UserRepository defines the persistence interface for users
type UserRepository interface {
	shared.Repository[User]
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindByRole(ctx context.Context, roleID uuid.UUID) ([]User, error)
	// FindApprovers returns active users holding the session approval
	// permission and a configured PIN, optionally narrowed to a store.
	FindApprovers(ctx context.Context, storeID *uuid.UUID) ([]User, error)
}

// RoleRepository defines the persistence interface for roles
type RoleRepository interface {
	shared.Repository[Role]
	FindByCode(ctx context.Context, code string) (*Role, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Role, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error)
}
