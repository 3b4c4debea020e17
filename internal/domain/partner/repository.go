package partner

import (
	"context"

	"github.com/nextstock/backend/internal/domain/shared"
)

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	shared.Repository[Customer]
	FindByCode(ctx context.Context, code string) (*Customer, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	CountByStatus(ctx context.Context) (map[CustomerStatus]int64, error)
}

// StoreRepository defines persistence operations for stores
type StoreRepository interface {
	shared.Repository[Store]
	FindByCode(ctx context.Context, code string) (*Store, error)
	FindDefault(ctx context.Context) (*Store, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ClearDefault(ctx context.Context) error
}
