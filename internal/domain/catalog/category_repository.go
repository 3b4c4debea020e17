package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// CategoryRepository defines persistence operations for categories
type CategoryRepository interface {
	shared.Repository[Category]
	FindByCode(ctx context.Context, code string) (*Category, error)
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Category, error)
	FindRoots(ctx context.Context) ([]Category, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	HasChildren(ctx context.Context, categoryID uuid.UUID) (bool, error)
	HasProducts(ctx context.Context, categoryID uuid.UUID) (bool, error)
}
