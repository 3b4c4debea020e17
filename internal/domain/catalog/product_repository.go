package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	shared.Repository[Product]
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]Product, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	CountByStatus(ctx context.Context) (map[ProductStatus]int64, error)
}
