package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// StockItemRepository defines the persistence interface for stock items
type StockItemRepository interface {
	shared.StoreRepository[StockItem]
	FindByStoreAndProduct(ctx context.Context, storeID, productID uuid.UUID) (*StockItem, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockItem, error)
	FindBelowMinimum(ctx context.Context, storeID uuid.UUID) ([]StockItem, error)
	// SaveWithMovement persists the stock item and its movement atomically
	SaveWithMovement(ctx context.Context, item *StockItem, movement *StockMovement) error
}

// StockMovementRepository defines the persistence interface for the movement ledger.
// Movements are append-only; there is no update or delete.
type StockMovementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)
	Save(ctx context.Context, movement *StockMovement) error
	FindByProduct(ctx context.Context, storeID, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
	FindByReference(ctx context.Context, reference string) ([]StockMovement, error)
	CountByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error)
	FindByPeriod(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]StockMovement, error)
}
