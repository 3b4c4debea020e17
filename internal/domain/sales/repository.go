package sales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// SaleRepository defines the persistence interface for sales
type SaleRepository interface {
	shared.StoreRepository[Sale]
	FindByNumber(ctx context.Context, number string) (*Sale, error)
	FindByOfflineOpID(ctx context.Context, opID string) (*Sale, error)
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]Sale, error)
	FindByPeriod(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]Sale, error)
	// NextNumber reserves the next sale number for the given day, e.g. SAL-20260830-0042
	NextNumber(ctx context.Context, storeID uuid.UUID, day time.Time) (string, error)
}

// ProformaRepository defines the persistence interface for proformas
type ProformaRepository interface {
	shared.StoreRepository[Proforma]
	FindByNumber(ctx context.Context, number string) (*Proforma, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Proforma, error)
	// FindExpirable returns issued proformas whose validity date has passed
	FindExpirable(ctx context.Context, asOf time.Time, limit int) ([]Proforma, error)
	NextNumber(ctx context.Context, storeID uuid.UUID, day time.Time) (string, error)
	// SaveConversion persists the converted proforma and the resulting sale
	// atomically; a failure on either side leaves both unwritten
	SaveConversion(ctx context.Context, proforma *Proforma, sale *Sale) error
}
