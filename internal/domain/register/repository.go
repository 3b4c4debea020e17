package register

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// CashSessionRepository defines the persistence interface for cash sessions
type CashSessionRepository interface {
	shared.StoreRepository[CashSession]
	// FindOpenByStore returns the single open session for a store, or
	// shared.ErrNotFound when none is open.
	FindOpenByStore(ctx context.Context, storeID uuid.UUID) (*CashSession, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]CashSession, error)
	FindClosedByPeriod(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]CashSession, error)
	// FindWithDiscrepancy returns closed sessions whose absolute discrepancy
	// is at or above the given threshold.
	FindWithDiscrepancy(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]CashSession, error)
}
