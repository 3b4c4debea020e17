package settings

import (
	"context"

	"github.com/google/uuid"
)

// StoreSettingsRepository defines the persistence interface for store settings
type StoreSettingsRepository interface {
	// FindByStore returns the settings row for a store, or shared.ErrNotFound
	FindByStore(ctx context.Context, storeID uuid.UUID) (*StoreSettings, error)
	Save(ctx context.Context, settings *StoreSettings) error
	Delete(ctx context.Context, storeID uuid.UUID) error
}
