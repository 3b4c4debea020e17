package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nextstock/backend/internal/domain/settings"
	"github.com/nextstock/backend/internal/domain/shared"
)

// GormStoreSettingsRepository implements StoreSettingsRepository using GORM.
// Each store has at most one settings row.
type GormStoreSettingsRepository struct {
	db *gorm.DB
}

// NewGormStoreSettingsRepository creates a new GormStoreSettingsRepository
func NewGormStoreSettingsRepository(db *gorm.DB) *GormStoreSettingsRepository {
	return &GormStoreSettingsRepository{db: db}
}

// FindByStore returns the settings row for a store
func (r *GormStoreSettingsRepository) FindByStore(ctx context.Context, storeID uuid.UUID) (*settings.StoreSettings, error) {
	var row settings.StoreSettings
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// Save creates or updates the settings row
func (r *GormStoreSettingsRepository) Save(ctx context.Context, row *settings.StoreSettings) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// Delete deletes the settings row for a store
func (r *GormStoreSettingsRepository) Delete(ctx context.Context, storeID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&settings.StoreSettings{}, "store_id = ?", storeID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormStoreSettingsRepository implements StoreSettingsRepository
var _ settings.StoreSettingsRepository = (*GormStoreSettingsRepository)(nil)
