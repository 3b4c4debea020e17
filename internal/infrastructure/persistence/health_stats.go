package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/nextstock/backend/internal/domain/inventory"
	"github.com/nextstock/backend/internal/domain/register"
)

// HealthStats answers point-in-time fleet questions for the business
// metrics collector: how many items are at or below their minimum, and how
// many registers are open right now.
type HealthStats struct {
	db *gorm.DB
}

// NewHealthStats creates a new HealthStats
func NewHealthStats(db *gorm.DB) *HealthStats {
	return &HealthStats{db: db}
}

// LowStockCount counts stock items at or below their minimum threshold
// across all stores. Items without a threshold are excluded.
func (s *HealthStats) LowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&inventory.StockItem{}).
		Where("min_quantity > 0 AND quantity <= min_quantity").
		Count(&count).Error
	return count, err
}

// OpenSessionCount counts currently open cash sessions across all stores
func (s *HealthStats) OpenSessionCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&register.CashSession{}).
		Where("status = ?", register.SessionStatusOpen).
		Count(&count).Error
	return count, err
}
