package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nextstock/backend/internal/domain/sync"
)

// GormChangeLogRepository implements ChangeLogRepository using GORM.
// Sequence numbers are assigned by the database (BIGSERIAL), so entries are
// totally ordered regardless of which instance appended them.
type GormChangeLogRepository struct {
	db *gorm.DB
}

// NewGormChangeLogRepository creates a new GormChangeLogRepository
func NewGormChangeLogRepository(db *gorm.DB) *GormChangeLogRepository {
	return &GormChangeLogRepository{db: db}
}

// Append appends an entry to the change log. The database assigns Seq.
func (r *GormChangeLogRepository) Append(ctx context.Context, entry *sync.ChangeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindAfter returns up to limit entries after the cursor visible to the store.
// Global entries (nil store) are always included; store-scoped entries only
// for the requesting store.
func (r *GormChangeLogRepository) FindAfter(ctx context.Context, cursor int64, storeID uuid.UUID, limit int) ([]sync.ChangeEntry, error) {
	var entries []sync.ChangeEntry
	query := r.db.WithContext(ctx).
		Where("seq > ?", cursor).
		Where("store_id IS NULL OR store_id = ?", storeID).
		Order("seq ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// LatestSeq returns the highest assigned sequence, 0 when the log is empty
func (r *GormChangeLogRepository) LatestSeq(ctx context.Context) (int64, error) {
	var seq *int64
	if err := r.db.WithContext(ctx).
		Model(&sync.ChangeEntry{}).
		Select("MAX(seq)").
		Scan(&seq).Error; err != nil {
		return 0, err
	}
	if seq == nil {
		return 0, nil
	}
	return *seq, nil
}

// PruneBefore deletes entries with Seq <= keepSeq and returns the count removed
func (r *GormChangeLogRepository) PruneBefore(ctx context.Context, keepSeq int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&sync.ChangeEntry{}, "seq <= ?", keepSeq)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure GormChangeLogRepository implements ChangeLogRepository
var _ sync.ChangeLogRepository = (*GormChangeLogRepository)(nil)
