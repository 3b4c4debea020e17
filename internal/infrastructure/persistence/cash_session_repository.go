package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nextstock/backend/internal/domain/register"
	"github.com/nextstock/backend/internal/domain/shared"
)

// GormCashSessionRepository implements CashSessionRepository using GORM
type GormCashSessionRepository struct {
	db *gorm.DB
}

// NewGormCashSessionRepository creates a new GormCashSessionRepository
func NewGormCashSessionRepository(db *gorm.DB) *GormCashSessionRepository {
	return &GormCashSessionRepository{db: db}
}

// FindByID finds a cash session by its ID, with cash movements
func (r *GormCashSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*register.CashSession, error) {
	var session register.CashSession
	if err := r.db.WithContext(ctx).
		Preload("Movements").
		First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// FindOpenByStore returns the single open session for a store.
// A partial unique index on (store_id) WHERE status = 'OPEN' guarantees
// at most one row.
func (r *GormCashSessionRepository) FindOpenByStore(ctx context.Context, storeID uuid.UUID) (*register.CashSession, error) {
	var session register.CashSession
	if err := r.db.WithContext(ctx).
		Preload("Movements").
		Where("store_id = ? AND status = ?", storeID, register.SessionStatusOpen).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// FindByUser finds sessions opened by a user
func (r *GormCashSessionRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]register.CashSession, error) {
	var sessions []register.CashSession
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&register.CashSession{}).Preload("Movements").
			Where("opened_by = ?", userID),
		filter,
	)
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// FindClosedByPeriod finds a store's closed sessions within a time range
func (r *GormCashSessionRepository) FindClosedByPeriod(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]register.CashSession, error) {
	var sessions []register.CashSession
	if err := r.db.WithContext(ctx).
		Preload("Movements").
		Where("store_id = ? AND status = ? AND closed_at >= ? AND closed_at < ?",
			storeID, register.SessionStatusClosed, from, to).
		Order("closed_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// FindWithDiscrepancy finds closed sessions with a non-zero discrepancy
func (r *GormCashSessionRepository) FindWithDiscrepancy(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]register.CashSession, error) {
	var sessions []register.CashSession
	if err := r.db.WithContext(ctx).
		Preload("Movements").
		Where("store_id = ? AND status = ? AND closed_at >= ? AND closed_at < ? AND discrepancy <> 0",
			storeID, register.SessionStatusClosed, from, to).
		Order("closed_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// FindAll finds all sessions matching the filter
func (r *GormCashSessionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]register.CashSession, error) {
	var sessions []register.CashSession
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&register.CashSession{}).Preload("Movements"),
		filter,
	)
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// FindAllForStore finds all sessions for a store
func (r *GormCashSessionRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]register.CashSession, error) {
	var sessions []register.CashSession
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&register.CashSession{}).Preload("Movements").
			Where("store_id = ?", storeID),
		filter,
	)
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Save creates or updates a session and its cash movements
func (r *GormCashSessionRepository) Save(ctx context.Context, session *register.CashSession) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(session).Error
}

// Delete deletes a session and its cash movements
func (r *GormCashSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&register.CashMovement{}, "session_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&register.CashSession{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts sessions matching the filter
func (r *GormCashSessionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&register.CashSession{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForStore counts sessions for a store
func (r *GormCashSessionRepository) CountForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&register.CashSession{}).Where("store_id = ?", storeID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormCashSessionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CashSessionSortFields, "opened_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCashSessionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "opened_by":
			query = query.Where("opened_by = ?", value)
		case "from":
			query = query.Where("opened_at >= ?", value)
		case "to":
			query = query.Where("opened_at < ?", value)
		}
	}
	return query
}

// Ensure GormCashSessionRepository implements CashSessionRepository
var _ register.CashSessionRepository = (*GormCashSessionRepository)(nil)
