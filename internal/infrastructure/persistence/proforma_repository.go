package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nextstock/backend/internal/domain/sales"
	"github.com/nextstock/backend/internal/domain/shared"
)

// GormProformaRepository implements ProformaRepository using GORM
type GormProformaRepository struct {
	db *gorm.DB
}

// NewGormProformaRepository creates a new GormProformaRepository
func NewGormProformaRepository(db *gorm.DB) *GormProformaRepository {
	return &GormProformaRepository{db: db}
}

// FindByID finds a proforma by its ID, with line items
func (r *GormProformaRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Proforma, error) {
	var proforma sales.Proforma
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&proforma, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &proforma, nil
}

// FindByNumber finds a proforma by its number
func (r *GormProformaRepository) FindByNumber(ctx context.Context, number string) (*sales.Proforma, error) {
	var proforma sales.Proforma
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("number = ?", strings.ToUpper(number)).
		First(&proforma).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &proforma, nil
}

// FindByCustomer finds a customer's proformas
func (r *GormProformaRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]sales.Proforma, error) {
	var proformas []sales.Proforma
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sales.Proforma{}).Preload("Items").
			Where("customer_id = ?", customerID),
		filter,
	)
	if err := query.Find(&proformas).Error; err != nil {
		return nil, err
	}
	return proformas, nil
}

// FindExpirable finds issued proformas whose validity date has passed
func (r *GormProformaRepository) FindExpirable(ctx context.Context, asOf time.Time, limit int) ([]sales.Proforma, error) {
	var proformas []sales.Proforma
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?", sales.ProformaStatusIssued, asOf).
		Order("valid_until ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&proformas).Error; err != nil {
		return nil, err
	}
	return proformas, nil
}

// FindAll finds all proformas matching the filter
func (r *GormProformaRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Proforma, error) {
	var proformas []sales.Proforma
	query := r.applyFilter(r.db.WithContext(ctx).Model(&sales.Proforma{}).Preload("Items"), filter)
	if err := query.Find(&proformas).Error; err != nil {
		return nil, err
	}
	return proformas, nil
}

// FindAllForStore finds all proformas for a store
func (r *GormProformaRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]sales.Proforma, error) {
	var proformas []sales.Proforma
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sales.Proforma{}).Preload("Items").
			Where("store_id = ?", storeID),
		filter,
	)
	if err := query.Find(&proformas).Error; err != nil {
		return nil, err
	}
	return proformas, nil
}

// Save creates or updates a proforma and its line items
func (r *GormProformaRepository) Save(ctx context.Context, proforma *sales.Proforma) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(proforma).Error
}

// SaveConversion persists the converted proforma and the sale it produced in
// one transaction, so a crash between the two writes cannot leave a completed
// sale behind an issued proforma.
func (r *GormProformaRepository) SaveConversion(ctx context.Context, proforma *sales.Proforma, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(sale).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(proforma).Error
	})
}

// Delete deletes a proforma and its line items
func (r *GormProformaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&sales.ProformaItem{}, "proforma_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&sales.Proforma{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts proformas matching the filter
func (r *GormProformaRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&sales.Proforma{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForStore counts proformas for a store
func (r *GormProformaRepository) CountForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&sales.Proforma{}).Where("store_id = ?", storeID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextNumber reserves the next proforma number for the given day.
// Format: PRO-YYYYMMDD-NNNN (e.g. PRO-20260830-0003)
func (r *GormProformaRepository) NextNumber(ctx context.Context, storeID uuid.UUID, day time.Time) (string, error) {
	return nextDocumentNumber(ctx, r.db, &sales.Proforma{}, "PRO", storeID, day)
}

// applyFilter applies filter options to the query
func (r *GormProformaRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProformaSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormProformaRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR customer_name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at < ?", value)
		}
	}

	return query
}

// Ensure GormProformaRepository implements ProformaRepository
var _ sales.ProformaRepository = (*GormProformaRepository)(nil)
