package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nextstock/backend/internal/domain/catalog"
	"github.com/nextstock/backend/internal/domain/shared"
)

// GormCategoryRepository persists the category tree.
type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormCategoryRepository) FindByCode(ctx context.Context, code string) (*catalog.Category, error) {
	return r.findOne(ctx, "code = ?", strings.ToUpper(code))
}

func (r *GormCategoryRepository) findOne(ctx context.Context, cond string, arg any) (*catalog.Category, error) {
	var category catalog.Category
	err := r.db.WithContext(ctx).Where(cond, arg).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	var categories []catalog.Category
	query := r.paginate(r.scoped(r.db.WithContext(ctx).Model(&catalog.Category{}), filter), filter)
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindChildren returns the direct children of a category in display order.
func (r *GormCategoryRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]catalog.Category, error) {
	return r.findSorted(ctx, "parent_id = ?", parentID)
}

// FindRoots returns the top-level categories in display order.
func (r *GormCategoryRepository) FindRoots(ctx context.Context) ([]catalog.Category, error) {
	return r.findSorted(ctx, "parent_id IS NULL")
}

func (r *GormCategoryRepository) findSorted(ctx context.Context, cond string, args ...any) ([]catalog.Category, error) {
	var categories []catalog.Category
	err := r.db.WithContext(ctx).
		Where(cond, args...).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.scoped(r.db.WithContext(ctx).Model(&catalog.Category{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCategoryRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, "code = ?", strings.ToUpper(code))
}

// HasChildren reports whether any category points at this one as parent.
func (r *GormCategoryRepository) HasChildren(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	return r.exists(ctx, "parent_id = ?", categoryID)
}

func (r *GormCategoryRepository) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&catalog.Category{}).
		Where(cond, arg).
		Count(&count).Error
	return count > 0, err
}

// HasProducts reports whether any product references the category. Deletion
// is blocked while it does.
func (r *GormCategoryRepository) HasProducts(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count > 0, err
}

// scoped narrows the query by search text and field filters, no pagination.
func (r *GormCategoryRepository) scoped(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status", "parent_id", "level":
			query = query.Where(key+" = ?", value)
		}
	}
	return query
}

func (r *GormCategoryRepository) paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if filter.OrderBy == "" {
		return query.Order("sort_order ASC, name ASC")
	}
	orderBy := ValidateSortField(filter.OrderBy, CategorySortFields, "sort_order")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}
