package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nextstock/backend/internal/domain/identity"
	"github.com/nextstock/backend/internal/domain/shared"
)

// GormRoleRepository implements RoleRepository using GORM.
// Permission grants live in the role_permissions table.
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// FindByID finds a role by its ID
func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	var role identity.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadPermissions(ctx, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByCode finds a role by its code
func (r *GormRoleRepository) FindByCode(ctx context.Context, code string) (*identity.Role, error) {
	var role identity.Role
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadPermissions(ctx, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByIDs finds multiple roles by their IDs
func (r *GormRoleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.Role, error) {
	if len(ids) == 0 {
		return []identity.Role{}, nil
	}
	var roles []identity.Role
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&roles).Error; err != nil {
		return nil, err
	}
	if err := r.loadPermissionsBatch(ctx, roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// FindAll finds all roles matching the filter
func (r *GormRoleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Role, error) {
	var roles []identity.Role
	query := r.applyFilter(r.db.WithContext(ctx).Model(&identity.Role{}), filter)
	if err := query.Find(&roles).Error; err != nil {
		return nil, err
	}
	if err := r.loadPermissionsBatch(ctx, roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// Save creates or updates a role and replaces its permission grants
func (r *GormRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(role).Error; err != nil {
			return err
		}
		if err := tx.Delete(&identity.RolePermission{}, "role_id = ?", role.ID).Error; err != nil {
			return err
		}
		if len(role.Permissions) == 0 {
			return nil
		}
		grants := make([]identity.RolePermission, len(role.Permissions))
		for i, perm := range role.Permissions {
			grants[i] = identity.RolePermission{
				RoleID:      role.ID,
				Code:        perm.Code,
				Resource:    perm.Resource,
				Action:      perm.Action,
				Description: perm.Description,
				CreatedAt:   time.Now(),
			}
		}
		return tx.Create(&grants).Error
	})
}

// Delete deletes a role and its permission grants
func (r *GormRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&identity.RolePermission{}, "role_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&identity.Role{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts roles matching the filter
func (r *GormRoleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&identity.Role{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a role with the given code exists
func (r *GormRoleRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identity.Role{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountUsers counts the users holding a role
func (r *GormRoleRepository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identity.UserRole{}).
		Where("role_id = ?", roleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// loadPermissions loads the permission grants of a single role
func (r *GormRoleRepository) loadPermissions(ctx context.Context, role *identity.Role) error {
	var grants []identity.RolePermission
	if err := r.db.WithContext(ctx).
		Where("role_id = ?", role.ID).
		Order("code ASC").
		Find(&grants).Error; err != nil {
		return err
	}
	role.Permissions = permissionsFromGrants(grants)
	return nil
}

// loadPermissionsBatch loads permission grants for a slice of roles with a single query
func (r *GormRoleRepository) loadPermissionsBatch(ctx context.Context, roles []identity.Role) error {
	if len(roles) == 0 {
		return nil
	}
	roleIDs := make([]uuid.UUID, len(roles))
	for i, role := range roles {
		roleIDs[i] = role.ID
	}

	var grants []identity.RolePermission
	if err := r.db.WithContext(ctx).
		Where("role_id IN ?", roleIDs).
		Order("code ASC").
		Find(&grants).Error; err != nil {
		return err
	}

	byRole := make(map[uuid.UUID][]identity.RolePermission, len(roles))
	for _, grant := range grants {
		byRole[grant.RoleID] = append(byRole[grant.RoleID], grant)
	}
	for i := range roles {
		roles[i].Permissions = permissionsFromGrants(byRole[roles[i].ID])
	}
	return nil
}

func permissionsFromGrants(grants []identity.RolePermission) []identity.Permission {
	perms := make([]identity.Permission, len(grants))
	for i, grant := range grants {
		perms[i] = identity.Permission{
			Code:        grant.Code,
			Resource:    grant.Resource,
			Action:      grant.Action,
			Description: grant.Description,
		}
	}
	return perms
}

// applyFilter applies filter options to the query
func (r *GormRoleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy == "" {
		return query.Order("sort_order ASC, code ASC")
	}
	orderBy := ValidateSortField(filter.OrderBy, RoleSortFields, "sort_order")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormRoleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_enabled":
			query = query.Where("is_enabled = ?", value)
		case "is_system_role":
			query = query.Where("is_system_role = ?", value)
		}
	}

	return query
}

// Ensure GormRoleRepository implements RoleRepository
var _ identity.RoleRepository = (*GormRoleRepository)(nil)
