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

// GormUserRepository implements UserRepository using GORM.
// Role assignments live in the user_roles join table and are loaded
// alongside every user.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by its ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadRoleIDs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).
		Where("username = ?", strings.ToLower(username)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadRoleIDs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	var user identity.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadRoleIDs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll finds all users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	var users []identity.User
	query := r.applyFilter(r.db.WithContext(ctx).Model(&identity.User{}), filter)
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	if err := r.loadRoleIDsBatch(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByRole finds users holding a role
func (r *GormUserRepository) FindByRole(ctx context.Context, roleID uuid.UUID) ([]identity.User, error) {
	var users []identity.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ur ON ur.user_id = users.id").
		Where("ur.role_id = ?", roleID).
		Order("users.username ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	if err := r.loadRoleIDsBatch(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindApprovers returns active users who hold the session approval permission
// and have a manager PIN configured, optionally narrowed to a store. Users
// without a home store can approve everywhere.
func (r *GormUserRepository) FindApprovers(ctx context.Context, storeID *uuid.UUID) ([]identity.User, error) {
	permCode := identity.ResourceSession + ":" + identity.ActionApprove
	query := r.db.WithContext(ctx).
		Distinct("users.*").
		Joins("JOIN user_roles ur ON ur.user_id = users.id").
		Joins("JOIN role_permissions rp ON rp.role_id = ur.role_id").
		Joins("JOIN roles ro ON ro.id = ur.role_id").
		Where("rp.code = ?", permCode).
		Where("ro.is_enabled = ?", true).
		Where("users.status = ?", identity.UserStatusActive).
		Where("users.manager_pin_hash <> ''")
	if storeID != nil {
		query = query.Where("users.store_id IS NULL OR users.store_id = ?", *storeID)
	}

	var users []identity.User
	if err := query.Order("users.display_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	if err := r.loadRoleIDsBatch(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// Save creates or updates a user and replaces its role assignments
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		if err := tx.Delete(&identity.UserRole{}, "user_id = ?", user.ID).Error; err != nil {
			return err
		}
		if len(user.RoleIDs) == 0 {
			return nil
		}
		links := make([]identity.UserRole, len(user.RoleIDs))
		for i, roleID := range user.RoleIDs {
			links[i] = identity.UserRole{
				UserID:    user.ID,
				RoleID:    roleID,
				CreatedAt: time.Now(),
			}
		}
		return tx.Create(&links).Error
	})
}

// Delete deletes a user and its role assignments
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&identity.UserRole{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&identity.User{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts users matching the filter
func (r *GormUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&identity.User{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByUsername checks if a username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identity.User{}).
		Where("username = ?", strings.ToLower(username)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// loadRoleIDs loads the role IDs of a single user
func (r *GormUserRepository) loadRoleIDs(ctx context.Context, user *identity.User) error {
	var roleIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&identity.UserRole{}).
		Where("user_id = ?", user.ID).
		Pluck("role_id", &roleIDs).Error; err != nil {
		return err
	}
	user.RoleIDs = roleIDs
	return nil
}

// loadRoleIDsBatch loads role IDs for a slice of users with a single query
func (r *GormUserRepository) loadRoleIDsBatch(ctx context.Context, users []identity.User) error {
	if len(users) == 0 {
		return nil
	}
	userIDs := make([]uuid.UUID, len(users))
	for i, u := range users {
		userIDs[i] = u.ID
	}

	var links []identity.UserRole
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&links).Error; err != nil {
		return err
	}

	byUser := make(map[uuid.UUID][]uuid.UUID, len(users))
	for _, link := range links {
		byUser[link.UserID] = append(byUser[link.UserID], link.RoleID)
	}
	for i := range users {
		users[i].RoleIDs = byUser[users[i].ID]
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormUserRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, UserSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormUserRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR display_name ILIKE ? OR email ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "store_id":
			query = query.Where("store_id = ?", value)
		}
	}

	return query
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
