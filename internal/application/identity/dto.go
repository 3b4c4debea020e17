package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic user information returned after login
type UserInfo struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	Email       string
	Phone       string
	Avatar      string
	StoreID     *uuid.UUID
	Permissions []string
	RoleIDs     []uuid.UUID
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID      uuid.UUID
	AccessToken string
}

// ChangePasswordInput contains the input for a password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// CreateUserRequest creates a new staff account
type CreateUserRequest struct {
	Username    string      `json:"username" binding:"required,min=3,max=100"`
	Password    string      `json:"password" binding:"required,min=8,max=72"`
	DisplayName string      `json:"display_name" binding:"max=200"`
	Email       string      `json:"email" binding:"omitempty,email"`
	Phone       string      `json:"phone" binding:"max=50"`
	StoreID     *uuid.UUID  `json:"store_id"`
	RoleIDs     []uuid.UUID `json:"role_ids"`
	Activate    bool        `json:"activate"`
}

// UpdateUserRequest updates user profile fields; nil fields are unchanged
type UpdateUserRequest struct {
	DisplayName *string    `json:"display_name" binding:"omitempty,max=200"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	Phone       *string    `json:"phone" binding:"omitempty,max=50"`
	Avatar      *string    `json:"avatar" binding:"omitempty,max=500"`
	StoreID     *uuid.UUID `json:"store_id"`
	Notes       *string    `json:"notes" binding:"omitempty,max=1000"`
}

// SetRolesRequest replaces a user's role assignments
type SetRolesRequest struct {
	RoleIDs []uuid.UUID `json:"role_ids" binding:"required"`
}

// SetManagerPinRequest configures a user's approval PIN
type SetManagerPinRequest struct {
	Pin string `json:"pin" binding:"required,min=4,max=6,numeric"`
}

// ResetPasswordRequest sets a new password for a user (admin operation)
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID             uuid.UUID   `json:"id"`
	Username       string      `json:"username"`
	DisplayName    string      `json:"display_name"`
	Email          string      `json:"email,omitempty"`
	Phone          string      `json:"phone,omitempty"`
	Avatar         string      `json:"avatar,omitempty"`
	Status         string      `json:"status"`
	StoreID        *uuid.UUID  `json:"store_id,omitempty"`
	RoleIDs        []uuid.UUID `json:"role_ids"`
	HasManagerPin  bool        `json:"has_manager_pin"`
	LastLoginAt    *time.Time  `json:"last_login_at,omitempty"`
	FailedAttempts int         `json:"failed_attempts"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// UserListFilter represents filter options for the user list
type UserListFilter struct {
	Status   string     `form:"status" binding:"omitempty,oneof=pending active locked deactivated"`
	StoreID  *uuid.UUID `form:"store_id"`
	Search   string     `form:"search" binding:"max=100"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ApproverResponse is a minimal view of a user eligible to approve register
// actions, shown on the close-session screen.
type ApproverResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

// CreateRoleRequest creates a new role
type CreateRoleRequest struct {
	Code        string   `json:"code" binding:"required,min=2,max=50"`
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description" binding:"max=500"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleRequest updates a role; nil fields are unchanged
type UpdateRoleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string   `json:"description" binding:"omitempty,max=500"`
	Permissions *[]string `json:"permissions"`
	SortOrder   *int      `json:"sort_order"`
}

// RoleResponse represents a role in API responses
type RoleResponse struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	IsSystemRole bool      `json:"is_system_role"`
	IsEnabled    bool      `json:"is_enabled"`
	SortOrder    int       `json:"sort_order"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.GetDisplayNameOrUsername(),
		Email:          u.Email,
		Phone:          u.Phone,
		Avatar:         u.Avatar,
		Status:         string(u.Status),
		StoreID:        u.StoreID,
		RoleIDs:        u.RoleIDs,
		HasManagerPin:  u.HasManagerPin(),
		LastLoginAt:    u.LastLoginAt,
		FailedAttempts: u.FailedAttempts,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// ToUserResponses converts domain Users to responses
func ToUserResponses(items []identity.User) []UserResponse {
	responses := make([]UserResponse, len(items))
	for i := range items {
		responses[i] = ToUserResponse(&items[i])
	}
	return responses
}

// ToRoleResponse converts a domain Role to RoleResponse
func ToRoleResponse(r *identity.Role) RoleResponse {
	permissions := make([]string, len(r.Permissions))
	for i, p := range r.Permissions {
		permissions[i] = p.Code
	}
	return RoleResponse{
		ID:           r.ID,
		Code:         r.Code,
		Name:         r.Name,
		Description:  r.Description,
		IsSystemRole: r.IsSystemRole,
		IsEnabled:    r.IsEnabled,
		SortOrder:    r.SortOrder,
		Permissions:  permissions,
		CreatedAt:    r.CreatedAt,
	}
}

// ToRoleResponses converts domain Roles to responses
func ToRoleResponses(items []identity.Role) []RoleResponse {
	responses := make([]RoleResponse, len(items))
	for i := range items {
		responses[i] = ToRoleResponse(&items[i])
	}
	return responses
}
