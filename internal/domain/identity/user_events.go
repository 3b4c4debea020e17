package identity

import (
	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// Event type constants for user events
const (
	EventTypeUserCreated         = "identity.user.created"
	EventTypeUserPasswordChanged = "identity.user.password_changed"
	EventTypeUserPinChanged      = "identity.user.pin_changed"
	EventTypeUserRoleAssigned    = "identity.user.role_assigned"
	EventTypeUserRoleRemoved     = "identity.user.role_removed"
	EventTypeUserStatusChanged   = "identity.user.status_changed"
	EventTypeUserDeactivated     = "identity.user.deactivated"
)

// UserCreatedEvent is emitted when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserCreatedEvent creates a new user created event
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, "User", u.ID),
		Username:        u.Username,
	}
}

// UserPasswordChangedEvent is emitted when a user's password changes
type UserPasswordChangedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserPasswordChangedEvent creates a new password changed event
func NewUserPasswordChangedEvent(u *User) *UserPasswordChangedEvent {
	return &UserPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserPasswordChanged, "User", u.ID),
		Username:        u.Username,
	}
}

// UserPinChangedEvent is emitted when a user's approval PIN is set or changed
type UserPinChangedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserPinChangedEvent creates a new PIN changed event
func NewUserPinChangedEvent(u *User) *UserPinChangedEvent {
	return &UserPinChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserPinChanged, "User", u.ID),
		Username:        u.Username,
	}
}

// UserRoleAssignedEvent is emitted when a role is assigned to a user
type UserRoleAssignedEvent struct {
	shared.BaseDomainEvent
	Username string    `json:"username"`
	RoleID   uuid.UUID `json:"role_id"`
}

// NewUserRoleAssignedEvent creates a new role assigned event
func NewUserRoleAssignedEvent(u *User, roleID uuid.UUID) *UserRoleAssignedEvent {
	return &UserRoleAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleAssigned, "User", u.ID),
		Username:        u.Username,
		RoleID:          roleID,
	}
}

// UserRoleRemovedEvent is emitted when a role is removed from a user
type UserRoleRemovedEvent struct {
	shared.BaseDomainEvent
	Username string    `json:"username"`
	RoleID   uuid.UUID `json:"role_id"`
}

// NewUserRoleRemovedEvent creates a new role removed event
func NewUserRoleRemovedEvent(u *User, roleID uuid.UUID) *UserRoleRemovedEvent {
	return &UserRoleRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleRemoved, "User", u.ID),
		Username:        u.Username,
		RoleID:          roleID,
	}
}

// UserStatusChangedEvent is emitted when a user's status changes
type UserStatusChangedEvent struct {
	shared.BaseDomainEvent
	Username  string     `json:"username"`
	OldStatus UserStatus `json:"old_status"`
	NewStatus UserStatus `json:"new_status"`
}

// NewUserStatusChangedEvent creates a new status changed event
func NewUserStatusChangedEvent(u *User, oldStatus, newStatus UserStatus) *UserStatusChangedEvent {
	return &UserStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserStatusChanged, "User", u.ID),
		Username:        u.Username,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// UserDeactivatedEvent is emitted when a user is deactivated.
// The auth layer revokes the user's active tokens on it.
type UserDeactivatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserDeactivatedEvent creates a new user deactivated event
func NewUserDeactivatedEvent(u *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeactivated, "User", u.ID),
		Username:        u.Username,
	}
}
