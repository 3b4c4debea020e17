package identity

import (
	"github.com/nextstock/backend/internal/domain/shared"
)

// Event type constants for role events
const (
	EventTypeRoleCreated = "identity.role.created"
	EventTypeRoleUpdated = "identity.role.updated"
)

// RoleCreatedEvent is emitted when a role is created
type RoleCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewRoleCreatedEvent creates a new role created event
func NewRoleCreatedEvent(r *Role) *RoleCreatedEvent {
	return &RoleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoleCreated, "Role", r.ID),
		Code:            r.Code,
		Name:            r.Name,
	}
}

// RoleUpdatedEvent is emitted when a role is updated
type RoleUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewRoleUpdatedEvent creates a new role updated event
func NewRoleUpdatedEvent(r *Role) *RoleUpdatedEvent {
	return &RoleUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoleUpdated, "Role", r.ID),
		Code:            r.Code,
		Name:            r.Name,
	}
}
