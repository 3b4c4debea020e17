package settings

import (
	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// EventTypeSettingsUpdated is emitted whenever store settings change.
// The cache layer invalidates on it and the sync change log records it.
const EventTypeSettingsUpdated = "settings.updated"

// SettingsUpdatedEvent signals a settings change for a store
type SettingsUpdatedEvent struct {
	shared.BaseDomainEvent
	StoreID uuid.UUID `json:"store_id"`
}

// NewSettingsUpdatedEvent creates a new settings updated event
func NewSettingsUpdatedEvent(s *StoreSettings) *SettingsUpdatedEvent {
	return &SettingsUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettingsUpdated, "StoreSettings", s.ID),
		StoreID:         s.StoreID,
	}
}
