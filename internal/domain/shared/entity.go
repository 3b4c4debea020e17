package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity exposes the identity and timestamps all persisted domain
// objects carry.
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity is embedded by every entity; gorm maps its fields to the
// shared id/created_at/updated_at columns.
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (e *BaseEntity) GetID() uuid.UUID         { return e.ID }
func (e *BaseEntity) GetCreatedAt() time.Time  { return e.CreatedAt }
func (e *BaseEntity) GetUpdatedAt() time.Time  { return e.UpdatedAt }

// NewBaseEntity mints a fresh identity with both timestamps set to now.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}
