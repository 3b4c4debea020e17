package sync

import (
	"time"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// ChangeOp is the operation recorded in the change log
type ChangeOp string

const (
	ChangeOpUpsert ChangeOp = "upsert"
	ChangeOpDelete ChangeOp = "delete"
)

// IsValid checks if the change op is recognized
func (o ChangeOp) IsValid() bool {
	return o == ChangeOpUpsert || o == ChangeOpDelete
}

// EntityType identifies which aggregate a change entry describes.
// Offline clients cache these entity types locally.
type EntityType string

const (
	EntityTypeProduct   EntityType = "product"
	EntityTypeCategory  EntityType = "category"
	EntityTypeCustomer  EntityType = "customer"
	EntityTypeStockItem EntityType = "stock_item"
	EntityTypeSettings  EntityType = "settings"
)

// IsValid checks if the entity type is recognized
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeProduct, EntityTypeCategory, EntityTypeCustomer, EntityTypeStockItem, EntityTypeSettings:
		return true
	}
	return false
}

// ChangeEntry is one row of the server-side change log. Entries are append
// only and ordered by a monotonically increasing sequence; clients pull
// everything after their cursor.
type ChangeEntry struct {
	// Seq is assigned by the database (BIGSERIAL), not by the application.
	Seq        int64      `gorm:"primaryKey;autoIncrement"`
	EntityType EntityType `gorm:"size:30;not null;index:idx_change_entity"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_change_entity"`
	Op         ChangeOp   `gorm:"size:10;not null"`
	// StoreID scopes store-local entities (stock, settings); nil for
	// catalog-wide entities visible to every store.
	StoreID   *uuid.UUID `gorm:"type:uuid;index"`
	Payload   []byte     `gorm:"type:jsonb"` // Entity snapshot at change time; empty for deletes
	CreatedAt time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ChangeEntry) TableName() string {
	return "change_log"
}

// NewChangeEntry creates an unsaved change log entry
func NewChangeEntry(entityType EntityType, entityID uuid.UUID, op ChangeOp, storeID *uuid.UUID, payload []byte) (*ChangeEntry, error) {
	if !entityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Unknown change log entity type")
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity ID cannot be empty")
	}
	if !op.IsValid() {
		return nil, shared.NewDomainError("INVALID_OP", "Unknown change log operation")
	}
	if op == ChangeOpUpsert && len(payload) == 0 {
		return nil, shared.NewDomainError("INVALID_PAYLOAD", "Upsert entries require a payload")
	}

	return &ChangeEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Op:         op,
		StoreID:    storeID,
		Payload:    payload,
		CreatedAt:  time.Now(),
	}, nil
}
