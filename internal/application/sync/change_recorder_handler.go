package sync

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nextstock/backend/internal/domain/catalog"
	"github.com/nextstock/backend/internal/domain/inventory"
	"github.com/nextstock/backend/internal/domain/partner"
	"github.com/nextstock/backend/internal/domain/settings"
	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/domain/sync"
)

// ChangeRecorder appends a change-log entry for every event an offline
// client caches locally. It is the server-side half of the offline product
// cache: clients replay the log to catch up.
type ChangeRecorder struct {
	changeLog sync.ChangeLogRepository
	logger    *zap.Logger
}

// NewChangeRecorder creates a new change recorder
func NewChangeRecorder(changeLog sync.ChangeLogRepository, logger *zap.Logger) *ChangeRecorder {
	return &ChangeRecorder{
		changeLog: changeLog,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *ChangeRecorder) EventTypes() []string {
	return []string{
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductPriceChanged,
		catalog.EventTypeProductStatusChanged,
		catalog.EventTypeProductDeleted,
		catalog.EventTypeCategoryCreated,
		catalog.EventTypeCategoryUpdated,
		catalog.EventTypeCategoryDeleted,
		partner.EventTypeCustomerCreated,
		partner.EventTypeCustomerUpdated,
		partner.EventTypeCustomerDeleted,
		inventory.EventTypeStockChanged,
		settings.EventTypeSettingsUpdated,
	}
}

// Handle appends one change-log entry for the event
func (h *ChangeRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		entityType sync.EntityType
		entityID   uuid.UUID
		op         = sync.ChangeOpUpsert
		storeID    *uuid.UUID
	)

	switch e := event.(type) {
	case *catalog.ProductCreatedEvent:
		entityType, entityID = sync.EntityTypeProduct, e.ProductID
	case *catalog.ProductUpdatedEvent:
		entityType, entityID = sync.EntityTypeProduct, e.ProductID
	case *catalog.ProductPriceChangedEvent:
		entityType, entityID = sync.EntityTypeProduct, e.ProductID
	case *catalog.ProductStatusChangedEvent:
		entityType, entityID = sync.EntityTypeProduct, e.ProductID
	case *catalog.ProductDeletedEvent:
		entityType, entityID, op = sync.EntityTypeProduct, e.ProductID, sync.ChangeOpDelete
	case *catalog.CategoryCreatedEvent:
		entityType, entityID = sync.EntityTypeCategory, e.CategoryID
	case *catalog.CategoryUpdatedEvent:
		entityType, entityID = sync.EntityTypeCategory, e.CategoryID
	case *catalog.CategoryDeletedEvent:
		entityType, entityID, op = sync.EntityTypeCategory, e.CategoryID, sync.ChangeOpDelete
	case *partner.CustomerCreatedEvent:
		entityType, entityID = sync.EntityTypeCustomer, e.CustomerID
	case *partner.CustomerUpdatedEvent:
		entityType, entityID = sync.EntityTypeCustomer, e.CustomerID
	case *partner.CustomerDeletedEvent:
		entityType, entityID, op = sync.EntityTypeCustomer, e.CustomerID, sync.ChangeOpDelete
	case *inventory.StockChangedEvent:
		entityType, entityID = sync.EntityTypeStockItem, e.AggregateID()
		storeID = &e.StoreID
	case *settings.SettingsUpdatedEvent:
		entityType, entityID = sync.EntityTypeSettings, e.AggregateID()
		storeID = &e.StoreID
	default:
		// Not a cached entity
		return nil
	}

	var payload []byte
	if op == sync.ChangeOpUpsert {
		data, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("Failed to serialize event for change log",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
			return err
		}
		payload = data
	}

	entry, err := sync.NewChangeEntry(entityType, entityID, op, storeID, payload)
	if err != nil {
		return err
	}

	if err := h.changeLog.Append(ctx, entry); err != nil {
		h.logger.Error("Failed to append change log entry",
			zap.String("entity_type", string(entityType)),
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
		return err
	}

	return nil
}

var _ shared.EventHandler = (*ChangeRecorder)(nil)
