package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/shared"
)

// Event type constants for the inventory bounded context
const (
	EventTypeStockChanged  = "inventory.stock.changed"
	EventTypeStockReserved = "inventory.stock.reserved"
	EventTypeStockReleased = "inventory.stock.released"
	EventTypeLowStock      = "inventory.stock.low"
)

// StockChangedEvent is emitted whenever the on-hand quantity of a stock item
// changes. It feeds the realtime stock feed and the offline sync change log.
type StockChangedEvent struct {
	shared.BaseDomainEvent
	StoreID        uuid.UUID       `json:"store_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	MovementType   MovementType    `json:"movement_type"`
	Delta          decimal.Decimal `json:"delta"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Available      decimal.Decimal `json:"available"`
	Reference      string          `json:"reference,omitempty"`
}

// NewStockChangedEvent creates a new stock changed event
func NewStockChangedEvent(item *StockItem, movementType MovementType, delta, before, after decimal.Decimal, reference string) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockChanged, "StockItem", item.ID),
		StoreID:         item.StoreID,
		ProductID:       item.ProductID,
		MovementType:    movementType,
		Delta:           delta,
		QuantityBefore:  before,
		QuantityAfter:   after,
		Available:       after.Sub(item.ReservedQuantity),
		Reference:       reference,
	}
}

// StockReservedEvent is emitted when stock is held for an issued proforma
type StockReservedEvent struct {
	shared.BaseDomainEvent
	StoreID   uuid.UUID       `json:"store_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Available decimal.Decimal `json:"available"`
	Reference string          `json:"reference,omitempty"`
}

// NewStockReservedEvent creates a new stock reserved event
func NewStockReservedEvent(item *StockItem, quantity decimal.Decimal, reference string) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, "StockItem", item.ID),
		StoreID:         item.StoreID,
		ProductID:       item.ProductID,
		Quantity:        quantity,
		Available:       item.AvailableQuantity(),
		Reference:       reference,
	}
}

// StockReleasedEvent is emitted when a reservation is returned to the pool
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	StoreID   uuid.UUID       `json:"store_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Available decimal.Decimal `json:"available"`
	Reference string          `json:"reference,omitempty"`
}

// NewStockReleasedEvent creates a new stock released event
func NewStockReleasedEvent(item *StockItem, quantity decimal.Decimal, reference string) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, "StockItem", item.ID),
		StoreID:         item.StoreID,
		ProductID:       item.ProductID,
		Quantity:        quantity,
		Available:       item.AvailableQuantity(),
		Reference:       reference,
	}
}

// LowStockEvent is emitted when on-hand stock falls to or below the alert threshold
type LowStockEvent struct {
	shared.BaseDomainEvent
	StoreID     uuid.UUID       `json:"store_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

// NewLowStockEvent creates a new low stock event
func NewLowStockEvent(item *StockItem) *LowStockEvent {
	return &LowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStock, "StockItem", item.ID),
		StoreID:         item.StoreID,
		ProductID:       item.ProductID,
		Quantity:        item.Quantity,
		MinQuantity:     item.MinQuantity,
	}
}
