package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/shared"
)

// StockItem represents the stock level of one product at one store.
// It is the aggregate root for inventory operations.
// The composite identifier is StoreID + ProductID.
type StockItem struct {
	shared.StoreAggregateRoot
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"` // Unique per (store_id, product_id), enforced by migration
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // On-hand quantity, never negative
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Held for issued proformas
	MinQuantity      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Low stock alert threshold
	MaxQuantity      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Restock ceiling (0 = unlimited)
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a new stock item for a store-product combination
func NewStockItem(storeID, productID uuid.UUID) (*StockItem, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	item := &StockItem{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		ProductID:          productID,
		Quantity:           decimal.Zero,
		ReservedQuantity:   decimal.Zero,
		MinQuantity:        decimal.Zero,
		MaxQuantity:        decimal.Zero,
	}

	return item, nil
}

// AvailableQuantity returns the quantity available for sale (on hand minus reserved)
func (i *StockItem) AvailableQuantity() decimal.Decimal {
	return i.Quantity.Sub(i.ReservedQuantity)
}

// Receive increases on-hand stock (delivery, purchase receiving, return)
func (i *StockItem) Receive(quantity decimal.Decimal, movementType MovementType, reference string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !movementType.IsIncrease() {
		return shared.NewDomainError("INVALID_MOVEMENT", "Movement type does not increase stock")
	}

	before := i.Quantity
	i.Quantity = i.Quantity.Add(quantity)
	i.touch()

	i.AddDomainEvent(NewStockChangedEvent(i, movementType, quantity, before, i.Quantity, reference))

	return nil
}

// Deduct decreases on-hand stock for a completed sale or an outbound transfer.
// Stock can never go negative; a deduction beyond the available quantity fails.
func (i *StockItem) Deduct(quantity decimal.Decimal, movementType MovementType, reference string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !movementType.IsDecrease() {
		return shared.NewDomainError("INVALID_MOVEMENT", "Movement type does not decrease stock")
	}
	if i.AvailableQuantity().LessThan(quantity) {
		return shared.ErrInsufficientStock
	}

	before := i.Quantity
	i.Quantity = i.Quantity.Sub(quantity)
	i.touch()

	i.AddDomainEvent(NewStockChangedEvent(i, movementType, quantity.Neg(), before, i.Quantity, reference))

	if i.IsBelowMinimum() {
		i.AddDomainEvent(NewLowStockEvent(i))
	}

	return nil
}

// Adjust corrects the on-hand quantity to a counted value (stock take, shrinkage).
// The new quantity must not be negative and must cover current reservations.
func (i *StockItem) Adjust(newQuantity decimal.Decimal, reason string) error {
	if newQuantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjusted quantity cannot be negative")
	}
	if newQuantity.LessThan(i.ReservedQuantity) {
		return shared.NewDomainError("RESERVED_EXCEEDED", "Adjusted quantity cannot be below the reserved quantity")
	}
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "An adjustment reason is required")
	}

	before := i.Quantity
	delta := newQuantity.Sub(before)
	if delta.IsZero() {
		return nil
	}

	movementType := MovementTypeAdjustmentIn
	if delta.IsNegative() {
		movementType = MovementTypeAdjustmentOut
	}

	i.Quantity = newQuantity
	i.touch()

	i.AddDomainEvent(NewStockChangedEvent(i, movementType, delta, before, i.Quantity, reason))

	if i.IsBelowMinimum() {
		i.AddDomainEvent(NewLowStockEvent(i))
	}

	return nil
}

// Reserve holds stock for an issued proforma so it cannot be sold twice
func (i *StockItem) Reserve(quantity decimal.Decimal, reference string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if i.AvailableQuantity().LessThan(quantity) {
		return shared.ErrInsufficientStock
	}

	i.ReservedQuantity = i.ReservedQuantity.Add(quantity)
	i.touch()

	i.AddDomainEvent(NewStockReservedEvent(i, quantity, reference))

	return nil
}

// Release returns previously reserved stock to the available pool
func (i *StockItem) Release(quantity decimal.Decimal, reference string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	if i.ReservedQuantity.LessThan(quantity) {
		return shared.NewDomainError("RELEASE_EXCEEDED", "Cannot release more than the reserved quantity")
	}

	i.ReservedQuantity = i.ReservedQuantity.Sub(quantity)
	i.touch()

	i.AddDomainEvent(NewStockReleasedEvent(i, quantity, reference))

	return nil
}

// CommitReservation converts a reservation into a deduction (proforma converted to sale)
func (i *StockItem) CommitReservation(quantity decimal.Decimal, reference string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.ReservedQuantity.LessThan(quantity) {
		return shared.NewDomainError("RELEASE_EXCEEDED", "Cannot commit more than the reserved quantity")
	}

	before := i.Quantity
	i.ReservedQuantity = i.ReservedQuantity.Sub(quantity)
	i.Quantity = i.Quantity.Sub(quantity)
	i.touch()

	i.AddDomainEvent(NewStockChangedEvent(i, MovementTypeSale, quantity.Neg(), before, i.Quantity, reference))

	if i.IsBelowMinimum() {
		i.AddDomainEvent(NewLowStockEvent(i))
	}

	return nil
}

// SetThresholds sets the low-stock alert and restock ceiling thresholds
func (i *StockItem) SetThresholds(minQuantity, maxQuantity decimal.Decimal) error {
	if minQuantity.IsNegative() || maxQuantity.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Thresholds cannot be negative")
	}
	if !maxQuantity.IsZero() && maxQuantity.LessThan(minQuantity) {
		return shared.NewDomainError("INVALID_THRESHOLD", "Maximum threshold cannot be below the minimum")
	}

	i.MinQuantity = minQuantity
	i.MaxQuantity = maxQuantity
	i.touch()

	return nil
}

// IsBelowMinimum returns true if on-hand stock is at or below the alert threshold
func (i *StockItem) IsBelowMinimum() bool {
	if i.MinQuantity.IsZero() {
		return false
	}
	return i.Quantity.LessThanOrEqual(i.MinQuantity)
}

func (i *StockItem) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}
