package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/shared"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementTypeReceive       MovementType = "receive"        // Goods received into the store
	MovementTypeSale          MovementType = "sale"           // Deducted by a completed sale
	MovementTypeReturnIn      MovementType = "return_in"      // Customer return back into stock
	MovementTypeTransferIn    MovementType = "transfer_in"    // Received from another store
	MovementTypeTransferOut   MovementType = "transfer_out"   // Sent to another store
	MovementTypeAdjustmentIn  MovementType = "adjustment_in"  // Count correction upward
	MovementTypeAdjustmentOut MovementType = "adjustment_out" // Count correction downward or shrinkage
)

// IsIncrease returns true if this movement type increases on-hand stock
func (t MovementType) IsIncrease() bool {
	switch t {
	case MovementTypeReceive, MovementTypeReturnIn, MovementTypeTransferIn, MovementTypeAdjustmentIn:
		return true
	default:
		return false
	}
}

// IsDecrease returns true if this movement type decreases on-hand stock
func (t MovementType) IsDecrease() bool {
	switch t {
	case MovementTypeSale, MovementTypeTransferOut, MovementTypeAdjustmentOut:
		return true
	default:
		return false
	}
}

// IsValid checks if the movement type is recognized
func (t MovementType) IsValid() bool {
	return t.IsIncrease() || t.IsDecrease()
}

// StockMovement is an immutable ledger entry recording one change to a stock
// item. Movements are never updated or deleted; corrections are recorded as
// new movements.
type StockMovement struct {
	shared.StoreAggregateRoot
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockItemID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MovementType   MovementType    `gorm:"size:30;not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Signed: positive for increases
	QuantityBefore decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reference      string          `gorm:"size:100;index"` // Sale number, proforma number, adjustment reason
	PerformedBy    *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement records a movement derived from a stock item change
func NewStockMovement(item *StockItem, movementType MovementType, quantity, before, after decimal.Decimal, reference string, performedBy *uuid.UUID) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT", "Unknown movement type")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity cannot be zero")
	}
	if !before.Add(quantity).Equal(after) {
		return nil, shared.NewDomainError("INVALID_MOVEMENT", "Movement quantities do not balance")
	}

	movement := &StockMovement{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(item.StoreID),
		ProductID:          item.ProductID,
		StockItemID:        item.ID,
		MovementType:       movementType,
		Quantity:           quantity,
		QuantityBefore:     before,
		QuantityAfter:      after,
		Reference:          reference,
		PerformedBy:        performedBy,
	}

	return movement, nil
}
