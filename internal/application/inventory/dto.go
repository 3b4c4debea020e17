package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/inventory"
)

// ReceiveStockRequest represents an incoming delivery for one product
type ReceiveStockRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Reference   string          `json:"reference" binding:"max=100"`
	PerformedBy *uuid.UUID      `json:"-"`
}

// AdjustStockRequest sets the on-hand quantity after a physical count
type AdjustStockRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason" binding:"required,min=1,max=200"`
	PerformedBy *uuid.UUID      `json:"-"`
}

// SetThresholdsRequest updates the low-stock alert levels
type SetThresholdsRequest struct {
	MinQuantity decimal.Decimal `json:"min_quantity"`
	MaxQuantity decimal.Decimal `json:"max_quantity"`
}

// StockItemResponse represents a stock item in API responses
type StockItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	StoreID          uuid.UUID       `json:"store_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	AvailableQty     decimal.Decimal `json:"available_quantity"`
	MinQuantity      decimal.Decimal `json:"min_quantity"`
	MaxQuantity      decimal.Decimal `json:"max_quantity"`
	BelowMinimum     bool            `json:"below_minimum"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// StockMovementResponse represents a ledger entry in API responses
type StockMovementResponse struct {
	ID             uuid.UUID       `json:"id"`
	StoreID        uuid.UUID       `json:"store_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	MovementType   string          `json:"movement_type"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Reference      string          `json:"reference"`
	PerformedBy    *uuid.UUID      `json:"performed_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MovementListFilter represents filter options for the movement ledger
type MovementListFilter struct {
	ProductID *uuid.UUID `form:"product_id"`
	Type      string     `form:"type"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToStockItemResponse converts a domain StockItem to StockItemResponse
func ToStockItemResponse(item *inventory.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:               item.ID,
		StoreID:          item.StoreID,
		ProductID:        item.ProductID,
		Quantity:         item.Quantity,
		ReservedQuantity: item.ReservedQuantity,
		AvailableQty:     item.AvailableQuantity(),
		MinQuantity:      item.MinQuantity,
		MaxQuantity:      item.MaxQuantity,
		BelowMinimum:     item.IsBelowMinimum(),
		UpdatedAt:        item.UpdatedAt,
		Version:          item.Version,
	}
}

// ToStockItemResponses converts domain StockItems to responses
func ToStockItemResponses(items []inventory.StockItem) []StockItemResponse {
	responses := make([]StockItemResponse, len(items))
	for i := range items {
		responses[i] = ToStockItemResponse(&items[i])
	}
	return responses
}

// ToStockMovementResponse converts a domain StockMovement to its response
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:             m.ID,
		StoreID:        m.StoreID,
		ProductID:      m.ProductID,
		MovementType:   string(m.MovementType),
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reference:      m.Reference,
		PerformedBy:    m.PerformedBy,
		CreatedAt:      m.CreatedAt,
	}
}

// ToStockMovementResponses converts domain StockMovements to responses
func ToStockMovementResponses(movements []inventory.StockMovement) []StockMovementResponse {
	responses := make([]StockMovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToStockMovementResponse(&movements[i])
	}
	return responses
}
