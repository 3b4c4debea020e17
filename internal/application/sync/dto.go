package sync

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/sync"
)

// PullFilter is the query for a change-log pull
type PullFilter struct {
	Cursor int64 `form:"cursor" binding:"omitempty,min=0"`
	Limit  int   `form:"limit" binding:"omitempty,min=1,max=500"`
}

// ChangeEntryResponse is one change-log row returned to a syncing client
type ChangeEntryResponse struct {
	Seq        int64           `json:"seq"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Op         string          `json:"op"`
	StoreID    *uuid.UUID      `json:"store_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PullResponse carries a page of the change log
type PullResponse struct {
	Entries    []ChangeEntryResponse `json:"entries"`
	NextCursor int64                 `json:"next_cursor"`
	HasMore    bool                  `json:"has_more"`
}

// PushOperation is one queued client operation in a sync push
type PushOperation struct {
	ClientOpID  string          `json:"client_op_id" binding:"required,max=100"`
	Type        string          `json:"type" binding:"required,oneof=sale stock_adjustment"`
	PerformedAt int64           `json:"performed_at"`
	Payload     json.RawMessage `json:"payload" binding:"required"`
}

// PushRequest submits offline-queued operations for replay
type PushRequest struct {
	Operations []PushOperation `json:"operations" binding:"required,min=1,max=100,dive"`
}

// PushResponse reports the per-operation outcomes
type PushResponse struct {
	Results []sync.OpResult `json:"results"`
}

// OfflineSaleItem is one line of an offline-recorded sale
type OfflineSaleItem struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Discount  *decimal.Decimal `json:"discount,omitempty"`
}

// OfflineSalePayload is the payload of an OpTypeSale operation
type OfflineSalePayload struct {
	CashierID      uuid.UUID         `json:"cashier_id"`
	CustomerID     *uuid.UUID        `json:"customer_id,omitempty"`
	Items          []OfflineSaleItem `json:"items"`
	PaymentMethod  string            `json:"payment_method"`
	AmountTendered *decimal.Decimal  `json:"amount_tendered,omitempty"`
	Note           string            `json:"note,omitempty"`
}

// OfflineAdjustmentPayload is the payload of an OpTypeStockAdjustment operation
type OfflineAdjustmentPayload struct {
	ProductID   uuid.UUID       `json:"product_id"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason"`
	PerformedBy uuid.UUID       `json:"performed_by"`
}

// ToChangeEntryResponse converts a domain ChangeEntry
func ToChangeEntryResponse(e *sync.ChangeEntry) ChangeEntryResponse {
	return ChangeEntryResponse{
		Seq:        e.Seq,
		EntityType: string(e.EntityType),
		EntityID:   e.EntityID,
		Op:         string(e.Op),
		StoreID:    e.StoreID,
		Payload:    json.RawMessage(e.Payload),
		CreatedAt:  e.CreatedAt,
	}
}
