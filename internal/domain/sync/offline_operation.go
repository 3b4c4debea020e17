package sync

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/shared"
)

// OpType classifies an operation queued by an offline client
type OpType string

const (
	OpTypeSale            OpType = "sale"
	OpTypeStockAdjustment OpType = "stock_adjustment"
)

// IsValid checks if the op type is recognized
func (t OpType) IsValid() bool {
	return t == OpTypeSale || t == OpTypeStockAdjustment
}

// OfflineOperation is one queued client operation submitted in a sync push.
// ClientOpID is generated by the client and used for replay deduplication.
type OfflineOperation struct {
	ClientOpID string          `json:"client_op_id"`
	Type       OpType          `json:"type"`
	StoreID    uuid.UUID       `json:"store_id"`
	PerformedAt int64          `json:"performed_at"` // Unix seconds on the client clock
	Payload    []byte          `json:"payload"`      // Type-specific JSON body
}

// Validate checks the operation envelope
func (o OfflineOperation) Validate() error {
	if o.ClientOpID == "" || len(o.ClientOpID) > 100 {
		return shared.NewDomainError("INVALID_CLIENT_OP", "Client operation ID must be 1-100 characters")
	}
	if !o.Type.IsValid() {
		return shared.NewDomainError("INVALID_OP_TYPE", "Unknown offline operation type")
	}
	if o.StoreID == uuid.Nil {
		return shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if len(o.Payload) == 0 {
		return shared.NewDomainError("INVALID_PAYLOAD", "Operation payload cannot be empty")
	}
	return nil
}

// OpOutcome is the per-operation result of a sync push
type OpOutcome string

const (
	OpOutcomeApplied   OpOutcome = "applied"
	OpOutcomeDuplicate OpOutcome = "duplicate" // Replay of an already-applied operation
	OpOutcomeConflict  OpOutcome = "conflict"  // Applied with server-side adjustment
	OpOutcomeRejected  OpOutcome = "rejected"
)

// Conflict describes a server-side adjustment made while applying an offline
// operation. The canonical case is an offline sale clamped to the stock the
// server actually had.
type Conflict struct {
	ProductID         uuid.UUID       `json:"product_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	AppliedQuantity   decimal.Decimal `json:"applied_quantity"`
	Reason            string          `json:"reason"`
}

// OpResult reports what happened to one pushed operation
type OpResult struct {
	ClientOpID string     `json:"client_op_id"`
	Outcome    OpOutcome  `json:"outcome"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"` // Server-side ID of the created record
	Conflicts  []Conflict `json:"conflicts,omitempty"`
	Error      string     `json:"error,omitempty"`
}
