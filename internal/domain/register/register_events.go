package register

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/shared"
)

// Event type constants for the register bounded context
const (
	EventTypeSessionOpened         = "register.session.opened"
	EventTypeSessionClosed         = "register.session.closed"
	EventTypeCashMovementRecorded  = "register.movement.recorded"
)

// SessionOpenedEvent is emitted when a cash session is opened
type SessionOpenedEvent struct {
	shared.BaseDomainEvent
	StoreID      uuid.UUID       `json:"store_id"`
	OpenedBy     uuid.UUID       `json:"opened_by"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

// NewSessionOpenedEvent creates a new session opened event
func NewSessionOpenedEvent(s *CashSession) *SessionOpenedEvent {
	return &SessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionOpened, "CashSession", s.ID),
		StoreID:         s.StoreID,
		OpenedBy:        s.OpenedBy,
		OpeningFloat:    s.OpeningFloat,
	}
}

// SessionClosedEvent is emitted when a session is reconciled and closed.
// Reports consume it for the discrepancy history.
type SessionClosedEvent struct {
	shared.BaseDomainEvent
	StoreID      uuid.UUID       `json:"store_id"`
	ClosedBy     uuid.UUID       `json:"closed_by"`
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	CountedCash  decimal.Decimal `json:"counted_cash"`
	Discrepancy  decimal.Decimal `json:"discrepancy"`
	ApprovedBy   *uuid.UUID      `json:"approved_by,omitempty"`
}

// NewSessionClosedEvent creates a new session closed event
func NewSessionClosedEvent(s *CashSession) *SessionClosedEvent {
	var closedBy uuid.UUID
	if s.ClosedBy != nil {
		closedBy = *s.ClosedBy
	}
	return &SessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionClosed, "CashSession", s.ID),
		StoreID:         s.StoreID,
		ClosedBy:        closedBy,
		ExpectedCash:    s.ExpectedCash,
		CountedCash:     s.CountedCash,
		Discrepancy:     s.Discrepancy,
		ApprovedBy:      s.ApprovedBy,
	}
}

// CashMovementRecordedEvent is emitted for manual pay-ins and pay-outs
type CashMovementRecordedEvent struct {
	shared.BaseDomainEvent
	StoreID     uuid.UUID       `json:"store_id"`
	SessionID   uuid.UUID       `json:"session_id"`
	Kind        MovementKind    `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	PerformedBy uuid.UUID       `json:"performed_by"`
}

// NewCashMovementRecordedEvent creates a new cash movement recorded event
func NewCashMovementRecordedEvent(s *CashSession, m *CashMovement) *CashMovementRecordedEvent {
	return &CashMovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashMovementRecorded, "CashSession", s.ID),
		StoreID:         s.StoreID,
		SessionID:       s.ID,
		Kind:            m.Kind,
		Amount:          m.Amount,
		Reason:          m.Reason,
		PerformedBy:     m.PerformedBy,
	}
}
