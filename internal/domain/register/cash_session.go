package register

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/shared"
)

// SessionStatus represents the status of a cash session
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "OPEN"
	SessionStatusClosed SessionStatus = "CLOSED"
)

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// MovementKind classifies a manual cash movement during a session
type MovementKind string

const (
	MovementKindPayIn  MovementKind = "PAY_IN"  // Cash added to the drawer (change float top-up)
	MovementKindPayOut MovementKind = "PAY_OUT" // Cash removed (supplier payment, bank drop)
)

// IsValid checks if the movement kind is recognized
func (k MovementKind) IsValid() bool {
	return k == MovementKindPayIn || k == MovementKindPayOut
}

// CashMovement is a manual pay-in or pay-out recorded against an open session
type CashMovement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SessionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind        MovementKind    `gorm:"size:10;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"` // Always positive
	Reason      string          `gorm:"size:200;not null"`
	PerformedBy uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// CashSession represents one cashier shift at a store register.
// At most one session may be open per store at any time; the service layer and
// a partial unique index both enforce this.
type CashSession struct {
	shared.StoreAggregateRoot
	OpenedBy  uuid.UUID     `gorm:"type:uuid;not null;index"`
	Status    SessionStatus `gorm:"size:10;not null;index"`
	OpenedAt  time.Time     `gorm:"not null"`
	ClosedAt  *time.Time
	ClosedBy  *uuid.UUID `gorm:"type:uuid"`

	OpeningFloat     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CashSalesTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OtherSalesTotal  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Card + mobile, informational
	PayInTotal       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PayOutTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SalesCount       int             `gorm:"not null;default:0"`

	CountedCash  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ExpectedCash decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Snapshot at close
	Discrepancy  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // counted - expected

	// ApprovedBy is the manager who approved an out-of-tolerance close.
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`
	Note       string     `gorm:"size:500"`

	Movements []CashMovement `gorm:"foreignKey:SessionID"`
}

// TableName returns the table name for GORM
func (CashSession) TableName() string {
	return "cash_sessions"
}

// NewCashSession opens a new session with the counted opening float
func NewCashSession(storeID, openedBy uuid.UUID, openingFloat decimal.Decimal) (*CashSession, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if openedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Opening user cannot be empty")
	}
	if openingFloat.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FLOAT", "Opening float cannot be negative")
	}

	session := &CashSession{
		StoreAggregateRoot: shared.NewStoreAggregateRootWithCreator(storeID, openedBy),
		OpenedBy:           openedBy,
		Status:             SessionStatusOpen,
		OpenedAt:           time.Now(),
		OpeningFloat:       openingFloat,
		CashSalesTotal:     decimal.Zero,
		OtherSalesTotal:    decimal.Zero,
		PayInTotal:         decimal.Zero,
		PayOutTotal:        decimal.Zero,
		CountedCash:        decimal.Zero,
		ExpectedCash:       decimal.Zero,
		Discrepancy:        decimal.Zero,
		Movements:          make([]CashMovement, 0),
	}

	session.AddDomainEvent(NewSessionOpenedEvent(session))

	return session, nil
}

// IsOpen returns true while the session accepts activity
func (s *CashSession) IsOpen() bool {
	return s.Status == SessionStatusOpen
}

// CurrentExpectedCash returns the cash the drawer should hold right now:
// opening float + cash sales + pay-ins - pay-outs.
func (s *CashSession) CurrentExpectedCash() decimal.Decimal {
	return s.OpeningFloat.Add(s.CashSalesTotal).Add(s.PayInTotal).Sub(s.PayOutTotal)
}

// RecordSale accrues a completed sale onto the session totals
func (s *CashSession) RecordSale(amount decimal.Decimal, cash bool) error {
	if !s.IsOpen() {
		return shared.NewDomainError("SESSION_CLOSED", "Cannot record sales on a closed session")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Sale amount cannot be negative")
	}

	if cash {
		s.CashSalesTotal = s.CashSalesTotal.Add(amount)
	} else {
		s.OtherSalesTotal = s.OtherSalesTotal.Add(amount)
	}
	s.SalesCount++
	s.touch()

	return nil
}

// RecordVoid reverses a previously recorded sale after it is voided
func (s *CashSession) RecordVoid(amount decimal.Decimal, cash bool) error {
	if !s.IsOpen() {
		return shared.NewDomainError("SESSION_CLOSED", "Cannot record voids on a closed session")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Void amount cannot be negative")
	}

	if cash {
		s.CashSalesTotal = s.CashSalesTotal.Sub(amount)
	} else {
		s.OtherSalesTotal = s.OtherSalesTotal.Sub(amount)
	}
	if s.SalesCount > 0 {
		s.SalesCount--
	}
	s.touch()

	return nil
}

// RecordPayIn adds cash to the drawer outside of sales
func (s *CashSession) RecordPayIn(amount decimal.Decimal, reason string, performedBy uuid.UUID) (*CashMovement, error) {
	return s.recordMovement(MovementKindPayIn, amount, reason, performedBy)
}

// RecordPayOut removes cash from the drawer. A pay-out cannot exceed the cash
// currently expected in the drawer.
func (s *CashSession) RecordPayOut(amount decimal.Decimal, reason string, performedBy uuid.UUID) (*CashMovement, error) {
	if amount.GreaterThan(s.CurrentExpectedCash()) {
		return nil, shared.NewDomainError("INSUFFICIENT_CASH", "Pay-out exceeds the cash in the drawer")
	}
	return s.recordMovement(MovementKindPayOut, amount, reason, performedBy)
}

func (s *CashSession) recordMovement(kind MovementKind, amount decimal.Decimal, reason string, performedBy uuid.UUID) (*CashMovement, error) {
	if !s.IsOpen() {
		return nil, shared.NewDomainError("SESSION_CLOSED", "Cannot record movements on a closed session")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	if reason == "" {
		return nil, shared.NewDomainError("REASON_REQUIRED", "A movement reason is required")
	}
	if performedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Performing user cannot be empty")
	}

	movement := CashMovement{
		ID:          uuid.New(),
		SessionID:   s.ID,
		Kind:        kind,
		Amount:      amount,
		Reason:      reason,
		PerformedBy: performedBy,
		CreatedAt:   time.Now(),
	}

	s.Movements = append(s.Movements, movement)
	if kind == MovementKindPayIn {
		s.PayInTotal = s.PayInTotal.Add(amount)
	} else {
		s.PayOutTotal = s.PayOutTotal.Add(amount)
	}
	s.touch()

	s.AddDomainEvent(NewCashMovementRecordedEvent(s, &movement))

	return &movement, nil
}

// Close reconciles the drawer and closes the session. The discrepancy is
// counted minus expected. When its absolute value exceeds the tolerance an
// approving manager must already be identified (PIN verification happens in
// the application service); closing without one returns ErrApprovalRequired.
func (s *CashSession) Close(countedCash decimal.Decimal, closedBy uuid.UUID, tolerance decimal.Decimal, approvedBy *uuid.UUID, note string) error {
	if !s.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close session in %s status", s.Status))
	}
	if countedCash.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Counted cash cannot be negative")
	}
	if closedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Closing user cannot be empty")
	}

	expected := s.CurrentExpectedCash()
	discrepancy := countedCash.Sub(expected)

	if discrepancy.Abs().GreaterThan(tolerance) {
		if approvedBy == nil {
			return shared.ErrApprovalRequired
		}
		if *approvedBy == closedBy {
			return shared.NewDomainError("SELF_APPROVAL", "A session close cannot be approved by the closing user")
		}
	}

	now := time.Now()
	s.Status = SessionStatusClosed
	s.ClosedAt = &now
	s.ClosedBy = &closedBy
	s.CountedCash = countedCash
	s.ExpectedCash = expected
	s.Discrepancy = discrepancy
	if discrepancy.Abs().GreaterThan(tolerance) {
		s.ApprovedBy = approvedBy
	}
	if note != "" {
		s.Note = note
	}
	s.touch()

	s.AddDomainEvent(NewSessionClosedEvent(s))

	return nil
}

// HasDiscrepancy returns true if counted and expected cash differ
func (s *CashSession) HasDiscrepancy() bool {
	return !s.Discrepancy.IsZero()
}

// Duration returns the shift length, or the elapsed time for open sessions
func (s *CashSession) Duration() time.Duration {
	if s.ClosedAt != nil {
		return s.ClosedAt.Sub(s.OpenedAt)
	}
	return time.Since(s.OpenedAt)
}

func (s *CashSession) touch() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
