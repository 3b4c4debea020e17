package register

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/register"
)

// OpenSessionRequest opens a cashier shift with the counted opening float
type OpenSessionRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float" binding:"required"`
	OpenedBy     uuid.UUID       `json:"-"`
}

// CashMovementRequest records a manual pay-in or pay-out on the open session
type CashMovementRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Reason      string          `json:"reason" binding:"required,min=1,max=200"`
	PerformedBy uuid.UUID       `json:"-"`
}

// CloseSessionRequest reconciles the drawer and closes the session. ApproverID
// and Pin are only needed when the discrepancy exceeds the store tolerance.
type CloseSessionRequest struct {
	CountedCash decimal.Decimal `json:"counted_cash" binding:"required"`
	Note        string          `json:"note" binding:"max=500"`
	ApproverID  *uuid.UUID      `json:"approver_id"`
	Pin         string          `json:"pin" binding:"omitempty,min=4,max=6"`
	ClosedBy    uuid.UUID       `json:"-"`
}

// CashMovementResponse represents a drawer movement in API responses
type CashMovementResponse struct {
	ID          uuid.UUID       `json:"id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	PerformedBy uuid.UUID       `json:"performed_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SessionResponse represents a cash session in API responses
type SessionResponse struct {
	ID              uuid.UUID              `json:"id"`
	StoreID         uuid.UUID              `json:"store_id"`
	Status          string                 `json:"status"`
	OpenedBy        uuid.UUID              `json:"opened_by"`
	OpenedAt        time.Time              `json:"opened_at"`
	ClosedAt        *time.Time             `json:"closed_at,omitempty"`
	ClosedBy        *uuid.UUID             `json:"closed_by,omitempty"`
	OpeningFloat    decimal.Decimal        `json:"opening_float"`
	CashSalesTotal  decimal.Decimal        `json:"cash_sales_total"`
	OtherSalesTotal decimal.Decimal        `json:"other_sales_total"`
	PayInTotal      decimal.Decimal        `json:"pay_in_total"`
	PayOutTotal     decimal.Decimal        `json:"pay_out_total"`
	SalesCount      int                    `json:"sales_count"`
	ExpectedCash    decimal.Decimal        `json:"expected_cash"`
	CountedCash     decimal.Decimal        `json:"counted_cash"`
	Discrepancy     decimal.Decimal        `json:"discrepancy"`
	ApprovedBy      *uuid.UUID             `json:"approved_by,omitempty"`
	Note            string                 `json:"note,omitempty"`
	Movements       []CashMovementResponse `json:"movements"`
}

// SessionListFilter represents filter options for the session list
type SessionListFilter struct {
	Status   string     `form:"status" binding:"omitempty,oneof=OPEN CLOSED"`
	OpenedBy *uuid.UUID `form:"opened_by"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToSessionResponse converts a domain CashSession to SessionResponse.
// For open sessions ExpectedCash is computed live; closed sessions carry the
// snapshot taken at close.
func ToSessionResponse(s *register.CashSession) SessionResponse {
	movements := make([]CashMovementResponse, len(s.Movements))
	for i, movement := range s.Movements {
		movements[i] = CashMovementResponse{
			ID:          movement.ID,
			Kind:        string(movement.Kind),
			Amount:      movement.Amount,
			Reason:      movement.Reason,
			PerformedBy: movement.PerformedBy,
			CreatedAt:   movement.CreatedAt,
		}
	}

	expected := s.ExpectedCash
	if s.IsOpen() {
		expected = s.CurrentExpectedCash()
	}

	return SessionResponse{
		ID:              s.ID,
		StoreID:         s.StoreID,
		Status:          string(s.Status),
		OpenedBy:        s.OpenedBy,
		OpenedAt:        s.OpenedAt,
		ClosedAt:        s.ClosedAt,
		ClosedBy:        s.ClosedBy,
		OpeningFloat:    s.OpeningFloat,
		CashSalesTotal:  s.CashSalesTotal,
		OtherSalesTotal: s.OtherSalesTotal,
		PayInTotal:      s.PayInTotal,
		PayOutTotal:     s.PayOutTotal,
		SalesCount:      s.SalesCount,
		ExpectedCash:    expected,
		CountedCash:     s.CountedCash,
		Discrepancy:     s.Discrepancy,
		ApprovedBy:      s.ApprovedBy,
		Note:            s.Note,
		Movements:       movements,
	}
}

// ToSessionResponses converts domain CashSessions to responses
func ToSessionResponses(items []register.CashSession) []SessionResponse {
	responses := make([]SessionResponse, len(items))
	for i := range items {
		responses[i] = ToSessionResponse(&items[i])
	}
	return responses
}
