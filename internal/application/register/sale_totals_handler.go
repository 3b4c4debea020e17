package register

import (
	"context"

	"go.uber.org/zap"

	"github.com/nextstock/backend/internal/domain/sales"
	"github.com/nextstock/backend/internal/domain/shared"
)

// SaleTotalsHandler accrues completed and voided sales onto the cash session
// they were rung up against.
type SaleTotalsHandler struct {
	sessionService *SessionService
	logger         *zap.Logger
}

// NewSaleTotalsHandler creates a new SaleTotalsHandler
func NewSaleTotalsHandler(sessionService *SessionService, logger *zap.Logger) *SaleTotalsHandler {
	return &SaleTotalsHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// EventTypes returns the event types this handler processes
func (h *SaleTotalsHandler) EventTypes() []string {
	return []string{
		sales.EventTypeSaleCompleted,
		sales.EventTypeSaleVoided,
	}
}

// Handle processes sale lifecycle events
func (h *SaleTotalsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sales.SaleCompletedEvent:
		return h.handleCompleted(ctx, e)
	case *sales.SaleVoidedEvent:
		return h.handleVoided(ctx, e)
	default:
		return nil
	}
}

func (h *SaleTotalsHandler) handleCompleted(ctx context.Context, event *sales.SaleCompletedEvent) error {
	if event.SessionID == nil {
		// Card and mobile sales may complete without an open session
		return nil
	}

	cash := event.PaymentMethod == sales.PaymentMethodCash
	if err := h.sessionService.ApplySale(ctx, *event.SessionID, event.TotalAmount, cash); err != nil {
		h.logger.Error("failed to accrue sale onto session",
			zap.String("number", event.Number),
			zap.String("session_id", event.SessionID.String()),
			zap.Error(err),
		)
		return err
	}

	h.logger.Debug("sale accrued onto session",
		zap.String("number", event.Number),
		zap.String("session_id", event.SessionID.String()),
	)
	return nil
}

func (h *SaleTotalsHandler) handleVoided(ctx context.Context, event *sales.SaleVoidedEvent) error {
	if event.SessionID == nil {
		return nil
	}

	cash := event.PaymentMethod == sales.PaymentMethodCash
	if err := h.sessionService.ApplyVoid(ctx, *event.SessionID, event.TotalAmount, cash); err != nil {
		h.logger.Error("failed to reverse voided sale on session",
			zap.String("number", event.Number),
			zap.String("session_id", event.SessionID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*SaleTotalsHandler)(nil)
