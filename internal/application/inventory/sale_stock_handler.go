package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nextstock/backend/internal/domain/sales"
	"github.com/nextstock/backend/internal/domain/shared"
)

// SaleStockHandler deducts stock when a sale completes and returns it when a
// sale is voided. Sales converted from proformas are skipped on completion:
// their stock was already committed from the reservation.
type SaleStockHandler struct {
	stockService *StockService
	logger       *zap.Logger
}

// NewSaleStockHandler creates a new handler for sale stock effects
func NewSaleStockHandler(stockService *StockService, logger *zap.Logger) *SaleStockHandler {
	return &SaleStockHandler{
		stockService: stockService,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SaleStockHandler) EventTypes() []string {
	return []string{sales.EventTypeSaleCompleted, sales.EventTypeSaleVoided}
}

// Handle processes sale completion and void events
func (h *SaleStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sales.SaleCompletedEvent:
		return h.handleCompleted(ctx, e)
	case *sales.SaleVoidedEvent:
		return h.handleVoided(ctx, e)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *SaleStockHandler) handleCompleted(ctx context.Context, event *sales.SaleCompletedEvent) error {
	if event.FromProforma {
		h.logger.Debug("skipping stock deduction for proforma conversion",
			zap.String("sale_number", event.Number),
		)
		return nil
	}

	for _, line := range event.Lines {
		if err := h.stockService.Deduct(ctx, event.StoreID, line.ProductID, line.Quantity, event.Number, &event.CashierID); err != nil {
			h.logger.Error("failed to deduct stock for sale line",
				zap.String("sale_number", event.Number),
				zap.String("product_id", line.ProductID.String()),
				zap.String("quantity", line.Quantity.String()),
				zap.Error(err),
			)
			return fmt.Errorf("stock deduction failed for sale %s: %w", event.Number, err)
		}
	}

	h.logger.Info("stock deducted for sale",
		zap.String("sale_number", event.Number),
		zap.String("store_id", event.StoreID.String()),
		zap.Int("lines", len(event.Lines)),
	)
	return nil
}

func (h *SaleStockHandler) handleVoided(ctx context.Context, event *sales.SaleVoidedEvent) error {
	for _, line := range event.Lines {
		if err := h.stockService.Return(ctx, event.StoreID, line.ProductID, line.Quantity, event.Number, &event.VoidedBy); err != nil {
			h.logger.Error("failed to return stock for voided sale line",
				zap.String("sale_number", event.Number),
				zap.String("product_id", line.ProductID.String()),
				zap.Error(err),
			)
			return fmt.Errorf("stock return failed for voided sale %s: %w", event.Number, err)
		}
	}

	h.logger.Info("stock returned for voided sale",
		zap.String("sale_number", event.Number),
		zap.String("store_id", event.StoreID.String()),
		zap.Int("lines", len(event.Lines)),
	)
	return nil
}

var _ shared.EventHandler = (*SaleStockHandler)(nil)
