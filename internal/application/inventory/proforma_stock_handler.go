package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nextstock/backend/internal/domain/sales"
	"github.com/nextstock/backend/internal/domain/shared"
)

// ProformaStockHandler manages stock reservations for the proforma lifecycle:
// issuing reserves stock, expiry and cancellation release it. Conversion is
// handled synchronously by the sale service so the commit and the sale land
// in one flow.
type ProformaStockHandler struct {
	stockService *StockService
	logger       *zap.Logger
}

// NewProformaStockHandler creates a new handler for proforma stock effects
func NewProformaStockHandler(stockService *StockService, logger *zap.Logger) *ProformaStockHandler {
	return &ProformaStockHandler{
		stockService: stockService,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ProformaStockHandler) EventTypes() []string {
	return []string{
		sales.EventTypeProformaIssued,
		sales.EventTypeProformaExpired,
		sales.EventTypeProformaCancelled,
	}
}

// Handle processes proforma lifecycle events
func (h *ProformaStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sales.ProformaIssuedEvent:
		return h.reserve(ctx, e)
	case *sales.ProformaExpiredEvent:
		return h.release(ctx, e.StoreID, e.Number, e.Lines)
	case *sales.ProformaCancelledEvent:
		if !e.WasIssued {
			return nil
		}
		return h.release(ctx, e.StoreID, e.Number, e.Lines)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *ProformaStockHandler) reserve(ctx context.Context, event *sales.ProformaIssuedEvent) error {
	// All-or-nothing: release already-taken holds if a later line fails
	reserved := make([]sales.SaleLine, 0, len(event.Lines))
	for _, line := range event.Lines {
		if err := h.stockService.Reserve(ctx, event.StoreID, line.ProductID, line.Quantity, event.Number); err != nil {
			for _, taken := range reserved {
				if relErr := h.stockService.Release(ctx, event.StoreID, taken.ProductID, taken.Quantity, event.Number); relErr != nil {
					h.logger.Error("failed to release reservation during compensation",
						zap.String("proforma", event.Number),
						zap.String("product_id", taken.ProductID.String()),
						zap.Error(relErr),
					)
				}
			}
			return fmt.Errorf("reservation failed for proforma %s: %w", event.Number, err)
		}
		reserved = append(reserved, line)
	}

	h.logger.Info("stock reserved for proforma",
		zap.String("proforma", event.Number),
		zap.String("store_id", event.StoreID.String()),
		zap.Int("lines", len(event.Lines)),
	)
	return nil
}

func (h *ProformaStockHandler) release(ctx context.Context, storeID uuid.UUID, number string, lines []sales.SaleLine) error {
	for _, line := range lines {
		if err := h.stockService.Release(ctx, storeID, line.ProductID, line.Quantity, number); err != nil {
			h.logger.Error("failed to release proforma reservation",
				zap.String("proforma", number),
				zap.String("product_id", line.ProductID.String()),
				zap.Error(err),
			)
			return fmt.Errorf("reservation release failed for proforma %s: %w", number, err)
		}
	}

	h.logger.Info("proforma reservations released",
		zap.String("proforma", number),
		zap.Int("lines", len(lines)),
	)
	return nil
}

var _ shared.EventHandler = (*ProformaStockHandler)(nil)
