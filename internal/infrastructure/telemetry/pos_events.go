package telemetry

import (
	"context"

	"github.com/nextstock/backend/internal/domain/register"
	"github.com/nextstock/backend/internal/domain/sales"
	"github.com/nextstock/backend/internal/domain/shared"
)

// POSEventRecorder feeds the business metrics from domain events so the
// application services stay unaware of telemetry.
type POSEventRecorder struct {
	metrics *POSMetrics
}

// NewPOSEventRecorder creates a new POSEventRecorder
func NewPOSEventRecorder(metrics *POSMetrics) *POSEventRecorder {
	return &POSEventRecorder{metrics: metrics}
}

// Handle records the metric matching the event. Unknown events are ignored.
func (r *POSEventRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sales.SaleCompletedEvent:
		r.metrics.RecordSaleCompleted(ctx, e.StoreID, string(e.PaymentMethod), e.TotalAmount)
	case *sales.SaleVoidedEvent:
		r.metrics.RecordSaleVoided(ctx, e.StoreID)
	case *register.SessionClosedEvent:
		r.metrics.RecordSessionClosed(ctx, e.StoreID, e.Discrepancy)
	}
	return nil
}

// EventTypes returns the event types this handler subscribes to
func (r *POSEventRecorder) EventTypes() []string {
	return []string{
		sales.EventTypeSaleCompleted,
		sales.EventTypeSaleVoided,
		register.EventTypeSessionClosed,
	}
}
