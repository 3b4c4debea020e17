package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// StockHealthProvider supplies point-in-time inventory and register state
// for periodic gauge collection without coupling telemetry to the domain
// repositories.
type StockHealthProvider interface {
	// LowStockCount returns the number of stock items at or below their
	// minimum threshold across all stores.
	LowStockCount(ctx context.Context) (int64, error)

	// OpenSessionCount returns the number of currently open cash sessions.
	OpenSessionCount(ctx context.Context) (int64, error)
}

// POSMetricsConfig holds configuration for the business metrics.
type POSMetricsConfig struct {
	Provider        StockHealthProvider
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
}

// POSMetrics tracks sales volume, register discrepancies and inventory
// health.
type POSMetrics struct {
	logger *zap.Logger

	salesCompleted *Counter
	salesAmount    *FloatCounter
	salesVoided    *Counter

	sessionsClosed    *Counter
	discrepancyAmount *Histogram

	lowStockCount *Gauge
	openSessions  *Gauge

	provider        StockHealthProvider
	collectInterval time.Duration
	stopChan        chan struct{}
	stopOnce        sync.Once
	collectOnce     sync.Once
}

// NewPOSMetrics creates the business metrics on the given meter.
func NewPOSMetrics(meter metric.Meter, cfg POSMetricsConfig) (*POSMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	salesCompleted, err := NewCounter(meter, "pos.sales.completed_total", "Completed sales", "{sale}")
	if err != nil {
		return nil, err
	}
	salesAmount, err := NewFloatCounter(meter, "pos.sales.amount_total", "Completed sale revenue", "{currency_unit}")
	if err != nil {
		return nil, err
	}
	salesVoided, err := NewCounter(meter, "pos.sales.voided_total", "Voided sales", "{sale}")
	if err != nil {
		return nil, err
	}
	sessionsClosed, err := NewCounter(meter, "pos.sessions.closed_total", "Closed cash sessions", "{session}")
	if err != nil {
		return nil, err
	}
	discrepancyAmount, err := NewHistogram(meter, HistogramOpts{
		Name:        "pos.sessions.discrepancy",
		Description: "Absolute cash discrepancy at session close",
		Unit:        "{currency_unit}",
		Boundaries:  []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
	})
	if err != nil {
		return nil, err
	}
	lowStockCount, err := NewGauge(meter, "pos.inventory.low_stock_count", "Stock items at or below minimum", "{item}")
	if err != nil {
		return nil, err
	}
	openSessions, err := NewGauge(meter, "pos.sessions.open_count", "Currently open cash sessions", "{session}")
	if err != nil {
		return nil, err
	}

	interval := cfg.CollectInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &POSMetrics{
		logger:            logger,
		salesCompleted:    salesCompleted,
		salesAmount:       salesAmount,
		salesVoided:       salesVoided,
		sessionsClosed:    sessionsClosed,
		discrepancyAmount: discrepancyAmount,
		lowStockCount:     lowStockCount,
		openSessions:      openSessions,
		provider:          cfg.Provider,
		collectInterval:   interval,
		stopChan:          make(chan struct{}),
	}, nil
}

// RecordSaleCompleted records a completed sale with its revenue.
func (m *POSMetrics) RecordSaleCompleted(ctx context.Context, storeID uuid.UUID, paymentMethod string, total decimal.Decimal) {
	attrs := []attribute.KeyValue{
		AttrStoreID.String(storeID.String()),
		AttrPaymentMethod.String(paymentMethod),
	}
	m.salesCompleted.Inc(ctx, attrs...)
	amount, _ := total.Float64()
	m.salesAmount.Add(ctx, amount, attrs...)
}

// RecordSaleVoided records a voided sale.
func (m *POSMetrics) RecordSaleVoided(ctx context.Context, storeID uuid.UUID) {
	m.salesVoided.Inc(ctx, AttrStoreID.String(storeID.String()))
}

// RecordSessionClosed records a session close with its cash discrepancy.
func (m *POSMetrics) RecordSessionClosed(ctx context.Context, storeID uuid.UUID, discrepancy decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrStoreID.String(storeID.String())}
	m.sessionsClosed.Inc(ctx, attrs...)
	amount, _ := discrepancy.Abs().Float64()
	m.discrepancyAmount.Record(ctx, amount, attrs...)
}

// StartCollection launches the periodic gauge collector. No-op when no
// provider was configured.
func (m *POSMetrics) StartCollection(ctx context.Context) {
	if m.provider == nil {
		return
	}
	m.collectOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(m.collectInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-m.stopChan:
					return
				case <-ticker.C:
					m.collect(ctx)
				}
			}
		}()
		m.logger.Info("Business metrics collection started",
			zap.Duration("interval", m.collectInterval))
	})
}

// StopCollection halts the periodic collector.
func (m *POSMetrics) StopCollection() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *POSMetrics) collect(ctx context.Context) {
	collectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if count, err := m.provider.LowStockCount(collectCtx); err != nil {
		m.logger.Warn("Failed to collect low stock count", zap.Error(err))
	} else {
		m.lowStockCount.Record(collectCtx, count)
	}

	if count, err := m.provider.OpenSessionCount(collectCtx); err != nil {
		m.logger.Warn("Failed to collect open session count", zap.Error(err))
	} else {
		m.openSessions.Record(collectCtx, count)
	}
}
