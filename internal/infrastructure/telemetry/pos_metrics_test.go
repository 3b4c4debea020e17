package telemetry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

type fakeStockHealth struct {
	lowStock     atomic.Int64
	openSessions atomic.Int64
	failLowStock atomic.Bool
	calls        atomic.Int32
}

func (f *fakeStockHealth) LowStockCount(ctx context.Context) (int64, error) {
	f.calls.Add(1)
	if f.failLowStock.Load() {
		return 0, errors.New("query failed")
	}
	return f.lowStock.Load(), nil
}

func (f *fakeStockHealth) OpenSessionCount(ctx context.Context) (int64, error) {
	return f.openSessions.Load(), nil
}

func TestNewPOSMetrics_NilMeter(t *testing.T) {
	_, err := NewPOSMetrics(nil, POSMetricsConfig{})
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestPOSMetrics_RecordSaleCompleted(t *testing.T) {
	reader, provider := testMeter(t)
	metrics, err := NewPOSMetrics(provider.Meter("test"), POSMetricsConfig{Logger: zap.NewNop()})
	require.NoError(t, err)

	storeID := uuid.New()
	metrics.RecordSaleCompleted(context.Background(), storeID, "CASH", decimal.NewFromInt(7000))
	metrics.RecordSaleCompleted(context.Background(), storeID, "CASH", decimal.NewFromInt(3000))

	rm := collectMetrics(t, reader)

	count := findMetric(rm, "pos.sales.completed_total")
	require.NotNil(t, count)
	countSum := count.Data.(metricdata.Sum[int64])
	require.Len(t, countSum.DataPoints, 1)
	assert.Equal(t, int64(2), countSum.DataPoints[0].Value)

	amount := findMetric(rm, "pos.sales.amount_total")
	require.NotNil(t, amount)
	amountSum := amount.Data.(metricdata.Sum[float64])
	require.Len(t, amountSum.DataPoints, 1)
	assert.InDelta(t, 10000, amountSum.DataPoints[0].Value, 0.001)

	method, ok := amountSum.DataPoints[0].Attributes.Value(AttrPaymentMethod)
	require.True(t, ok)
	assert.Equal(t, "CASH", method.AsString())
}

func TestPOSMetrics_RecordSessionClosed(t *testing.T) {
	reader, provider := testMeter(t)
	metrics, err := NewPOSMetrics(provider.Meter("test"), POSMetricsConfig{Logger: zap.NewNop()})
	require.NoError(t, err)

	// Discrepancy is recorded as an absolute value
	metrics.RecordSessionClosed(context.Background(), uuid.New(), decimal.NewFromInt(-250))

	rm := collectMetrics(t, reader)
	hist := findMetric(rm, "pos.sessions.discrepancy")
	require.NotNil(t, hist)
	data := hist.Data.(metricdata.Histogram[float64])
	require.Len(t, data.DataPoints, 1)
	assert.InDelta(t, 250, data.DataPoints[0].Sum, 0.001)
}

func TestPOSMetrics_PeriodicCollection(t *testing.T) {
	reader, provider := testMeter(t)
	health := &fakeStockHealth{}
	health.lowStock.Store(4)
	health.openSessions.Store(2)

	metrics, err := NewPOSMetrics(provider.Meter("test"), POSMetricsConfig{
		Provider:        health,
		Logger:          zap.NewNop(),
		CollectInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	metrics.StartCollection(context.Background())
	defer metrics.StopCollection()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if health.calls.Load() >= 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.GreaterOrEqual(t, health.calls.Load(), int32(1))

	// Give the collector a beat to record after the provider returned
	time.Sleep(20 * time.Millisecond)
	rm := collectMetrics(t, reader)

	low := findMetric(rm, "pos.inventory.low_stock_count")
	require.NotNil(t, low)
	assert.Equal(t, int64(4), low.Data.(metricdata.Gauge[int64]).DataPoints[0].Value)

	open := findMetric(rm, "pos.sessions.open_count")
	require.NotNil(t, open)
	assert.Equal(t, int64(2), open.Data.(metricdata.Gauge[int64]).DataPoints[0].Value)
}

func TestPOSMetrics_CollectionWithoutProvider(t *testing.T) {
	_, provider := testMeter(t)
	metrics, err := NewPOSMetrics(provider.Meter("test"), POSMetricsConfig{Logger: zap.NewNop()})
	require.NoError(t, err)

	// No provider configured: StartCollection is a no-op
	metrics.StartCollection(context.Background())
	metrics.StopCollection()
}

func TestPOSMetrics_ProviderErrorDoesNotPanic(t *testing.T) {
	_, provider := testMeter(t)
	health := &fakeStockHealth{}
	health.failLowStock.Store(true)

	metrics, err := NewPOSMetrics(provider.Meter("test"), POSMetricsConfig{
		Provider: health,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)

	metrics.collect(context.Background())
}
