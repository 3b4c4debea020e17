package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nextstock/backend/internal/infrastructure/config"
)

const defaultSlowQueryThresh = 200 * time.Millisecond

// RegisterDBTracing attaches the otelgorm plugin plus a slow-query warning
// callback to a GORM connection.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		logger.Info("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName("pos"),
	}
	if !cfg.DBLogFullSQL {
		// Keep bind parameters out of spans in production
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}

	thresh := cfg.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = defaultSlowQueryThresh
	}
	if err := registerSlowQueryCallbacks(db, thresh, cfg.DBLogFullSQL, logger); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Duration("slow_query_threshold", thresh),
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
	)
	return nil
}

type dbStartTimeKey struct{}

func registerSlowQueryCallbacks(db *gorm.DB, thresh time.Duration, logSQL bool, logger *zap.Logger) error {
	before := func(tx *gorm.DB) {
		tx.Statement.Context = context.WithValue(tx.Statement.Context, dbStartTimeKey{}, time.Now())
	}
	after := func(tx *gorm.DB) {
		start, ok := tx.Statement.Context.Value(dbStartTimeKey{}).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		if elapsed < thresh {
			return
		}
		fields := []zap.Field{
			zap.Duration("elapsed", elapsed),
			zap.String("table", tx.Statement.Table),
			zap.Int64("rows", tx.Statement.RowsAffected),
		}
		if logSQL {
			fields = append(fields, zap.String("sql", tx.Statement.SQL.String()))
		}
		logger.Warn("Slow query", fields...)
	}

	if err := db.Callback().Create().Before("gorm:create").Register("slow_query:before_create", before); err != nil {
		return fmt.Errorf("failed to register create callback: %w", err)
	}
	if err := db.Callback().Create().After("gorm:create").Register("slow_query:after_create", after); err != nil {
		return fmt.Errorf("failed to register create callback: %w", err)
	}
	if err := db.Callback().Query().Before("gorm:query").Register("slow_query:before_query", before); err != nil {
		return fmt.Errorf("failed to register query callback: %w", err)
	}
	if err := db.Callback().Query().After("gorm:query").Register("slow_query:after_query", after); err != nil {
		return fmt.Errorf("failed to register query callback: %w", err)
	}
	if err := db.Callback().Update().Before("gorm:update").Register("slow_query:before_update", before); err != nil {
		return fmt.Errorf("failed to register update callback: %w", err)
	}
	if err := db.Callback().Update().After("gorm:update").Register("slow_query:after_update", after); err != nil {
		return fmt.Errorf("failed to register update callback: %w", err)
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("slow_query:before_delete", before); err != nil {
		return fmt.Errorf("failed to register delete callback: %w", err)
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("slow_query:after_delete", after); err != nil {
		return fmt.Errorf("failed to register delete callback: %w", err)
	}
	return nil
}

// DBPoolMetrics periodically records sql.DB connection pool statistics.
type DBPoolMetrics struct {
	sqlDB    *sql.DB
	interval time.Duration
	logger   *zap.Logger

	openConns  *Gauge
	inUseConns *Gauge
	idleConns  *Gauge
	waitCount  *Counter

	lastWaitCount int64
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewDBPoolMetrics creates the pool gauges on the given meter.
func NewDBPoolMetrics(meter metric.Meter, sqlDB *sql.DB, logger *zap.Logger) (*DBPoolMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	openConns, err := NewGauge(meter, "db.pool.open_connections", "Open connections in the pool", "{connection}")
	if err != nil {
		return nil, err
	}
	inUseConns, err := NewGauge(meter, "db.pool.in_use", "Connections currently in use", "{connection}")
	if err != nil {
		return nil, err
	}
	idleConns, err := NewGauge(meter, "db.pool.idle", "Idle connections in the pool", "{connection}")
	if err != nil {
		return nil, err
	}
	waitCount, err := NewCounter(meter, "db.pool.wait_total", "Connections waited for", "{wait}")
	if err != nil {
		return nil, err
	}

	return &DBPoolMetrics{
		sqlDB:      sqlDB,
		interval:   30 * time.Second,
		logger:     logger,
		openConns:  openConns,
		inUseConns: inUseConns,
		idleConns:  idleConns,
		waitCount:  waitCount,
		stopChan:   make(chan struct{}),
	}, nil
}

// Start begins periodic collection.
func (m *DBPoolMetrics) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
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
}

// Stop halts collection.
func (m *DBPoolMetrics) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *DBPoolMetrics) collect(ctx context.Context) {
	stats := m.sqlDB.Stats()
	m.openConns.Record(ctx, int64(stats.OpenConnections))
	m.inUseConns.Record(ctx, int64(stats.InUse))
	m.idleConns.Record(ctx, int64(stats.Idle))

	if delta := stats.WaitCount - m.lastWaitCount; delta > 0 {
		m.waitCount.Add(ctx, delta)
	}
	m.lastWaitCount = stats.WaitCount
}
