package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/nextstock/backend/internal/infrastructure/config"
)

// Task names for the maintenance jobs
const (
	TaskProformaExpiry = "proforma_expiry_sweep"
	TaskChangeLogPrune = "change_log_prune"
)

// ProformaExpirer expires issued proformas whose validity has passed.
type ProformaExpirer interface {
	ExpireDue(ctx context.Context, limit int) (int, error)
}

// ChangeLogPruner trims the sync change log to its retention size.
type ChangeLogPruner interface {
	PruneChangeLog(ctx context.Context, retain int64) (int64, error)
}

// Maintenance owns the background maintenance jobs: a runner plus one
// periodic trigger per sweep.
type Maintenance struct {
	runner   *Runner
	triggers []*PeriodicTrigger
	logger   *zap.Logger
}

// NewMaintenance registers the proforma expiry sweep and the change-log
// prune on a runner and prepares their triggers.
func NewMaintenance(
	schedulerCfg config.SchedulerConfig,
	proformaCfg config.ProformaConfig,
	syncCfg config.SyncConfig,
	expirer ProformaExpirer,
	pruner ChangeLogPruner,
	logger *zap.Logger,
) *Maintenance {
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := NewRunner(schedulerCfg, logger)

	batchSize := proformaCfg.SweepBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	runner.Register(TaskProformaExpiry, func(ctx context.Context) error {
		expired, err := expirer.ExpireDue(ctx, batchSize)
		if err != nil {
			return err
		}
		if expired > 0 {
			logger.Info("Expired proformas", zap.Int("count", expired))
		}
		return nil
	})

	retention := syncCfg.ChangeLogRetention
	runner.Register(TaskChangeLogPrune, func(ctx context.Context) error {
		if retention <= 0 {
			return nil
		}
		pruned, err := pruner.PruneChangeLog(ctx, retention)
		if err != nil {
			return err
		}
		if pruned > 0 {
			logger.Info("Pruned change log", zap.Int64("entries", pruned))
		}
		return nil
	})

	return &Maintenance{
		runner: runner,
		triggers: []*PeriodicTrigger{
			NewPeriodicTrigger(TaskProformaExpiry, proformaCfg.SweepInterval, runner, logger),
			NewPeriodicTrigger(TaskChangeLogPrune, syncCfg.PruneInterval, runner, logger),
		},
		logger: logger,
	}
}

// Start launches the runner and its triggers.
func (m *Maintenance) Start(ctx context.Context) error {
	if err := m.runner.Start(ctx); err != nil {
		return err
	}
	for _, trigger := range m.triggers {
		trigger.Start(ctx)
	}
	return nil
}

// Stop halts the triggers, then drains the runner.
func (m *Maintenance) Stop(ctx context.Context) error {
	for _, trigger := range m.triggers {
		trigger.Stop()
	}
	return m.runner.Stop(ctx)
}

// Runner exposes the underlying runner for ad-hoc submissions.
func (m *Maintenance) Runner() *Runner {
	return m.runner
}
