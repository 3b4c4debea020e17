package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PeriodicTrigger submits a named task to the runner on a fixed interval.
// The first submission happens one interval after Start, not immediately,
// so restarts don't stampede the database.
type PeriodicTrigger struct {
	task     string
	interval time.Duration
	runner   *Runner
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewPeriodicTrigger creates a trigger for a registered task.
func NewPeriodicTrigger(task string, interval time.Duration, runner *Runner, logger *zap.Logger) *PeriodicTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodicTrigger{
		task:     task,
		interval: interval,
		runner:   runner,
		logger:   logger,
	}
}

// Start begins the periodic submission loop. A non-positive interval
// disables the trigger.
func (t *PeriodicTrigger) Start(ctx context.Context) {
	if t.interval <= 0 {
		t.logger.Info("Periodic trigger disabled", zap.String("task", t.task))
		return
	}

	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.loop(ctx)

	t.logger.Info("Periodic trigger started",
		zap.String("task", t.task),
		zap.Duration("interval", t.interval),
	)
}

// Stop halts the loop.
func (t *PeriodicTrigger) Stop() {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
}

func (t *PeriodicTrigger) loop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.runner.Submit(t.task); err != nil {
				t.logger.Warn("Failed to submit periodic task",
					zap.String("task", t.task),
					zap.Error(err),
				)
			}
		}
	}
}
