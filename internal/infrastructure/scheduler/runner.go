// Package scheduler runs background maintenance jobs: the proforma expiry
// sweep and the sync change-log prune. A small worker pool executes named
// tasks with per-job timeout and bounded retries.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nextstock/backend/internal/infrastructure/config"
)

var (
	ErrRunnerNotRunning = errors.New("scheduler runner is not running")
	ErrJobQueueFull     = errors.New("scheduler job queue is full")
	ErrUnknownTask      = errors.New("unknown task")
)

// JobStatus represents the status of a background job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// TaskFunc is the unit of work a job executes.
type TaskFunc func(ctx context.Context) error

// Job is one scheduled execution of a named task.
type Job struct {
	ID          uuid.UUID
	Task        string
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob creates a pending job for a task.
func NewJob(task string, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Task:       task,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job has retries left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry re-queues the job after the retry delay
func (j *Job) ScheduleRetry(delay time.Duration) {
	j.RetryCount++
	j.Status = JobStatusPending
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// Runner executes named tasks on a bounded worker pool.
type Runner struct {
	config config.SchedulerConfig
	logger *zap.Logger

	tasksMu sync.RWMutex
	tasks   map[string]TaskFunc

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewRunner creates a runner. Tasks are registered before Start.
func NewRunner(cfg config.SchedulerConfig, logger *zap.Logger) *Runner {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 3
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		config: cfg,
		logger: logger,
		tasks:  make(map[string]TaskFunc),
		jobs:   make(chan *Job, 100),
	}
}

// Register binds a task name to its implementation.
func (r *Runner) Register(name string, fn TaskFunc) {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()
	r.tasks[name] = fn
}

// Start launches the worker pool.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = true
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.config.MaxConcurrentJobs; i++ {
		r.wg.Add(1)
		go r.worker(ctx, i)
	}

	r.logger.Info("Scheduler runner started",
		zap.Int("workers", r.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", r.config.JobTimeout),
	)
	return nil
}

// Stop drains the workers, honoring the context deadline.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	close(r.jobs)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Scheduler runner stopped gracefully")
		return nil
	case <-ctx.Done():
		r.logger.Warn("Scheduler runner stop timed out")
		return ctx.Err()
	}
}

// Submit queues one execution of a registered task.
func (r *Runner) Submit(task string) error {
	r.tasksMu.RLock()
	_, known := r.tasks[task]
	r.tasksMu.RUnlock()
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}

	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return ErrRunnerNotRunning
	}
	r.mu.Unlock()

	job := NewJob(task, r.config.RetryAttempts)
	select {
	case r.jobs <- job:
		r.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("task", job.Task),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (r *Runner) worker(ctx context.Context, workerID int) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-r.jobs:
			if !ok {
				return
			}
			r.processJob(ctx, job, workerID)
		}
	}
}

func (r *Runner) processJob(ctx context.Context, job *Job, workerID int) {
	// Retried jobs wait for their backoff before running again
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		select {
		case r.jobs <- job:
		default:
			r.logger.Warn("Failed to re-queue job for retry",
				zap.String("job_id", job.ID.String()),
			)
		}
		return
	}

	r.tasksMu.RLock()
	fn := r.tasks[job.Task]
	r.tasksMu.RUnlock()
	if fn == nil {
		job.Fail("task not registered")
		return
	}

	job.Start()

	jobCtx, cancel := context.WithTimeout(ctx, r.config.JobTimeout)
	defer cancel()

	err := fn(jobCtx)
	if err != nil {
		job.Fail(err.Error())
		r.logger.Error("Job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("task", job.Task),
			zap.Error(err),
		)

		if job.ShouldRetry() {
			job.ScheduleRetry(r.config.RetryDelay)
			r.logger.Info("Job scheduled for retry",
				zap.String("job_id", job.ID.String()),
				zap.String("task", job.Task),
				zap.Int("retry_count", job.RetryCount),
			)
			select {
			case r.jobs <- job:
			default:
				r.logger.Warn("Failed to re-queue job for retry",
					zap.String("job_id", job.ID.String()),
				)
			}
		}
		return
	}

	job.Complete()
	r.logger.Debug("Job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("task", job.Task),
	)
}
