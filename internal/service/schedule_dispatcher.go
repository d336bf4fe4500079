package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/jobs"
)

const scheduleRunJobType = "schedule_run"

type scheduleRunner interface {
	Run(ctx context.Context, userID int64) (*models.RunSummary, error)
}

// ScheduleDispatcherConfig tunes the asynchronous run queue.
type ScheduleDispatcherConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	JobTTL     time.Duration
}

// ScheduleDispatcher runs schedules on a background worker pool and keeps the
// status of recent jobs in memory.
type ScheduleDispatcher struct {
	runner  scheduleRunner
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration

	mu   sync.RWMutex
	jobs map[string]*models.RunJob
}

// NewScheduleDispatcher builds a dispatcher; call Start before Enqueue.
func NewScheduleDispatcher(runner scheduleRunner, metrics *MetricsService, logger *zap.Logger, cfg ScheduleDispatcherConfig) *ScheduleDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	d := &ScheduleDispatcher{
		runner:  runner,
		metrics: metrics,
		logger:  logger,
		ttl:     cfg.JobTTL,
		jobs:    make(map[string]*models.RunJob),
	}
	d.queue = jobs.NewQueue("schedule-runs", d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Retryable:  retryableRunError,
		OnDone:     d.finish,
		Logger:     logger,
	})
	return d
}

// Start launches the workers.
func (d *ScheduleDispatcher) Start(ctx context.Context) { d.queue.Start(ctx) }

// Stop waits for in-flight runs to return. Runs still queued or waiting for a
// retry are marked failed.
func (d *ScheduleDispatcher) Stop() { d.queue.Stop() }

// Enqueue schedules a run for userID and returns the queued job.
func (d *ScheduleDispatcher) Enqueue(userID int64) (*models.RunJob, error) {
	if userID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id must be positive")
	}
	job := &models.RunJob{ID: uuid.NewString(), UserID: userID, Status: models.RunJobQueued, EnqueuedAt: time.Now().UTC()}

	d.mu.Lock()
	d.pruneLocked(job.EnqueuedAt)
	d.jobs[job.ID] = job
	d.mu.Unlock()

	d.metrics.JobQueued()
	if err := d.queue.Enqueue(jobs.Job{ID: job.ID, Type: scheduleRunJobType, Payload: userID, Enqueued: job.EnqueuedAt}); err != nil {
		d.metrics.JobFinished()
		d.mu.Lock()
		delete(d.jobs, job.ID)
		d.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "schedule queue unavailable")
	}

	snapshot := *job
	return &snapshot, nil
}

// Job returns a copy of a job owned by userID.
func (d *ScheduleDispatcher) Job(id string, userID int64) (*models.RunJob, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	job, ok := d.jobs[id]
	if !ok || job.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule job not found")
	}
	snapshot := *job
	return &snapshot, nil
}

func (d *ScheduleDispatcher) handle(ctx context.Context, job jobs.Job) error {
	userID, ok := job.Payload.(int64)
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "schedule job payload must be a user id")
	}
	summary, err := d.runner.Run(ctx, userID)
	if err != nil {
		return err
	}
	d.mu.Lock()
	if tracked, ok := d.jobs[job.ID]; ok {
		tracked.Summary = summary
	}
	d.mu.Unlock()
	return nil
}

func (d *ScheduleDispatcher) finish(job jobs.Job, err error) {
	d.metrics.JobFinished()

	d.mu.Lock()
	defer d.mu.Unlock()
	tracked, ok := d.jobs[job.ID]
	if !ok {
		return
	}
	if err != nil {
		tracked.Status = models.RunJobFailed
		tracked.Error = appErrors.FromError(err).Message
		if errors.Is(err, jobs.ErrQueueClosed) {
			tracked.Error = "run cancelled before it could finish"
		}
		return
	}
	tracked.Status = models.RunJobSucceeded
}

func (d *ScheduleDispatcher) pruneLocked(now time.Time) {
	for id, job := range d.jobs {
		if job.Status != models.RunJobQueued && now.Sub(job.EnqueuedAt) > d.ttl {
			delete(d.jobs, id)
		}
	}
}

// retryableRunError retries transient failures and lock contention only.
func retryableRunError(err error) bool {
	var appErr *appErrors.Error
	if !errors.As(err, &appErr) {
		return true
	}
	switch appErr.Code {
	case appErrors.ErrInternal.Code, appErrors.ErrUnavailable.Code, appErrors.ErrRunInProgress.Code:
		return true
	}
	return false
}
