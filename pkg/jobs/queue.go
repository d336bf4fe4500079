package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueClosed is returned by Enqueue before Start or after Stop.
var ErrQueueClosed = errors.New("queue closed")

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  any
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// Retryable reports whether a failed job should be retried. Nil retries every failure.
	Retryable func(error) bool
	// OnDone fires once per job after its final attempt; err is nil on success.
	OnDone func(Job, error)
	Logger *zap.Logger
}

// Queue is an in-memory job dispatcher backed by a fixed goroutine pool.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop cancels workers and waits for them and for pending retries to exit.
// Jobs still buffered or waiting for a retry finish with ErrQueueClosed.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.started = false
	q.mu.Unlock()
	q.wg.Wait()

	dropped := 0
	for drained := false; !drained; {
		select {
		case job := <-q.jobs:
			dropped++
			q.done(job, fmt.Errorf("queue %s: %w", q.name, ErrQueueClosed))
		default:
			drained = true
		}
	}
	q.logger.Info("queue stopped", zap.Int("dropped", dropped))
}

// Enqueue pushes a job onto the queue without blocking past a full buffer.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started || ctx.Err() != nil {
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueClosed)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueClosed)
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("queue %s full (%d buffered)", q.name, q.cfg.BufferSize)
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			err := q.handler(q.ctx, job)
			if err == nil {
				q.done(job, nil)
				continue
			}
			q.handleFailure(job, err)
		}
	}
}

func (q *Queue) done(job Job, err error) {
	if q.cfg.OnDone != nil {
		q.cfg.OnDone(job, err)
	}
}

func (q *Queue) handleFailure(job Job, err error) {
	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Error(err)}

	if q.cfg.Retryable != nil && !q.cfg.Retryable(err) {
		q.logger.Warn("job failed permanently", fields...)
		q.done(job, err)
		return
	}

	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.logger.Error("job exceeded retries", fields...)
		q.done(job, err)
		return
	}
	q.logger.Warn("job failed, retrying", append(fields, zap.Int("attempt", job.Attempt))...)

	q.wg.Add(1)
	go func(j Job) {
		defer q.wg.Done()
		timer := time.NewTimer(q.cfg.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.done(j, fmt.Errorf("queue %s: %w", q.name, ErrQueueClosed))
			return
		case <-timer.C:
			if err := q.Enqueue(j); err != nil {
				q.logger.Error("failed to requeue job", zap.String("job_id", j.ID), zap.Error(err))
				q.done(j, err)
			}
		}
	}(job)
}
