package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPermanent = errors.New("permanent")

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "1"})
	require.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	done := make(chan error, 1)

	q := NewQueue("test", func(context.Context, Job) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		OnDone:     func(_ Job, err error) { done <- err },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1"}))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestQueueSkipsRetryForPermanentErrors(t *testing.T) {
	var calls atomic.Int32
	done := make(chan error, 1)

	q := NewQueue("test", func(context.Context, Job) error {
		calls.Add(1)
		return errPermanent
	}, QueueConfig{
		MaxRetries: 5,
		RetryDelay: time.Millisecond,
		Retryable:  func(err error) bool { return !errors.Is(err, errPermanent) },
		OnDone:     func(_ Job, err error) { done <- err },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1"}))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errPermanent)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueueStopFinishesPendingRetry(t *testing.T) {
	attempted := make(chan struct{}, 1)
	var mu sync.Mutex
	var results []error

	q := NewQueue("test", func(context.Context, Job) error {
		attempted <- struct{}{}
		return errors.New("transient")
	}, QueueConfig{
		MaxRetries: 3,
		RetryDelay: time.Hour,
		OnDone: func(_ Job, err error) {
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
		},
	})
	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "1"}))

	select {
	case <-attempted:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not attempted")
	}
	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0], ErrQueueClosed)
}

func TestQueueStopFinishesBufferedJobs(t *testing.T) {
	started := make(chan struct{}, 1)
	var mu sync.Mutex
	finished := map[string]error{}

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}, QueueConfig{
		Workers:    1,
		BufferSize: 4,
		MaxRetries: 1,
		RetryDelay: time.Hour,
		OnDone: func(job Job, err error) {
			mu.Lock()
			finished[job.ID] = err
			mu.Unlock()
		},
	})
	q.Start(context.Background())
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, q.Enqueue(Job{ID: id}))
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not pick up a job")
	}
	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, finished, 3)
	for id, err := range finished {
		assert.ErrorIs(t, err, ErrQueueClosed, "job %s", id)
	}
	assert.ErrorIs(t, q.Enqueue(Job{ID: "4"}), ErrQueueClosed)
}
