package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type expiringLock struct {
	token     string
	expiresAt time.Time
}

type expiringSummary struct {
	summary   models.RunSummary
	expiresAt time.Time
}

// MemoryRunStateRepository is the single-process run state store used when
// Redis is disabled.
type MemoryRunStateRepository struct {
	mu        sync.Mutex
	now       func() time.Time
	locks     map[int64]expiringLock
	summaries map[int64]expiringSummary
}

// NewMemoryRunStateRepository builds an empty store.
func NewMemoryRunStateRepository() *MemoryRunStateRepository {
	return &MemoryRunStateRepository{
		now:       time.Now,
		locks:     make(map[int64]expiringLock),
		summaries: make(map[int64]expiringSummary),
	}
}

func (r *MemoryRunStateRepository) AcquireLock(_ context.Context, userID int64, ttl time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if held, ok := r.locks[userID]; ok && now.Before(held.expiresAt) {
		return "", ErrLockHeld
	}
	token := uuid.NewString()
	r.locks[userID] = expiringLock{token: token, expiresAt: now.Add(ttl)}
	return token, nil
}

func (r *MemoryRunStateRepository) ReleaseLock(_ context.Context, userID int64, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if held, ok := r.locks[userID]; ok && held.token == token {
		delete(r.locks, userID)
	}
	return nil
}

func (r *MemoryRunStateRepository) SaveSummary(_ context.Context, summary *models.RunSummary, ttl time.Duration) error {
	if summary == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries[summary.UserID] = expiringSummary{summary: *summary, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *MemoryRunStateRepository) LastSummary(_ context.Context, userID int64) (*models.RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.summaries[userID]
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	if !r.now().Before(stored.expiresAt) {
		delete(r.summaries, userID)
		return nil, appErrors.ErrCacheMiss
	}
	summary := stored.summary
	return &summary, nil
}

// Close releases nothing; it matches RunStateRepository.
func (r *MemoryRunStateRepository) Close() error { return nil }
