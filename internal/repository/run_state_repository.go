package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

// ErrLockHeld is returned when another run owns the user's lock.
var ErrLockHeld = errors.New("schedule run lock held")

const (
	lockKeyFormat    = "scheduler:lock:%d"
	summaryKeyFormat = "scheduler:last_run:%d"
)

// releaseScript deletes the lock only if it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func lockKey(userID int64) string    { return fmt.Sprintf(lockKeyFormat, userID) }
func summaryKey(userID int64) string { return fmt.Sprintf(summaryKeyFormat, userID) }

// RunStateRepository keeps per-user run locks and last-run summaries in Redis.
type RunStateRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRunStateRepository constructs a Redis backed run state store.
func NewRunStateRepository(client *redis.Client, logger *zap.Logger) *RunStateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunStateRepository{client: client, logger: logger}
}

// AcquireLock sets the user's lock with a fresh token if it is free.
func (r *RunStateRepository) AcquireLock(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("acquire lock: redis client not configured")
	}
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, lockKey(userID), token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis setnx %s: %w", lockKey(userID), err)
	}
	if !ok {
		return "", ErrLockHeld
	}
	return token, nil
}

// ReleaseLock removes the lock if token still owns it. A lock that expired or
// was taken over is left alone.
func (r *RunStateRepository) ReleaseLock(ctx context.Context, userID int64, token string) error {
	if r.client == nil {
		return nil
	}
	released, err := releaseScript.Run(ctx, r.client, []string{lockKey(userID)}, token).Int()
	if err != nil {
		return fmt.Errorf("redis release %s: %w", lockKey(userID), err)
	}
	if released == 0 {
		r.logger.Warn("run lock expired before release", zap.Int64("user_id", userID))
	}
	return nil
}

// SaveSummary stores summary as the user's last run.
func (r *RunStateRepository) SaveSummary(ctx context.Context, summary *models.RunSummary, ttl time.Duration) error {
	if r.client == nil || summary == nil {
		return nil
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	if err := r.client.Set(ctx, summaryKey(summary.UserID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", summaryKey(summary.UserID), err)
	}
	return nil
}

// LastSummary returns appErrors.ErrCacheMiss when nothing is stored.
func (r *RunStateRepository) LastSummary(ctx context.Context, userID int64) (*models.RunSummary, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, summaryKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", summaryKey(userID), err)
	}
	var summary models.RunSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal run summary: %w", err)
	}
	return &summary, nil
}

// Close releases the underlying Redis connection if present.
func (r *RunStateRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
