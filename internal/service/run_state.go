package service

import (
	"context"
	"time"

	"github.com/noah-isme/study-planner-api/internal/models"
)

//go:generate mockgen -source=run_state.go -destination=run_state_mock_test.go -package=service

// runStateStore holds per-user run locks and the last run summary.
type runStateStore interface {
	AcquireLock(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, userID int64, token string) error
	SaveSummary(ctx context.Context, summary *models.RunSummary, ttl time.Duration) error
	LastSummary(ctx context.Context, userID int64) (*models.RunSummary, error)
}
