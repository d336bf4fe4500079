package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/study-planner-api/internal/models"
)

// ErrPlanItemNotUpdatable means a dated write matched no incomplete row of the user.
var ErrPlanItemNotUpdatable = errors.New("plan item missing or already complete")

// PlanRepository persists plan item dates.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository constructs a plan repository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListIncompleteForUpdate loads and row-locks the incomplete items of a user.
func (r *PlanRepository) ListIncompleteForUpdate(ctx context.Context, exec sqlx.ExtContext, userID int64) ([]models.PlanItem, error) {
	const query = `SELECT id, user_id, subject_id, name, duration_minutes, plan_date, complete, updated_at FROM plans WHERE user_id = $1 AND complete = FALSE ORDER BY id ASC FOR UPDATE`
	var items []models.PlanItem
	if err := sqlx.SelectContext(ctx, r.exec(exec), &items, query, userID); err != nil {
		return nil, fmt.Errorf("list incomplete plans: %w", err)
	}
	return items, nil
}

// ListCompletedNames returns the distinct names of a user's completed items.
func (r *PlanRepository) ListCompletedNames(ctx context.Context, exec sqlx.ExtContext, userID int64) ([]string, error) {
	const query = `SELECT DISTINCT name FROM plans WHERE user_id = $1 AND complete = TRUE`
	var names []string
	if err := sqlx.SelectContext(ctx, r.exec(exec), &names, query, userID); err != nil {
		return nil, fmt.Errorf("list completed plan names: %w", err)
	}
	return names, nil
}

// ResetIncompleteDates clears plan_date on every incomplete item of a user.
func (r *PlanRepository) ResetIncompleteDates(ctx context.Context, exec sqlx.ExtContext, userID int64) (int64, error) {
	const query = `UPDATE plans SET plan_date = NULL, updated_at = NOW() WHERE user_id = $1 AND complete = FALSE`
	res, err := r.exec(exec).ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("reset plan dates: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset plan dates rows: %w", err)
	}
	return affected, nil
}

// BulkUpdateDates writes updates in the given order. Every row must match an
// incomplete item of userID, otherwise ErrPlanItemNotUpdatable is returned.
func (r *PlanRepository) BulkUpdateDates(ctx context.Context, exec sqlx.ExtContext, userID int64, updates []models.PlanDateUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	target := r.exec(exec)
	const query = `UPDATE plans SET plan_date = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3 AND complete = FALSE`
	for _, update := range updates {
		res, err := target.ExecContext(ctx, query, update.PlanDate, update.ID, userID)
		if err != nil {
			return fmt.Errorf("update plan %d date: %w", update.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update plan %d rows: %w", update.ID, err)
		}
		if affected != 1 {
			return fmt.Errorf("update plan %d: %w", update.ID, ErrPlanItemNotUpdatable)
		}
	}
	return nil
}

// ListScheduled returns the dated items of a user within a range, ordered by date then id.
func (r *PlanRepository) ListScheduled(ctx context.Context, rng models.ScheduleRange) ([]models.ScheduledItem, error) {
	const query = `SELECT p.id, p.user_id, p.subject_id, p.name, p.duration_minutes, p.plan_date, p.complete, p.updated_at, s.name AS subject_name FROM plans p JOIN subjects s ON s.id = p.subject_id WHERE p.user_id = $1 AND p.plan_date BETWEEN $2 AND $3 ORDER BY p.plan_date ASC, p.id ASC`
	var items []models.ScheduledItem
	if err := r.db.SelectContext(ctx, &items, query, rng.UserID, rng.From, rng.To); err != nil {
		return nil, fmt.Errorf("list scheduled plans: %w", err)
	}
	return items, nil
}
