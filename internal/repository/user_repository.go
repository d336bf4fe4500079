package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/study-planner-api/internal/models"
)

// UserRepository reads study budgets from the users table.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// GetStudyBudget returns sql.ErrNoRows when the user does not exist. Missing
// weekday values read as zero.
func (r *UserRepository) GetStudyBudget(ctx context.Context, exec sqlx.ExtContext, userID int64) (*models.StudyBudget, error) {
	const query = `SELECT id, COALESCE(study_time_mon, 0) AS study_time_mon, COALESCE(study_time_tue, 0) AS study_time_tue, COALESCE(study_time_wed, 0) AS study_time_wed, COALESCE(study_time_thu, 0) AS study_time_thu, COALESCE(study_time_fri, 0) AS study_time_fri, COALESCE(study_time_sat, 0) AS study_time_sat, COALESCE(study_time_sun, 0) AS study_time_sun FROM users WHERE id = $1`
	var budget models.StudyBudget
	if err := sqlx.GetContext(ctx, r.exec(exec), &budget, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get study budget: %w", err)
	}
	return &budget, nil
}
