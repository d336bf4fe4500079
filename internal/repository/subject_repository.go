package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/study-planner-api/internal/models"
)

// SubjectRepository reads study subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByUser returns every subject of a user ordered by id.
func (r *SubjectRepository) ListByUser(ctx context.Context, exec sqlx.ExtContext, userID int64) ([]models.Subject, error) {
	const query = `SELECT id, user_id, name, start_date, end_date, created_at, updated_at FROM subjects WHERE user_id = $1 ORDER BY id ASC`
	var subjects []models.Subject
	if err := sqlx.SelectContext(ctx, r.exec(exec), &subjects, query, userID); err != nil {
		return nil, fmt.Errorf("list subjects by user: %w", err)
	}
	return subjects, nil
}
