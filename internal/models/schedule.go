package models

import "time"

// RunStatus mirrors the planner outcome.
type RunStatus string

const (
	RunStatusOK         RunStatus = "ok"
	RunStatusInfeasible RunStatus = "infeasible"
	RunStatusWarning    RunStatus = "warning"
)

// RunAssignment is one persisted or previewed date.
type RunAssignment struct {
	ItemID    int64  `json:"item_id"`
	SubjectID int64  `json:"subject_id"`
	Date      string `json:"date"`
	Minutes   int    `json:"minutes"`
	Overflow  bool   `json:"overflow,omitempty"`
}

// RunSummary reports the outcome of one schedule run.
type RunSummary struct {
	UserID         int64           `json:"user_id"`
	Status         RunStatus       `json:"status"`
	UpdatedCount   int             `json:"updated_count"`
	ChangedCount   int             `json:"changed_count"`
	UnchangedCount int             `json:"unchanged_count"`
	OverflowCount  int             `json:"overflow_count"`
	ExcludedCount  int             `json:"excluded_count"`
	Assignments    []RunAssignment `json:"assignments"`
	Warning        string          `json:"warning,omitempty"`
	SubjectID      *int64          `json:"subject_id,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	DurationMs     int64           `json:"duration_ms"`
}

// RunJob tracks an asynchronous run.
type RunJob struct {
	ID         string      `json:"id"`
	UserID     int64       `json:"user_id"`
	Status     string      `json:"status"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
	Summary    *RunSummary `json:"summary,omitempty"`
	Error      string      `json:"error,omitempty"`
}

const (
	RunJobQueued    = "queued"
	RunJobSucceeded = "succeeded"
	RunJobFailed    = "failed"
)
