package models

import "time"

// PlanItem is one learning task. The scheduler only ever writes PlanDate.
type PlanItem struct {
	ID              int64      `db:"id" json:"id"`
	UserID          int64      `db:"user_id" json:"user_id"`
	SubjectID       int64      `db:"subject_id" json:"subject_id"`
	Name            string     `db:"name" json:"name"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	PlanDate        *time.Time `db:"plan_date" json:"plan_date,omitempty"`
	Complete        bool       `db:"complete" json:"complete"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// ScheduledItem is a dated plan item joined with its subject name.
type ScheduledItem struct {
	PlanItem
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// PlanDateUpdate pairs an item with its newly assigned date.
type PlanDateUpdate struct {
	ID       int64     `db:"id"`
	PlanDate time.Time `db:"plan_date"`
}

// ScheduleRange selects dated items between From and To inclusive.
type ScheduleRange struct {
	UserID int64
	From   time.Time
	To     time.Time
}
