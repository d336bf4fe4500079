package dto

// WeekdayBudget is minutes of study per weekday.
type WeekdayBudget struct {
	Mon int `json:"mon" validate:"min=0,max=1440"`
	Tue int `json:"tue" validate:"min=0,max=1440"`
	Wed int `json:"wed" validate:"min=0,max=1440"`
	Thu int `json:"thu" validate:"min=0,max=1440"`
	Fri int `json:"fri" validate:"min=0,max=1440"`
	Sat int `json:"sat" validate:"min=0,max=1440"`
	Sun int `json:"sun" validate:"min=0,max=1440"`
}

// SubjectWindow bounds the dates a subject may use. Dates are YYYY-MM-DD.
type SubjectWindow struct {
	SubjectID int64  `json:"subject_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// PlanItemInput is an unscheduled item to place.
type PlanItemInput struct {
	ItemID          int64  `json:"item_id" validate:"required,gt=0"`
	SubjectID       int64  `json:"subject_id" validate:"required,gt=0"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
	Name            string `json:"name"`
}

// PreviewScheduleRequest is a full scheduler input computed without persistence.
type PreviewScheduleRequest struct {
	UserID        int64           `json:"user_id"`
	WeekdayBudget WeekdayBudget   `json:"weekday_budget"`
	Subjects      []SubjectWindow `json:"subjects" validate:"max=500,dive"`
	Items         []PlanItemInput `json:"items" validate:"max=5000,dive"`
}

// AssignedDate is one (item, date) pair in a scheduler result.
type AssignedDate struct {
	ItemID   int64  `json:"item_id"`
	Date     string `json:"date"`
	Overflow bool   `json:"overflow,omitempty"`
}

// ScheduleResult is the scheduler output contract.
type ScheduleResult struct {
	Status        string         `json:"status"`
	Assignments   []AssignedDate `json:"assignments"`
	UpdatedCount  int            `json:"updated_count"`
	OverflowCount int            `json:"overflow_count"`
	SubjectID     *int64         `json:"subject_id,omitempty"`
	Warning       string         `json:"warning,omitempty"`
}

// ScheduleRangeQuery selects an inclusive date range.
type ScheduleRangeQuery struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to" validate:"required,datetime=2006-01-02"`
}

// ScheduleExportQuery selects a range and an output format.
type ScheduleExportQuery struct {
	From   string `form:"from" validate:"required,datetime=2006-01-02"`
	To     string `form:"to" validate:"required,datetime=2006-01-02"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ScheduledItem is a dated plan item in list views.
type ScheduledItem struct {
	ItemID          int64  `json:"item_id"`
	SubjectID       int64  `json:"subject_id"`
	SubjectName     string `json:"subject_name"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Complete        bool   `json:"complete"`
}

// ScheduleDay groups the items of one date with the day's load.
type ScheduleDay struct {
	Date             string          `json:"date"`
	Weekday          string          `json:"weekday"`
	BudgetMinutes    int             `json:"budget_minutes"`
	PlannedMinutes   int             `json:"planned_minutes"`
	RemainingMinutes int             `json:"remaining_minutes"`
	Items            []ScheduledItem `json:"items"`
}

// ScheduleExport is a rendered export file.
type ScheduleExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// RunAccepted acknowledges an asynchronous run.
type RunAccepted struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}
