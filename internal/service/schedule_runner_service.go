package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/repository"
	"github.com/noah-isme/study-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type planStore interface {
	ListIncompleteForUpdate(ctx context.Context, exec sqlx.ExtContext, userID int64) ([]models.PlanItem, error)
	ListCompletedNames(ctx context.Context, exec sqlx.ExtContext, userID int64) ([]string, error)
	ResetIncompleteDates(ctx context.Context, exec sqlx.ExtContext, userID int64) (int64, error)
	BulkUpdateDates(ctx context.Context, exec sqlx.ExtContext, userID int64, updates []models.PlanDateUpdate) error
}

type subjectReader interface {
	ListByUser(ctx context.Context, exec sqlx.ExtContext, userID int64) ([]models.Subject, error)
}

type budgetReader interface {
	GetStudyBudget(ctx context.Context, exec sqlx.ExtContext, userID int64) (*models.StudyBudget, error)
}

// ScheduleRunnerConfig governs run locking and summary retention.
type ScheduleRunnerConfig struct {
	LockTTL    time.Duration
	SummaryTTL time.Duration
}

// ScheduleRunnerService resets and reassigns the plan dates of one user inside
// a single transaction.
type ScheduleRunnerService struct {
	plans     planStore
	subjects  subjectReader
	budgets   budgetReader
	state     runStateStore
	tx        txProvider
	planner   *scheduler.Planner
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ScheduleRunnerConfig
	now       func() time.Time
}

// NewScheduleRunnerService wires runner dependencies.
func NewScheduleRunnerService(
	plans planStore,
	subjects subjectReader,
	budgets budgetReader,
	state runStateStore,
	tx txProvider,
	planner *scheduler.Planner,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg ScheduleRunnerConfig,
) *ScheduleRunnerService {
	if planner == nil {
		planner = scheduler.NewPlanner(nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = 7 * 24 * time.Hour
	}
	return &ScheduleRunnerService{
		plans:     plans,
		subjects:  subjects,
		budgets:   budgets,
		state:     state,
		tx:        tx,
		planner:   planner,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Run schedules every incomplete item of userID and persists the dates.
//
// Runs for the same user are serialised by the run lock; a concurrent call
// fails with RUN_IN_PROGRESS. An infeasible subject or any store failure
// leaves every row as it was before the run.
func (s *ScheduleRunnerService) Run(ctx context.Context, userID int64) (*models.RunSummary, error) {
	if userID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id must be positive")
	}
	if s.tx == nil || s.state == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "schedule runner not configured")
	}

	logger := s.logger.With(zap.Int64("user_id", userID))
	token, err := s.state.AcquireLock(ctx, userID, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, repository.ErrLockHeld) {
			s.metrics.RecordLockContention()
			return nil, appErrors.ErrRunInProgress
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to acquire run lock")
	}
	defer func() {
		if releaseErr := s.state.ReleaseLock(context.WithoutCancel(ctx), userID, token); releaseErr != nil {
			logger.Warn("release run lock", zap.Error(releaseErr))
		}
	}()

	started := s.now()
	logger.Info("schedule run started")

	summary, err := s.run(ctx, userID)
	elapsed := s.now().Sub(started)

	status := "error"
	if summary != nil {
		summary.StartedAt = started.UTC()
		summary.DurationMs = elapsed.Milliseconds()
		status = string(summary.Status)
		if saveErr := s.state.SaveSummary(context.WithoutCancel(ctx), summary, s.cfg.SummaryTTL); saveErr != nil {
			logger.Warn("save run summary", zap.Error(saveErr))
		}
	}
	s.metrics.ObserveRun(status, summary, elapsed)

	if err != nil {
		logger.Warn("schedule run failed", zap.String("status", status), zap.Error(err))
		return nil, err
	}

	logger.Info("schedule run finished",
		zap.String("status", status),
		zap.Int("assignments", len(summary.Assignments)),
		zap.Int("updated", summary.UpdatedCount),
		zap.Int("changed", summary.ChangedCount),
		zap.Int("unchanged", summary.UnchangedCount),
		zap.Int("overflow", summary.OverflowCount),
		zap.Int("excluded", summary.ExcludedCount),
		zap.Duration("elapsed", elapsed),
	)
	return summary, nil
}

func (s *ScheduleRunnerService) run(ctx context.Context, userID int64) (*models.RunSummary, error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	loadStart := time.Now()
	budget, err := s.budgets.GetStudyBudget(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study budget")
	}
	subjects, err := s.subjects.ListByUser(ctx, tx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	items, err := s.plans.ListIncompleteForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan items")
	}
	completed, err := s.plans.ListCompletedNames(ctx, tx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completed items")
	}
	s.metrics.ObserveDBQuery("schedule_load", time.Since(loadStart))

	if _, err = s.plans.ResetIncompleteDates(ctx, tx, userID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset plan dates")
	}

	input, prior, excluded := buildInput(userID, budget, subjects, items, completed)
	out, err := s.planner.Plan(input, scheduler.NewCapacityTracker())
	if err != nil {
		return planFailure(userID, err)
	}

	summary := &models.RunSummary{
		UserID:        userID,
		Status:        models.RunStatus(out.Status),
		OverflowCount: out.OverflowCount,
		ExcludedCount: excluded,
		Assignments:   toRunAssignments(out.Assignments),
		Warning:       out.Warning,
	}
	if out.Status == scheduler.StatusWarning {
		return summary, nil
	}
	for _, subject := range out.Subjects {
		if subject.OverflowCount > 0 {
			s.logger.Warn("subject overflowed daily budget",
				zap.Int64("user_id", userID),
				zap.Int64("subject_id", subject.SubjectID),
				zap.Int("overflow", subject.OverflowCount),
			)
		}
	}

	updates := make([]models.PlanDateUpdate, 0, len(out.Assignments))
	for _, a := range out.Assignments {
		updates = append(updates, models.PlanDateUpdate{ID: a.ItemID, PlanDate: a.Date})
		if before, ok := prior[a.ItemID]; ok && before != nil && scheduler.DateOf(*before).Equal(a.Date) {
			summary.UnchangedCount++
			continue
		}
		summary.ChangedCount++
	}
	summary.UpdatedCount = len(updates)

	writeStart := time.Now()
	if err = s.plans.BulkUpdateDates(ctx, tx, userID, updates); err != nil {
		if errors.Is(err, repository.ErrPlanItemNotUpdatable) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "plan items changed during the run")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write plan dates")
	}
	s.metrics.ObserveDBQuery("schedule_write", time.Since(writeStart))

	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule transaction")
	}
	committed = true
	return summary, nil
}

// Preview computes a schedule for a posted input without touching the store.
// An infeasible subject is reported in the result rather than as an error.
func (s *ScheduleRunnerService) Preview(_ context.Context, req dto.PreviewScheduleRequest) (*dto.ScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preview payload")
	}

	input := scheduler.Input{
		UserID: req.UserID,
		Budget: scheduler.WeekdayBudget{
			scheduler.Mon: req.WeekdayBudget.Mon,
			scheduler.Tue: req.WeekdayBudget.Tue,
			scheduler.Wed: req.WeekdayBudget.Wed,
			scheduler.Thu: req.WeekdayBudget.Thu,
			scheduler.Fri: req.WeekdayBudget.Fri,
			scheduler.Sat: req.WeekdayBudget.Sat,
			scheduler.Sun: req.WeekdayBudget.Sun,
		},
	}
	for _, window := range req.Subjects {
		start, err := scheduler.ParseDate(window.StartDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject start_date")
		}
		end, err := scheduler.ParseDate(window.EndDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject end_date")
		}
		input.Subjects = append(input.Subjects, scheduler.Subject{ID: window.SubjectID, StartDate: start, EndDate: end})
	}
	for _, item := range req.Items {
		input.Tasks = append(input.Tasks, scheduler.Task{
			ID:              item.ItemID,
			SubjectID:       item.SubjectID,
			Name:            item.Name,
			DurationMinutes: item.DurationMinutes,
		})
	}

	out, err := s.planner.Plan(input, scheduler.NewCapacityTracker())
	var infeasible *scheduler.InfeasibleSubjectError
	switch {
	case errors.As(err, &infeasible):
		id := infeasible.SubjectID
		return &dto.ScheduleResult{Status: string(scheduler.StatusInfeasible), Assignments: []dto.AssignedDate{}, SubjectID: &id}, nil
	case errors.Is(err, scheduler.ErrWindowTooLarge):
		return nil, windowTooLarge(err)
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preview payload")
	}

	result := &dto.ScheduleResult{
		Status:        string(out.Status),
		Assignments:   make([]dto.AssignedDate, 0, len(out.Assignments)),
		UpdatedCount:  len(out.Assignments),
		OverflowCount: out.OverflowCount,
		Warning:       out.Warning,
	}
	for _, a := range out.Assignments {
		result.Assignments = append(result.Assignments, dto.AssignedDate{ItemID: a.ItemID, Date: scheduler.FormatDate(a.Date), Overflow: a.Overflow})
	}
	return result, nil
}

// LastRun returns the most recent summary recorded for userID.
func (s *ScheduleRunnerService) LastRun(ctx context.Context, userID int64) (*models.RunSummary, error) {
	if s.state == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no schedule run recorded")
	}
	summary, err := s.state.LastSummary(ctx, userID)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no schedule run recorded")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load last run")
	}
	return summary, nil
}

// buildInput converts store rows into planner input. Items sharing a name with a
// completed item are left out; prior maps every loaded item to its date before
// the reset.
func buildInput(userID int64, budget *models.StudyBudget, subjects []models.Subject, items []models.PlanItem, completed []string) (scheduler.Input, map[int64]*time.Time, int) {
	done := make(map[string]struct{}, len(completed))
	for _, name := range completed {
		done[name] = struct{}{}
	}

	input := scheduler.Input{
		UserID:   userID,
		Budget:   budgetFromModel(budget),
		Subjects: make([]scheduler.Subject, 0, len(subjects)),
		Tasks:    make([]scheduler.Task, 0, len(items)),
	}
	for _, subject := range subjects {
		input.Subjects = append(input.Subjects, scheduler.Subject{ID: subject.ID, StartDate: subject.StartDate, EndDate: subject.EndDate})
	}

	prior := make(map[int64]*time.Time, len(items))
	excluded := 0
	for _, item := range items {
		prior[item.ID] = item.PlanDate
		if _, ok := done[item.Name]; ok {
			excluded++
			continue
		}
		input.Tasks = append(input.Tasks, scheduler.Task{
			ID:              item.ID,
			SubjectID:       item.SubjectID,
			Name:            item.Name,
			DurationMinutes: item.DurationMinutes,
		})
	}
	return input, prior, excluded
}

func budgetFromModel(b *models.StudyBudget) scheduler.WeekdayBudget {
	if b == nil {
		return scheduler.WeekdayBudget{}
	}
	return scheduler.WeekdayBudget{
		scheduler.Mon: b.Mon,
		scheduler.Tue: b.Tue,
		scheduler.Wed: b.Wed,
		scheduler.Thu: b.Thu,
		scheduler.Fri: b.Fri,
		scheduler.Sat: b.Sat,
		scheduler.Sun: b.Sun,
	}
}

func planFailure(userID int64, err error) (*models.RunSummary, error) {
	var infeasible *scheduler.InfeasibleSubjectError
	if errors.As(err, &infeasible) {
		id := infeasible.SubjectID
		summary := &models.RunSummary{UserID: userID, Status: models.RunStatusInfeasible, Assignments: []models.RunAssignment{}, SubjectID: &id}
		appErr := appErrors.Wrap(err, appErrors.ErrInfeasibleSubject.Code, appErrors.ErrInfeasibleSubject.Status, err.Error()).
			WithDetails(map[string]any{"subjectId": id})
		return summary, appErr
	}
	if errors.Is(err, scheduler.ErrInvalidDuration) {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if appErr := windowTooLarge(err); appErr != nil {
		return nil, appErr
	}
	return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute schedule")
}

func windowTooLarge(err error) *appErrors.Error {
	var tooLarge *scheduler.WindowTooLargeError
	if !errors.As(err, &tooLarge) {
		return nil
	}
	return appErrors.Wrap(err, appErrors.ErrRangeTooLarge.Code, appErrors.ErrRangeTooLarge.Status, err.Error()).
		WithDetails(map[string]any{"subjectId": tooLarge.SubjectID, "days": tooLarge.Days, "maxDays": tooLarge.MaxDays})
}

func toRunAssignments(assignments []scheduler.Assignment) []models.RunAssignment {
	out := make([]models.RunAssignment, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, models.RunAssignment{
			ItemID:    a.ItemID,
			SubjectID: a.SubjectID,
			Date:      scheduler.FormatDate(a.Date),
			Minutes:   a.Minutes,
			Overflow:  a.Overflow,
		})
	}
	return out
}
