package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/export"
)

type scheduledItemReader interface {
	ListScheduled(ctx context.Context, rng models.ScheduleRange) ([]models.ScheduledItem, error)
}

const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ScheduleViewConfig bounds range reads.
type ScheduleViewConfig struct {
	MaxRangeDays int
}

// ScheduleViewService serves day, range and export views over persisted dates.
type ScheduleViewService struct {
	items     scheduledItemReader
	budgets   budgetReader
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ScheduleViewConfig
}

// NewScheduleViewService constructs the read side of the schedule.
func NewScheduleViewService(items scheduledItemReader, budgets budgetReader, validate *validator.Validate, logger *zap.Logger, cfg ScheduleViewConfig) *ScheduleViewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 93
	}
	return &ScheduleViewService{items: items, budgets: budgets, validator: validate, logger: logger, cfg: cfg}
}

// List returns one entry per calendar day in the range, empty days included.
func (s *ScheduleViewService) List(ctx context.Context, userID int64, query dto.ScheduleRangeQuery) ([]dto.ScheduleDay, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "from and to must be YYYY-MM-DD dates")
	}
	days, err := s.parseRange(query.From, query.To)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID, days)
}

// Today returns the schedule of a single date.
func (s *ScheduleViewService) Today(ctx context.Context, userID int64, raw string) (*dto.ScheduleDay, error) {
	day, err := scheduler.ParseDate(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	days, err := s.load(ctx, userID, scheduler.Calendar(day, day))
	if err != nil {
		return nil, err
	}
	return &days[0], nil
}

// Export renders the range as CSV (default) or PDF.
func (s *ScheduleViewService) Export(ctx context.Context, userID int64, query dto.ScheduleExportQuery) (*dto.ScheduleExport, error) {
	if query.Format == "" {
		query.Format = FormatCSV
	}
	if query.Format != FormatCSV && query.Format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", query.Format))
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "from and to must be YYYY-MM-DD dates")
	}
	rng, err := s.parseRange(query.From, query.To)
	if err != nil {
		return nil, err
	}
	days, err := s.load(ctx, userID, rng)
	if err != nil {
		return nil, err
	}

	sheet := scheduleSheet(query.From, query.To, days)
	var (
		body        []byte
		contentType string
	)
	switch query.Format {
	case FormatPDF:
		body, err = export.PDF(sheet)
		contentType = "application/pdf"
	default:
		body, err = export.CSV(sheet)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &dto.ScheduleExport{
		Filename:    fmt.Sprintf("schedule_%s_%s.%s", query.From, query.To, query.Format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (s *ScheduleViewService) parseRange(rawFrom, rawTo string) (scheduler.Range, error) {
	from, err := scheduler.ParseDate(rawFrom)
	if err != nil {
		return scheduler.Range{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid from date")
	}
	to, err := scheduler.ParseDate(rawTo)
	if err != nil {
		return scheduler.Range{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid to date")
	}
	if to.Before(from) {
		return scheduler.Range{}, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	rng := scheduler.Calendar(from, to)
	if rng.Len() > s.cfg.MaxRangeDays {
		return scheduler.Range{}, appErrors.Clone(appErrors.ErrRangeTooLarge, fmt.Sprintf("range spans %d days, limit is %d", rng.Len(), s.cfg.MaxRangeDays))
	}
	return rng, nil
}

func (s *ScheduleViewService) load(ctx context.Context, userID int64, rng scheduler.Range) ([]dto.ScheduleDay, error) {
	budget, err := s.budgets.GetStudyBudget(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study budget")
	}
	calendar := rng.Days()
	items, err := s.items.ListScheduled(ctx, models.ScheduleRange{
		UserID: userID,
		From:   calendar[0].Date,
		To:     calendar[len(calendar)-1].Date,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	weekly := budgetFromModel(budget)
	days := make([]dto.ScheduleDay, len(calendar))
	index := make(map[string]int, len(calendar))
	for i, day := range calendar {
		key := scheduler.FormatDate(day.Date)
		index[key] = i
		days[i] = dto.ScheduleDay{
			Date:          key,
			Weekday:       string(day.Weekday),
			BudgetMinutes: weekly.For(day.Date),
			Items:         []dto.ScheduledItem{},
		}
	}
	for _, item := range items {
		if item.PlanDate == nil {
			continue
		}
		i, ok := index[scheduler.FormatDate(*item.PlanDate)]
		if !ok {
			continue
		}
		days[i].Items = append(days[i].Items, dto.ScheduledItem{
			ItemID:          item.ID,
			SubjectID:       item.SubjectID,
			SubjectName:     item.SubjectName,
			Name:            item.Name,
			DurationMinutes: item.DurationMinutes,
			Complete:        item.Complete,
		})
		days[i].PlannedMinutes += item.DurationMinutes
	}
	for i := range days {
		days[i].RemainingMinutes = days[i].BudgetMinutes - days[i].PlannedMinutes
	}
	return days, nil
}

func scheduleSheet(from, to string, days []dto.ScheduleDay) export.Sheet {
	sheet := export.Sheet{
		Title: fmt.Sprintf("Study schedule %s to %s", from, to),
		Columns: []export.Column{
			{Key: "date", Title: "Date", Width: 26},
			{Key: "weekday", Title: "Day", Width: 14},
			{Key: "subject", Title: "Subject", Width: 45},
			{Key: "item", Title: "Item"},
			{Key: "minutes", Title: "Minutes", Width: 20},
			{Key: "complete", Title: "Done", Width: 15},
		},
	}
	for _, day := range days {
		group := fmt.Sprintf("%s (%s) %d/%d min", day.Date, day.Weekday, day.PlannedMinutes, day.BudgetMinutes)
		for _, item := range day.Items {
			done := ""
			if item.Complete {
				done = "yes"
			}
			sheet.Rows = append(sheet.Rows, export.Row{
				Group: group,
				Values: map[string]string{
					"date":     day.Date,
					"weekday":  day.Weekday,
					"subject":  item.SubjectName,
					"item":     item.Name,
					"minutes":  strconv.Itoa(item.DurationMinutes),
					"complete": done,
				},
			})
		}
	}
	return sheet
}
