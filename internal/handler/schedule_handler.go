package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

type scheduleRunService interface {
	Run(ctx context.Context, userID int64) (*models.RunSummary, error)
	Preview(ctx context.Context, req dto.PreviewScheduleRequest) (*dto.ScheduleResult, error)
	LastRun(ctx context.Context, userID int64) (*models.RunSummary, error)
}

type scheduleViewer interface {
	List(ctx context.Context, userID int64, query dto.ScheduleRangeQuery) ([]dto.ScheduleDay, error)
	Today(ctx context.Context, userID int64, date string) (*dto.ScheduleDay, error)
	Export(ctx context.Context, userID int64, query dto.ScheduleExportQuery) (*dto.ScheduleExport, error)
}

type scheduleQueue interface {
	Enqueue(userID int64) (*models.RunJob, error)
	Job(id string, userID int64) (*models.RunJob, error)
}

// ScheduleHandler exposes date assignment runs and schedule views.
type ScheduleHandler struct {
	runner scheduleRunService
	views  scheduleViewer
	queue  scheduleQueue
	now    func() time.Time
}

// NewScheduleHandler constructs the handler. A nil queue disables async runs.
func NewScheduleHandler(runner scheduleRunService, views scheduleViewer, queue scheduleQueue) *ScheduleHandler {
	return &ScheduleHandler{runner: runner, views: views, queue: queue, now: time.Now}
}

// Run godoc
// @Summary Assign dates to the caller's incomplete plan items
// @Description Clears and recomputes plan dates in one transaction. With async=true the run is queued.
// @Tags Schedule
// @Produce json
// @Param async query bool false "Queue the run and return a job id"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedule/run [post]
func (h *ScheduleHandler) Run(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	async, _ := strconv.ParseBool(c.DefaultQuery("async", "false"))
	if async {
		if h.queue == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "asynchronous runs are disabled"))
			return
		}
		job, err := h.queue.Enqueue(userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, dto.RunAccepted{JobID: job.ID, Status: job.Status})
		return
	}

	summary, err := h.runner.Run(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Job godoc
// @Summary Status of an asynchronous run
// @Tags Schedule
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/jobs/{id} [get]
func (h *ScheduleHandler) Job(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.queue == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "schedule job not found"))
		return
	}
	job, err := h.queue.Job(c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// Preview godoc
// @Summary Compute a schedule without saving it
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.PreviewScheduleRequest true "Scheduler input"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/preview [post]
func (h *ScheduleHandler) Preview(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.PreviewScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preview payload"))
		return
	}
	if req.UserID == 0 {
		req.UserID = userID
	}

	result, err := h.runner.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"mode": "preview"})
}

// LastRun godoc
// @Summary Summary of the caller's most recent run
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/last-run [get]
func (h *ScheduleHandler) LastRun(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.runner.LastRun(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// List godoc
// @Summary Scheduled items per day in a date range
// @Tags Schedule
// @Produce json
// @Param from query string true "First date (YYYY-MM-DD)"
// @Param to query string true "Last date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.ScheduleRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid range query"))
		return
	}
	days, err := h.views.List(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, map[string]interface{}{"from": query.From, "to": query.To, "days": len(days)})
}

// Today godoc
// @Summary Scheduled items of one day
// @Tags Schedule
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today UTC"
// @Success 200 {object} response.Envelope
// @Router /schedule/today [get]
func (h *ScheduleHandler) Today(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	date := c.Query("date")
	if date == "" {
		date = scheduler.FormatDate(h.now().UTC())
	}
	day, err := h.views.Today(c.Request.Context(), userID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day)
}

// Export godoc
// @Summary Download the schedule of a date range
// @Tags Schedule
// @Produce text/csv
// @Produce application/pdf
// @Param from query string true "First date (YYYY-MM-DD)"
// @Param to query string true "Last date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.ScheduleExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.views.Export(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
