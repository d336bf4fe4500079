package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type runServiceMock struct {
	runUser   int64
	runErr    error
	preview   dto.PreviewScheduleRequest
	lastErr   error
	summaries map[int64]*models.RunSummary
}

func (m *runServiceMock) Run(ctx context.Context, userID int64) (*models.RunSummary, error) {
	m.runUser = userID
	if m.runErr != nil {
		return nil, m.runErr
	}
	return &models.RunSummary{
		UserID:       userID,
		Status:       models.RunStatusOK,
		UpdatedCount: 2,
		Assignments:  []models.RunAssignment{{ItemID: 1, SubjectID: 7, Date: "2025-08-11", Minutes: 40}},
	}, nil
}

func (m *runServiceMock) Preview(ctx context.Context, req dto.PreviewScheduleRequest) (*dto.ScheduleResult, error) {
	m.preview = req
	return &dto.ScheduleResult{Status: "ok", Assignments: []dto.AssignedDate{}}, nil
}

func (m *runServiceMock) LastRun(ctx context.Context, userID int64) (*models.RunSummary, error) {
	if m.lastErr != nil {
		return nil, m.lastErr
	}
	return m.summaries[userID], nil
}

type viewServiceMock struct {
	todayDate string
	rangeSeen dto.ScheduleRangeQuery
	export    dto.ScheduleExportQuery
}

func (m *viewServiceMock) List(ctx context.Context, userID int64, query dto.ScheduleRangeQuery) ([]dto.ScheduleDay, error) {
	m.rangeSeen = query
	return []dto.ScheduleDay{{Date: query.From, Items: []dto.ScheduledItem{}}}, nil
}

func (m *viewServiceMock) Today(ctx context.Context, userID int64, date string) (*dto.ScheduleDay, error) {
	m.todayDate = date
	return &dto.ScheduleDay{Date: date, Items: []dto.ScheduledItem{}}, nil
}

func (m *viewServiceMock) Export(ctx context.Context, userID int64, query dto.ScheduleExportQuery) (*dto.ScheduleExport, error) {
	m.export = query
	if query.Format == "xlsx" {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, "unsupported export format")
	}
	return &dto.ScheduleExport{Filename: "schedule.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("Date\n")}, nil
}

type queueMock struct {
	enqueued []int64
	jobs     map[string]*models.RunJob
}

func (m *queueMock) Enqueue(userID int64) (*models.RunJob, error) {
	m.enqueued = append(m.enqueued, userID)
	return &models.RunJob{ID: "job-1", UserID: userID, Status: models.RunJobQueued}, nil
}

func (m *queueMock) Job(id string, userID int64) (*models.RunJob, error) {
	job, ok := m.jobs[id]
	if !ok || job.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule job not found")
	}
	return job, nil
}

func newScheduleRouter(h *ScheduleHandler, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID > 0 {
			c.Set(middleware.ContextClaimsKey, &models.JWTClaims{UserID: userID})
		}
		c.Next()
	})
	router.POST("/schedule/run", h.Run)
	router.POST("/schedule/preview", h.Preview)
	router.GET("/schedule/last-run", h.LastRun)
	router.GET("/schedule/jobs/:id", h.Job)
	router.GET("/schedule", h.List)
	router.GET("/schedule/today", h.Today)
	router.GET("/schedule/export", h.Export)
	return router
}

func decodeEnvelope(t *testing.T, body []byte) map[string]json.RawMessage {
	t.Helper()
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func TestScheduleRunUsesCaller(t *testing.T) {
	runner := &runServiceMock{}
	router := newScheduleRouter(NewScheduleHandler(runner, &viewServiceMock{}, nil), 42)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/run", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), runner.runUser)

	var summary models.RunSummary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes())["data"], &summary))
	assert.Equal(t, models.RunStatusOK, summary.Status)
	assert.Equal(t, 2, summary.UpdatedCount)
	require.Len(t, summary.Assignments, 1)
	assert.Equal(t, "2025-08-11", summary.Assignments[0].Date)
}

func TestScheduleRunUnauthorized(t *testing.T) {
	router := newScheduleRouter(NewScheduleHandler(&runServiceMock{}, &viewServiceMock{}, nil), 0)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/run", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScheduleRunInfeasible(t *testing.T) {
	runner := &runServiceMock{runErr: appErrors.Clone(appErrors.ErrInfeasibleSubject, "subject 7 has no study day").WithDetails(map[string]any{"subjectId": 7})}
	router := newScheduleRouter(NewScheduleHandler(runner, &viewServiceMock{}, nil), 42)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/run", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var appErr appErrors.Error
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes())["error"], &appErr))
	assert.Equal(t, appErrors.ErrInfeasibleSubject.Code, appErr.Code)
	assert.EqualValues(t, 7, appErr.Details["subjectId"])
}

func TestScheduleRunConcurrent(t *testing.T) {
	runner := &runServiceMock{runErr: appErrors.ErrRunInProgress}
	router := newScheduleRouter(NewScheduleHandler(runner, &viewServiceMock{}, nil), 42)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/run", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestScheduleRunAsync(t *testing.T) {
	runner := &runServiceMock{}
	queue := &queueMock{}
	router := newScheduleRouter(NewScheduleHandler(runner, &viewServiceMock{}, queue), 42)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/run?async=true", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []int64{42}, queue.enqueued)
	assert.Zero(t, runner.runUser)

	var accepted dto.RunAccepted
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes())["data"], &accepted))
	assert.Equal(t, "job-1", accepted.JobID)
	assert.Equal(t, models.RunJobQueued, accepted.Status)
}

func TestScheduleRunAsyncDisabled(t *testing.T) {
	router := newScheduleRouter(NewScheduleHandler(&runServiceMock{}, &viewServiceMock{}, nil), 42)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/run?async=1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestScheduleJobScopedToCaller(t *testing.T) {
	queue := &queueMock{jobs: map[string]*models.RunJob{
		"job-1": {ID: "job-1", UserID: 42, Status: models.RunJobSucceeded},
	}}
	h := NewScheduleHandler(&runServiceMock{}, &viewServiceMock{}, queue)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule/jobs/job-1", nil)
	newScheduleRouter(h, 42).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/schedule/jobs/job-1", nil)
	newScheduleRouter(h, 43).ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchedulePreviewDefaultsUser(t *testing.T) {
	runner := &runServiceMock{}
	router := newScheduleRouter(NewScheduleHandler(runner, &viewServiceMock{}, nil), 42)

	payload := []byte(`{"weekday_budget":{"mon":60},"subjects":[{"subject_id":1,"start_date":"2025-08-11","end_date":"2025-08-17"}],"items":[{"item_id":1,"subject_id":1,"duration_minutes":30}]}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/preview", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), runner.preview.UserID)
	assert.Equal(t, 60, runner.preview.WeekdayBudget.Mon)
	require.Len(t, runner.preview.Items, 1)
	assert.JSONEq(t, `{"mode":"preview"}`, string(decodeEnvelope(t, w.Body.Bytes())["meta"]))
}

func TestSchedulePreviewMalformed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewScheduleHandler(&runServiceMock{}, &viewServiceMock{}, nil)
	req, _ := http.NewRequest(http.MethodPost, "/schedule/preview", bytes.NewReader([]byte(`{"items":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(middleware.ContextClaimsKey, &models.JWTClaims{UserID: 42})

	h.Preview(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleLastRunMissing(t *testing.T) {
	runner := &runServiceMock{lastErr: appErrors.Clone(appErrors.ErrNotFound, "no run recorded")}
	router := newScheduleRouter(NewScheduleHandler(runner, &viewServiceMock{}, nil), 42)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule/last-run", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleListBindsRange(t *testing.T) {
	views := &viewServiceMock{}
	router := newScheduleRouter(NewScheduleHandler(&runServiceMock{}, views, nil), 42)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule?from=2025-08-11&to=2025-08-17", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ScheduleRangeQuery{From: "2025-08-11", To: "2025-08-17"}, views.rangeSeen)
	assert.JSONEq(t, `{"from":"2025-08-11","to":"2025-08-17","days":1}`, string(decodeEnvelope(t, w.Body.Bytes())["meta"]))
}

func TestScheduleTodayDefaultsToClock(t *testing.T) {
	views := &viewServiceMock{}
	h := NewScheduleHandler(&runServiceMock{}, views, nil)
	h.now = func() time.Time { return time.Date(2025, 8, 13, 23, 30, 0, 0, time.UTC) }
	router := newScheduleRouter(h, 42)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule/today", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-08-13", views.todayDate)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/schedule/today?date=2025-09-01", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-09-01", views.todayDate)
}

func TestScheduleExportAttachment(t *testing.T) {
	views := &viewServiceMock{}
	router := newScheduleRouter(NewScheduleHandler(&runServiceMock{}, views, nil), 42)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule/export?from=2025-08-11&to=2025-08-17&format=csv", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="schedule.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Date\n", w.Body.String())
	assert.Equal(t, "csv", views.export.Format)
}

func TestScheduleExportUnsupportedFormat(t *testing.T) {
	router := newScheduleRouter(NewScheduleHandler(&runServiceMock{}, &viewServiceMock{}, nil), 42)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule/export?from=2025-08-11&to=2025-08-17&format=xlsx", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, appErrors.ErrUnsupportedFormat.Status, w.Code)
}
