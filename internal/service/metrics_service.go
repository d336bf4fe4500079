package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/study-planner-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic,
// repository calls and schedule runs. A nil *MetricsService records nothing.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	assignments     *prometheus.CounterVec
	lockContention  prometheus.Counter
	jobsQueued      prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_runs_total",
		Help: "Schedule runs by outcome",
	}, []string{"status"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_run_duration_seconds",
		Help:    "Wall time of schedule runs including persistence",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})

	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_assignments_total",
		Help: "Persisted date assignments by kind (fit or overflow)",
	}, []string{"kind"})

	lockContention := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_lock_contention_total",
		Help: "Runs rejected because another run held the user lock",
	})

	jobsQueued := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_jobs_in_flight",
		Help: "Asynchronous schedule runs queued or running",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, dbQueryDuration, runsTotal, runDuration, assignments, lockContention, jobsQueued, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		dbQueryDuration: dbQueryDuration,
		runsTotal:       runsTotal,
		runDuration:     runDuration,
		assignments:     assignments,
		lockContention:  lockContention,
		jobsQueued:      jobsQueued,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ObserveRun records the outcome of a run. Failed runs pass a nil summary.
func (m *MetricsService) ObserveRun(status string, summary *models.RunSummary, duration time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(duration.Seconds())
	if summary == nil || summary.Status != models.RunStatusOK {
		return
	}
	fit := len(summary.Assignments) - summary.OverflowCount
	m.assignments.WithLabelValues("fit").Add(float64(fit))
	m.assignments.WithLabelValues("overflow").Add(float64(summary.OverflowCount))
}

// RecordLockContention counts a rejected concurrent run.
func (m *MetricsService) RecordLockContention() {
	if m == nil {
		return
	}
	m.lockContention.Inc()
}

// JobQueued and JobFinished track asynchronous runs in flight.
func (m *MetricsService) JobQueued() {
	if m == nil {
		return
	}
	m.jobsQueued.Inc()
}

func (m *MetricsService) JobFinished() {
	if m == nil {
		return
	}
	m.jobsQueued.Dec()
}
