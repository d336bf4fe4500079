package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/study-planner-api/api/swagger"
	"github.com/noah-isme/study-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/repository"
	"github.com/noah-isme/study-planner-api/internal/scheduler"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/pkg/cache"
	"github.com/noah-isme/study-planner-api/pkg/config"
	"github.com/noah-isme/study-planner-api/pkg/database"
	"github.com/noah-isme/study-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/study-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/study-planner-api/pkg/middleware/requestid"
)

// @title Study Planner API
// @version 0.1.0
// @description Assigns study dates to plan items under weekly time budgets
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type runState interface {
	AcquireLock(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, userID int64, token string) error
	SaveSummary(ctx context.Context, summary *models.RunSummary, ttl time.Duration) error
	LastSummary(ctx context.Context, userID int64) (*models.RunSummary, error)
	Close() error
}

type runQueue interface {
	Enqueue(userID int64) (*models.RunJob, error)
	Job(id string, userID int64) (*models.RunJob, error)
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Printf("failed to init logger: %v", err)
		return 1
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Error("failed to connect postgres", zap.Error(err))
		return 1
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Error("failed to connect redis", zap.Error(err))
		return 1
	}

	planner, err := newPlanner(cfg.Scheduler.SequencePatterns, cfg.Scheduler.MaxWindowDays)
	if err != nil {
		logr.Error("invalid scheduler sequence patterns", zap.Error(err))
		return 1
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	planRepo := repository.NewPlanRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	state, readiness := newRunState(db, redisClient, logr)
	defer state.Close() //nolint:errcheck

	runner := service.NewScheduleRunnerService(planRepo, subjectRepo, userRepo, state, db, planner, validate, metrics, logr, service.ScheduleRunnerConfig{
		LockTTL:    cfg.Scheduler.LockTTL,
		SummaryTTL: cfg.Scheduler.SummaryTTL,
	})
	views := service.NewScheduleViewService(planRepo, userRepo, validate, logr, service.ScheduleViewConfig{
		MaxRangeDays: cfg.Export.MaxRangeDays,
	})

	var queue runQueue
	if cfg.Scheduler.AsyncEnabled {
		dispatcher := service.NewScheduleDispatcher(runner, metrics, logr, service.ScheduleDispatcherConfig{
			Workers:    cfg.Scheduler.Workers,
			MaxRetries: cfg.Scheduler.WorkerRetries,
			RetryDelay: time.Second,
		})
		dispatcher.Start(ctx)
		defer dispatcher.Stop()
		queue = dispatcher
	}

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	scheduleHandler := handler.NewScheduleHandler(runner, views, queue)
	metricsHandler := handler.NewMetricsHandler(metrics, readiness)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(tokens))
	{
		api.POST("/schedule/run", scheduleHandler.Run)
		api.GET("/schedule/jobs/:id", scheduleHandler.Job)
		api.POST("/schedule/preview", scheduleHandler.Preview)
		api.GET("/schedule/last-run", scheduleHandler.LastRun)
		api.GET("/schedule", scheduleHandler.List)
		api.GET("/schedule/today", scheduleHandler.Today)
		api.GET("/schedule/export", scheduleHandler.Export)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "redis", redisClient != nil, "async_runs", queue != nil)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			return 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("failed to shutdown server", zap.Error(err))
		return 1
	}
	logr.Info("server stopped")
	return 0
}

func newPlanner(patterns []string, maxWindowDays int) (*scheduler.Planner, error) {
	if len(patterns) == 0 {
		return scheduler.NewPlanner(nil).WithMaxWindowDays(maxWindowDays), nil
	}
	extract, err := scheduler.RegexExtractor(patterns...)
	if err != nil {
		return nil, err
	}
	return scheduler.NewPlanner(scheduler.NewOrderer(extract)).WithMaxWindowDays(maxWindowDays), nil
}

// newRunState picks Redis when it is configured and the process local store
// otherwise, and returns the readiness checks matching that choice.
func newRunState(db *sqlx.DB, client *redis.Client, logr *zap.Logger) (runState, map[string]handler.ReadinessCheck) {
	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if client == nil {
		logr.Warn("redis disabled, run locks are process local")
		return repository.NewMemoryRunStateRepository(), checks
	}
	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return repository.NewRunStateRepository(client, logr), checks
}
