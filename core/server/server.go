package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venueplanner/core/cache"
	"venueplanner/core/config"
	"venueplanner/core/constants"
	"venueplanner/core/database"
	"venueplanner/core/logger"
	"venueplanner/core/middleware"
	"venueplanner/core/queue"
	"venueplanner/core/validator"
	"venueplanner/modules/event"
	"venueplanner/modules/notification"
	"venueplanner/modules/recommendation"
	"venueplanner/modules/recurring"
	"venueplanner/modules/scheduler"
	"venueplanner/modules/voting"
	"venueplanner/modules/waitlist"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run boots the API server, the background worker, and the periodic task
// scheduler, then blocks until shutdown.
func Run() {
	defer logger.Sync()

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}

	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		logger.Fatal("failed to initialize redis", "error", err)
	}

	taskQueue := queue.NewQueue(cfg)
	defer taskQueue.Close()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())

	mw := middleware.NewMiddleware(cfg.JWTSecret)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Module wiring. The event service is the lifecycle gateway; everything
	// else hangs off it.
	eventSvc := event.Init(e, db, mw)
	votingSvc := voting.Init(e, db, mw, eventSvc)
	waitlistSvc := waitlist.Init(e, db, mw)
	recommendationSvc := recommendation.Init(e, db, mw, cfg, redisCache, taskQueue, eventSvc)
	recurringSvc := recurring.Init(e, db, mw, eventSvc)
	notificationSvc := notification.Init(e, db, mw, redisCache)
	deadlineScheduler := scheduler.Init(db, cfg, eventSvc, votingSvc)

	eventSvc.AddStatusListener(notificationSvc)
	eventSvc.AddStatusListener(waitlistSvc)

	// Background worker consuming asynq tasks.
	worker := asynq.NewServer(queue.RedisOpt(cfg), asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			"default": 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(constants.TaskRecommendationGenerate, recommendationSvc.HandleGenerateTask)
	mux.HandleFunc(constants.TaskDeadlineSweep, deadlineScheduler.HandleSweepTask)
	mux.HandleFunc(constants.TaskRecurringMaterialize, recurringSvc.HandleMaterializeTask)

	go func() {
		if err := worker.Run(mux); err != nil {
			logger.Fatal("worker stopped", "error", err)
		}
	}()

	// Periodic tasks: deadline sweeps and recurring event materialization.
	periodic := asynq.NewScheduler(queue.RedisOpt(cfg), nil)
	if _, err := periodic.Register("@every "+cfg.SweepInterval.String(),
		asynq.NewTask(constants.TaskDeadlineSweep, nil)); err != nil {
		logger.Fatal("failed to register deadline sweep", "error", err)
	}
	if _, err := periodic.Register("@every "+cfg.RecurringInterval.String(),
		asynq.NewTask(constants.TaskRecurringMaterialize, nil)); err != nil {
		logger.Fatal("failed to register recurring materialize", "error", err)
	}
	go func() {
		if err := periodic.Run(); err != nil {
			logger.Fatal("scheduler stopped", "error", err)
		}
	}()

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", "error", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	periodic.Shutdown()
	worker.Shutdown()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	logger.Info("shutdown complete")
}
