package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/config"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/handler"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/health"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/infra/dispatchrecorder"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/infra/repository"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/infra/ticklock"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/observability/logging"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/observability/metrics"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/observability/middleware"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/recurrence"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/scheduler"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/service/dispatch"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/service/task"
)

// Version is set via ldflags at build time
var Version = "dev"

const moduleName = logging.Module("task-dispatcher")

func main() {
	os.Exit(run())
}

func run() int {
	once := flag.Bool("once", false, "run a single dispatch tick and exit")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := initObservability(ctx)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	dispatchMetrics, err := metrics.NewDispatchMetrics()
	if err != nil {
		slog.Error("failed to initialize dispatch metrics", slog.String("error", err.Error()))
		return 1
	}

	// Tick summaries go to InfluxDB locally and BigQuery on gcloud
	resultRecorder, err := dispatchrecorder.NewRecorder(ctx, dispatchrecorder.LoadConfig())
	if err != nil {
		slog.Error("failed to initialize dispatch result recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := resultRecorder.Close(); err != nil {
			slog.Warn("failed to close dispatch result recorder", slog.String("error", err.Error()))
		}
	}()

	db, err := repository.NewDB(repository.Driver(cfg.Database.Driver), cfg.Database.DSN)
	if err != nil {
		slog.Error("failed to open database",
			slog.String("event", "db.connect.fail"),
			slog.String("driver", cfg.Database.Driver),
			slog.String("error", err.Error()),
		)
		return 1
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to access database handle", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}()

	slog.Info("database opened", slog.String("driver", cfg.Database.Driver))

	redisClient := redis.NewClient(cfg.Redis.ClientOptions())

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	sender, cleanup, err := initSender(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize notification sender", slog.String("error", err.Error()))
		return 1
	}
	if cleanup != nil {
		defer func() {
			if err := cleanup(); err != nil {
				slog.Error("notification sender cleanup error", slog.String("error", err.Error()))
			}
		}()
	}

	taskRepo := repository.NewTaskRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	calculator := recurrence.NewCalculator()

	dispatchService := dispatch.NewService(
		taskRepo,
		deviceRepo,
		sender,
		calculator,
		ticklock.NewRedisTickLock(redisClient, cfg.Redis.LockKey),
		resultRecorder,
		dispatchMetrics,
		dispatch.Options{
			SendTimeout:            cfg.Dispatch.SendTimeout,
			MaxConcurrentSends:     cfg.Dispatch.MaxConcurrentSends,
			TaskConcurrency:        cfg.Dispatch.TaskConcurrency,
			LockTTL:                cfg.Dispatch.LockTTL,
			RenotifyUntilCompleted: cfg.Dispatch.RenotifyUntilCompleted,
			AdvancePolicy:          cfg.Dispatch.AdvancePolicy(),
		},
	)
	taskService := task.NewService(taskRepo, calculator)

	if *once {
		return runOnce(ctx, dispatchService)
	}

	if cfg.Dispatch.CronSpec != "" {
		trigger, err := scheduler.New(cfg.Dispatch.CronSpec, dispatchService)
		if err != nil {
			slog.Error("failed to create dispatch trigger", slog.String("error", err.Error()))
			return 1
		}
		trigger.Start(ctx)
		defer trigger.Stop()
	} else {
		slog.Info("in-process dispatch trigger disabled, waiting for external ticks")
	}

	dispatchHandler := handler.NewDispatchHandler(dispatchService)
	taskHandler := handler.NewTaskHandler(taskService)
	deviceHandler := handler.NewDeviceHandler(deviceRepo)

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:  []string{"/health", "/health/live", "/health/ready", "/metrics"},
		Module:     moduleName,
		Worker:     true,
		TracerName: "github.com/KasumiMercury/primind-task-dispatcher/internal/observability/middleware",
		JobNameResolver: func(c *gin.Context) string {
			if runID := c.Request.Header.Get("X-Run-ID"); runID != "" {
				return "dispatch:" + runID
			}
			return c.FullPath()
		},
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	healthChecker := health.NewChecker(redisClient, sqlDB, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	v1 := r.Group("/api/v1")
	{
		v1.POST("/dispatch", dispatchHandler.HandleDispatch)
		v1.POST("/devices", deviceHandler.HandleRegister)
		taskHandler.Register(v1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(r, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("cron_spec", cfg.Dispatch.CronSpec),
			slog.Int("task_concurrency", cfg.Dispatch.TaskConcurrency),
			slog.Int("max_concurrent_sends", cfg.Dispatch.MaxConcurrentSends),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}

func runOnce(ctx context.Context, svc *dispatch.Service) int {
	result, err := svc.RunTick(ctx, time.Now())
	if err != nil {
		slog.Error("dispatch tick failed", slog.String("error", err.Error()))
		return 1
	}

	slog.Info("dispatch tick finished",
		slog.String("run_id", result.RunID),
		slog.Bool("skipped", result.Skipped),
		slog.Int("selected", result.SelectedCount),
		slog.Int("notified", result.NotifiedCount),
		slog.Int("failed_sends", result.FailedSendCount),
		slog.Int("advanced", result.AdvancedCount),
	)
	return 0
}
