package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/odyssey-erp/companyhub/internal/alerts"
	"github.com/odyssey-erp/companyhub/internal/app"
	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/dashboard"
	"github.com/odyssey-erp/companyhub/internal/inventory"
	jobmetrics "github.com/odyssey-erp/companyhub/internal/jobs"
	"github.com/odyssey-erp/companyhub/internal/platform/cache"
	"github.com/odyssey-erp/companyhub/internal/shared"
	"github.com/odyssey-erp/companyhub/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	if cfg.BackendServiceToken == "" {
		logger.Warn("BACKEND_SERVICE_TOKEN is empty; scheduled jobs will be skipped")
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	client := backend.New(backend.Options{
		BaseURL:    cfg.BackendURL,
		Timeout:    cfg.BackendTimeout,
		Logger:     logger,
		Registerer: prometheus.DefaultRegisterer,
		CacheTTL:   cfg.CatalogCacheTTL,
	})
	metrics := jobmetrics.NewMetrics(nil)

	dashboardService := dashboard.NewService(
		dashboard.NewRepository(client),
		dashboard.NewCache(redisClient, cfg.DashboardCacheTTL, logger),
		logger,
	)
	inventoryService := inventory.NewService(inventory.NewRepository(client))
	alertsService := alerts.NewService(alerts.NewRepository(client), logger)
	claims := shared.NewIdempotencyStore(redisClient, "companyhub")

	warmup := jobs.NewDashboardWarmupJob(dashboardService, cfg.BackendServiceToken, logger, metrics)
	scan := jobs.NewLowStockScanJob(inventoryService, alertsService, claims, cfg.BackendServiceToken, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmup.Handle},
			{Type: jobs.TaskLowStockScan, Handler: scan.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.DashboardWarmupCron, Task: jobs.TaskDashboardWarmup},
			{Spec: cfg.LowStockScanCron, Task: jobs.TaskLowStockScan},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.Int("concurrency", cfg.WorkerConcurrency))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
