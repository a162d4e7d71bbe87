package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/companyhub/cmd/companyhub/cli"
	"github.com/odyssey-erp/companyhub/internal/alerts"
	"github.com/odyssey-erp/companyhub/internal/app"
	"github.com/odyssey-erp/companyhub/internal/auth"
	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/dashboard"
	"github.com/odyssey-erp/companyhub/internal/inventory"
	"github.com/odyssey-erp/companyhub/internal/observability"
	"github.com/odyssey-erp/companyhub/internal/platform/cache"
	"github.com/odyssey-erp/companyhub/internal/platform/httpx"
	"github.com/odyssey-erp/companyhub/internal/production"
	"github.com/odyssey-erp/companyhub/internal/rbac"
	"github.com/odyssey-erp/companyhub/internal/sales"
	"github.com/odyssey-erp/companyhub/internal/shared"
	"github.com/odyssey-erp/companyhub/internal/view"
	"github.com/odyssey-erp/companyhub/jobs"
	"github.com/odyssey-erp/companyhub/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		os.Exit(runJobs(ctx, cfg, os.Args[2:]))
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

	metrics := observability.NewMetrics()
	client := backend.New(backend.Options{
		BaseURL:    cfg.BackendURL,
		Timeout:    cfg.BackendTimeout,
		Logger:     logger,
		Registerer: metrics.Registerer(),
		CacheTTL:   cfg.CatalogCacheTTL,
	})

	sessionManager := shared.NewSessionManager(redisClient, "companyhub_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	rbacMiddleware := rbac.Middleware{Logger: logger}
	pdfClient := report.NewClient(cfg.GotenbergURL, 30*time.Second)

	authService := auth.NewService(auth.NewRepository(client))
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	inventoryService := inventory.NewService(inventory.NewRepository(client))
	inventoryHandler := inventory.NewHandler(logger, inventoryService, templates, csrfManager, rbacMiddleware)

	salesService := sales.NewService(sales.NewRepository(client), logger)
	salesHandler := sales.NewHandler(logger, salesService, templates, csrfManager, rbacMiddleware)

	productionService := production.NewService(production.NewRepository(client))
	productionHandler := production.NewHandler(logger, productionService, templates, csrfManager, rbacMiddleware)

	alertsService := alerts.NewService(alerts.NewRepository(client), logger)
	alertsHandler := alerts.NewHandler(logger, alertsService, templates, csrfManager, rbacMiddleware)

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL, logger)
	dashboardService := dashboard.NewService(dashboard.NewRepository(client), dashboardCache, logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, templates, csrfManager, rbacMiddleware, pdfClient)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,
		HealthChecks: map[string]httpx.Checker{
			"redis":     cache.Ping(redisClient),
			"gotenberg": pdfClient.Ping,
		},
		AuthHandler:       authHandler,
		DashboardHandler:  dashboardHandler,
		InventoryHandler:  inventoryHandler,
		SalesHandler:      salesHandler,
		ProductionHandler: productionHandler,
		AlertsHandler:     alertsHandler,
		JobHandler:        jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
		IdleTimeout:  cfg.AppIdleTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("backend", cfg.BackendURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client := jobs.NewClient(redisOpt)
	defer client.Close()
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()
	return cli.NewJobsCLI(client, inspector).Run(ctx, args, os.Stdout, os.Stderr)
}
