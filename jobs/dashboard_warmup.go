package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/companyhub/internal/backend"
	jobmetrics "github.com/odyssey-erp/companyhub/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ErrNoServiceToken stops jobs that need a backend token when none is configured.
var ErrNoServiceToken = errors.New("jobs: BACKEND_SERVICE_TOKEN is not set")

// Warmer refills the dashboard cache.
type Warmer interface {
	Warm(ctx context.Context) error
}

// DashboardWarmupJob pre-populates the dashboard cache so the first admin
// page load after expiry stays fast.
type DashboardWarmupJob struct {
	Dashboard Warmer
	Token     string
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(dashboard Warmer, token string, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Dashboard: dashboard, Token: token, Logger: logger, Metrics: metrics}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	payload, err := decodePayload(t)
	if err != nil {
		return err
	}
	tracker := metricsOrDefault(j.Metrics).Track(TaskDashboardWarmup)
	defer func() { err = tracker.End(err) }()

	logger := jobLogger(j.Logger, TaskDashboardWarmup).With(slog.String("request_id", payload.RequestID))
	if j.Token == "" {
		logger.Warn("skipping dashboard warmup", slog.Any("error", ErrNoServiceToken))
		return fmt.Errorf("%w: %w", ErrNoServiceToken, asynq.SkipRetry)
	}

	start := time.Now()
	if err := j.Dashboard.Warm(backend.WithToken(ctx, j.Token)); err != nil {
		logger.Error("dashboard warmup failed", slog.Any("error", err))
		return err
	}
	logger.Info("dashboard warmed", slog.Duration("duration", time.Since(start)))
	return nil
}

func metricsOrDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", job))
}
