package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/companyhub/internal/alerts"
	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/inventory"
	jobmetrics "github.com/odyssey-erp/companyhub/internal/jobs"
	"github.com/odyssey-erp/companyhub/internal/shared"
)

const (
	lowStockModule = "low_stock_alert"
	lowStockTTL    = 24 * time.Hour
)

// LowStockSource lists items below their minimum, keyed by warehouse.
type LowStockSource interface {
	LowStock(ctx context.Context) (map[string][]inventory.Item, error)
}

// AlertRaiser posts a new alert.
type AlertRaiser interface {
	Create(ctx context.Context, in alerts.CreateInput) error
}

// Claimer guards work so it happens once per key and window.
type Claimer interface {
	Claim(ctx context.Context, module, key string, ttl time.Duration) error
	Release(ctx context.Context, module, key string) error
}

// LowStockScanJob raises one equipment alert per low item per day.
type LowStockScanJob struct {
	Inventory LowStockSource
	Alerts    AlertRaiser
	Claims    Claimer
	Token     string
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(source LowStockSource, raiser AlertRaiser, claims Claimer, token string, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{
		Inventory: source,
		Alerts:    raiser,
		Claims:    claims,
		Token:     token,
		Logger:    logger,
		Metrics:   metrics,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes low-stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Inventory == nil || j.Alerts == nil || j.Claims == nil {
		return errors.New("low stock scan: handler not configured")
	}
	payload, err := decodePayload(t)
	if err != nil {
		return err
	}
	tracker := metricsOrDefault(j.Metrics).Track(TaskLowStockScan)
	defer func() { err = tracker.End(err) }()

	logger := jobLogger(j.Logger, TaskLowStockScan).With(slog.String("request_id", payload.RequestID))
	if j.Token == "" {
		logger.Warn("skipping low stock scan", slog.Any("error", ErrNoServiceToken))
		return fmt.Errorf("%w: %w", ErrNoServiceToken, asynq.SkipRetry)
	}
	ctx = backend.WithToken(ctx, j.Token)

	low, err := j.Inventory.LowStock(ctx)
	if err != nil {
		logger.Error("load low stock", slog.Any("error", err))
		return err
	}

	day := j.now().Format("2006-01-02")
	warehouses := make([]string, 0, len(low))
	for wh := range low {
		warehouses = append(warehouses, wh)
	}
	sort.Strings(warehouses)

	var failures []error
	raised, skipped := 0, 0
	for _, wh := range warehouses {
		count, dup := 0, 0
		for _, item := range low[wh] {
			key := day + ":" + wh + ":" + item.ID.String()
			if err := j.Claims.Claim(ctx, lowStockModule, key, lowStockTTL); err != nil {
				if errors.Is(err, shared.ErrIdempotencyConflict) {
					dup++
					continue
				}
				failures = append(failures, fmt.Errorf("claim %s: %w", key, err))
				continue
			}
			if err := j.Alerts.Create(ctx, LowStockAlert(wh, item)); err != nil {
				if relErr := j.Claims.Release(ctx, lowStockModule, key); relErr != nil {
					logger.Warn("release claim", slog.String("key", key), slog.Any("error", relErr))
				}
				failures = append(failures, fmt.Errorf("raise %s: %w", key, err))
				continue
			}
			count++
		}
		metricsOrDefault(j.Metrics).LowStock(wh, count, dup)
		raised += count
		skipped += dup
	}

	logger.Info("low stock scan finished", slog.Int("raised", raised), slog.Int("skipped", skipped), slog.Int("failed", len(failures)))
	return errors.Join(failures...)
}

// LowStockAlert builds the alert raised for item in warehouse.
func LowStockAlert(warehouse string, item inventory.Item) alerts.CreateInput {
	return alerts.CreateInput{
		Type:     alerts.TypeEquipment,
		Severity: alerts.SeverityMedium,
		Title:    "Low stock: " + item.ProductID,
		Description: fmt.Sprintf("%s holds %d of %s (minimum %d).",
			inventory.WarehouseLabel(warehouse), item.Quantity, item.ProductID, item.MinStock),
	}
}

func (j *LowStockScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
