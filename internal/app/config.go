package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the console and the worker.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppIdleTimeout    time.Duration `envconfig:"APP_IDLE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	BackendURL          string        `envconfig:"BACKEND_URL" default:"http://localhost:5000/api"`
	BackendTimeout      time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	BackendServiceToken string        `envconfig:"BACKEND_SERVICE_TOKEN"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"8h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://localhost:3000"`

	DashboardCacheTTL  time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"60s"`
	CatalogCacheTTL    time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	WorkerConcurrency   int    `envconfig:"WORKER_CONCURRENCY" default:"5"`
	LowStockScanCron    string `envconfig:"LOW_STOCK_SCAN_CRON" default:"@every 30m"`
	DashboardWarmupCron string `envconfig:"DASHBOARD_WARMUP_CRON" default:"@every 5m"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if cfg.BackendURL == "" {
		return nil, errors.New("backend url must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
