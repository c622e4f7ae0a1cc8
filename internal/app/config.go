package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	BackendURL      string        `envconfig:"BACKEND_URL" default:"http://localhost:8085"`
	BackendTimeout  time.Duration `envconfig:"BACKEND_TIMEOUT" default:"15s"`
	DefaultDatabase string        `envconfig:"DEFAULT_DATABASE" default:"SEED"`
	FetchDebounce   time.Duration `envconfig:"FETCH_DEBOUNCE" default:"100ms"`
	LiveOrigins     []string      `envconfig:"LIVE_ORIGINS"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	CSRFSecret string        `envconfig:"CSRF_SECRET" required:"true"`

	OperatorEmail        string `envconfig:"OPERATOR_EMAIL" default:"operator@bank.local"`
	OperatorPasswordHash string `envconfig:"OPERATOR_PASSWORD_HASH"`

	RateLimitPerMinute     int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	MutationLimitPerMinute int `envconfig:"MUTATION_LIMIT_PER_MINUTE" default:"30"`

	StatsCacheTTL  time.Duration `envconfig:"STATS_CACHE_TTL" default:"5m"`
	WarmupSchedule string        `envconfig:"WARMUP_SCHEDULE" default:"@every 10m"`
	DocsURL        string        `envconfig:"DOCS_URL"`
}

// LoadConfig reads configuration from environment variables. Values from the
// given .env files (default ".env") fill in whatever the environment lacks.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if _, err := backend.ParseDatabase(cfg.DefaultDatabase); err != nil {
		return nil, fmt.Errorf("DEFAULT_DATABASE: %w", err)
	}
	return &cfg, nil
}

func loadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Database returns the dataset used until the operator picks another.
func (c *Config) Database() backend.Database {
	if c == nil {
		return backend.DatabaseSeed
	}
	db, err := backend.ParseDatabase(c.DefaultDatabase)
	if err != nil {
		return backend.DatabaseSeed
	}
	return db
}

// LoginEnabled reports whether operator sign-in is enforced.
func (c *Config) LoginEnabled() bool {
	return c != nil && c.OperatorPasswordHash != ""
}
