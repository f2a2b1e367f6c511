package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Environment     string
	Port            string
	ServiceName     string
	ServiceVersion  string
	ShutdownTimeout time.Duration

	Database  DatabaseConfig
	RateLimit RateLimitConfig

	AllowedOrigins []string
	EnforceHTTPS   bool

	OTLPEndpoint string
	MetricsPort  string
	LokiURL      string
}

type DatabaseConfig struct {
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AcquireTimeout  time.Duration
	LogQueries      bool
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
	RedisURL string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment:     getEnv("APP_ENV", EnvDevelopment),
		Port:            getEnv("PORT", "3000"),
		ServiceName:     getEnv("SERVICE_NAME", "todoservice"),
		ServiceVersion:  getEnv("SERVICE_VERSION", "1.0.0"),
		AllowedOrigins:  parseList(getEnv("ALLOWED_ORIGINS", "*")),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		MetricsPort:     getEnv("METRICS_PORT", "9091"),
		LokiURL:         os.Getenv("LOKI_URL"),
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite3"),
		},
		RateLimit: RateLimitConfig{
			RedisURL: os.Getenv("REDIS_URL"),
		},
	}

	cfg.Database.URL = getEnv("DATABASE_URL", os.Getenv("DATABASE_PATH"))
	if cfg.Database.URL == "" && cfg.Database.Driver == "sqlite3" {
		cfg.Database.URL = "database.db"
	}

	var err error

	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if cfg.Database.MaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}

	if cfg.Database.MaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}

	if cfg.Database.ConnMaxLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return nil, err
	}

	if cfg.Database.AcquireTimeout, err = getDuration("DB_ACQUIRE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	if cfg.Database.LogQueries, err = getBool("DB_LOG_QUERIES", false); err != nil {
		return nil, err
	}

	if cfg.RateLimit.Enabled, err = getBool("RATE_LIMIT_ENABLED", true); err != nil {
		return nil, err
	}

	if cfg.RateLimit.Requests, err = getInt("RATE_LIMIT_REQUESTS", 100); err != nil {
		return nil, err
	}

	if cfg.RateLimit.Window, err = getDuration("RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}

	if cfg.EnforceHTTPS, err = getBool("ENFORCE_HTTPS", cfg.IsProduction()); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for driver %s", c.Database.Driver)
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limit needs a positive RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}

	return b, nil
}

// getDuration accepts Go durations ("30s") or a plain number of milliseconds.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}

	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}

func parseList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil
	}

	return items
}
