package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sports-odds-display/internal/odds"
)

// Preference store backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Defaults for configuration values.
const (
	DefaultPort                  = "8080"
	DefaultBackend               = BackendSQLite
	DefaultDBPath                = "/data/preferences.db"
	DefaultRedisURL              = "redis://localhost:6379/0"
	DefaultFeedRequestsPerMinute = 60
	DefaultFeedTimeout           = 10 * time.Second
	DefaultAlertCooldown         = 5 * time.Minute
	DefaultCleanupInterval       = 10 * time.Minute
	DefaultLogLevel              = "info"
)

// Config holds all application configuration.
type Config struct {
	Port     string
	LogLevel string

	// Display preference storage
	PreferenceBackend string
	DBPath            string // sqlite file
	DatabaseURL       string // postgres DSN
	RedisURL          string
	DefaultNotation   odds.Notation

	// Upstream odds feed (optional)
	FeedURL               string
	FeedAPIKey            string
	FeedRequestsPerMinute int
	FeedTimeout           time.Duration

	CORSAllowedOrigins []string
	AlertCooldown      time.Duration
}

// Load reads configuration from environment variables (and .env file if present).
func Load() Config {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg := Config{
		Port:     DefaultPort,
		LogLevel: DefaultLogLevel,

		PreferenceBackend: DefaultBackend,
		DBPath:            DefaultDBPath,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          DefaultRedisURL,
		DefaultNotation:   odds.DefaultNotation,

		FeedURL:               strings.TrimRight(os.Getenv("ODDS_FEED_URL"), "/"),
		FeedAPIKey:            os.Getenv("ODDS_FEED_API_KEY"),
		FeedRequestsPerMinute: DefaultFeedRequestsPerMinute,
		FeedTimeout:           DefaultFeedTimeout,

		CORSAllowedOrigins: []string{"http://localhost:3000"},
		AlertCooldown:      DefaultAlertCooldown,
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("PREFERENCE_BACKEND"); v != "" {
		cfg.PreferenceBackend = strings.ToLower(v)
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}

	// Unknown names are kept verbatim so Validate can report them
	if v := os.Getenv("DEFAULT_NOTATION"); v != "" {
		if n, err := odds.ParseNotation(v); err == nil {
			cfg.DefaultNotation = n
		} else {
			cfg.DefaultNotation = odds.Notation(v)
		}
	}

	if v := os.Getenv("FEED_REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FeedRequestsPerMinute = n
		}
	}

	if v := os.Getenv("FEED_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.FeedTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSAllowedOrigins = origins
	}

	if v := os.Getenv("MALFORMED_ALERT_COOLDOWN_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			cfg.AlertCooldown = time.Duration(sec) * time.Second
		}
	}

	return cfg
}

// Validate checks that configuration values are within acceptable ranges.
func Validate(cfg Config) error {
	switch cfg.PreferenceBackend {
	case BackendSQLite:
		if cfg.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("PREFERENCE_BACKEND must be sqlite, postgres or redis, got %q", cfg.PreferenceBackend)
	}
	if !cfg.DefaultNotation.Valid() {
		return fmt.Errorf("DEFAULT_NOTATION must be moneyline, decimal or fractional, got %q", cfg.DefaultNotation)
	}
	if cfg.FeedRequestsPerMinute < 6 {
		return fmt.Errorf("FEED_REQUESTS_PER_MINUTE must be at least 6, got %d", cfg.FeedRequestsPerMinute)
	}
	if cfg.FeedTimeout < 100*time.Millisecond {
		return fmt.Errorf("FEED_TIMEOUT_MS must be at least 100ms, got %v", cfg.FeedTimeout)
	}
	if cfg.AlertCooldown < 0 {
		return fmt.Errorf("MALFORMED_ALERT_COOLDOWN_SEC must be non-negative, got %v", cfg.AlertCooldown)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps LOG_LEVEL to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", s)
}

// FeedEnabled reports whether an upstream odds feed is configured.
func (c Config) FeedEnabled() bool {
	return c.FeedURL != ""
}
