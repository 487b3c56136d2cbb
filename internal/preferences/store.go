package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"sports-odds-display/internal/config"
	"sports-odds-display/internal/odds"
)

var (
	// ErrNotFound is returned when a user has no stored notation.
	ErrNotFound = errors.New("preference not found")

	// ErrInvalidNotation is returned when storing an unsupported notation.
	ErrInvalidNotation = errors.New("invalid notation")
)

// Store persists each user's chosen display notation.
type Store interface {
	Get(ctx context.Context, userID string) (odds.Notation, error)
	Set(ctx context.Context, userID string, n odds.Notation) error
	Delete(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
	Close() error
}

// Resolve reads the notation to render with for userID. Unset, unreadable
// or unrecognised preferences yield fallback; read failures are logged, not
// returned.
func Resolve(ctx context.Context, store Store, userID string, fallback odds.Notation) odds.Notation {
	if store == nil || userID == "" {
		return fallback
	}

	n, err := store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return fallback
	}
	if err != nil {
		slog.Warn("Preference lookup failed", "user", userID, "error", err)
		return fallback
	}
	if !n.Valid() {
		slog.Warn("Stored preference unrecognised", "user", userID, "notation", string(n))
		return fallback
	}
	return n
}

// Open connects to the backend selected by cfg.PreferenceBackend.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.PreferenceBackend {
	case config.BackendSQLite:
		s, err := NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.BackendPostgres:
		s, err := NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return NewRedisStore(client), nil
	}

	return nil, fmt.Errorf("unknown preference backend %q", cfg.PreferenceBackend)
}
