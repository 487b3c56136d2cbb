package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"sports-odds-display/internal/odds"
)

// RedisStore keeps display preferences as plain string keys without expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a preference store on an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

func notationKey(userID string) string {
	return fmt.Sprintf("prefs:%s:notation", userID)
}

// Get returns the stored notation for userID, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, userID string) (odds.Notation, error) {
	v, err := s.client.Get(ctx, notationKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading preference: %w", err)
	}
	return odds.Notation(v), nil
}

// Set stores the notation for userID.
func (s *RedisStore) Set(ctx context.Context, userID string, n odds.Notation) error {
	if !n.Valid() {
		return fmt.Errorf("storing preference: %w: %q", ErrInvalidNotation, n)
	}
	if err := s.client.Set(ctx, notationKey(userID), string(n), 0).Err(); err != nil {
		return fmt.Errorf("writing preference: %w", err)
	}
	return nil
}

// Delete removes the stored notation for userID.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, notationKey(userID)).Err(); err != nil {
		return fmt.Errorf("deleting preference: %w", err)
	}
	return nil
}

// Ping checks the redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
