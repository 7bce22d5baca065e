package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"inkpress/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	TrendingKey  = "posts:trending"
	TagUsageKey  = "tags:usage"
	TrendingTTL  = 60 * time.Second
	TagUsageTTL  = 5 * time.Minute
	keyNamespace = "inkpress:"
)

// Store is a JSON cache over Redis. A nil Store or a Store without a client
// never hits and never fails.
type Store struct {
	client *redis.Client
}

// NewStore returns a Store backed by client, which may be nil.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) enabled() bool {
	return s != nil && s.client != nil
}

// GetJSON loads key into dest. It reports false on a miss or any Redis error.
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if !s.enabled() {
		return false
	}
	raw, err := s.client.Get(ctx, keyNamespace+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		middleware.Logger.WarnContext(ctx, "cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON stores value under key for ttl. Failures are logged and dropped.
func (s *Store) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.client.Set(ctx, keyNamespace+key, raw, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

// Aside serves dest from key when cached, otherwise fills it with load and caches the result.
func (s *Store) Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if s.GetJSON(ctx, key, dest) {
		return nil
	}
	if err := load(); err != nil {
		return err
	}
	s.SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate removes the given keys.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if !s.enabled() || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyNamespace + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidate failed", "keys", keys, "error", err)
	}
}
