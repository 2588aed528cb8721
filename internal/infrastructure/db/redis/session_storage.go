package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sellos-g/web-gate/internal/core/ports"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// SessionStorage keeps the persisted storage of every browser in Redis.
// Each browser id maps to one hash; its fields are the storage keys.
// Key format: <prefix>:tab:<browser_id>
type SessionStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionStorage creates a SessionStorage. Hashes expire ttl after their
// last write; ttl <= 0 uses 30 days.
func NewSessionStorage(client *redis.Client, prefix string, ttl time.Duration) *SessionStorage {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStorage{client: client, prefix: prefix, ttl: ttl}
}

// Scope returns the store of one browser.
func (s *SessionStorage) Scope(browserID string) ports.KeyValueStore {
	return &browserStore{client: s.client, key: s.Key(browserID), ttl: s.ttl}
}

// Key returns the hash key of a browser id.
func (s *SessionStorage) Key(browserID string) string {
	return fmt.Sprintf("%s:tab:%s", s.prefix, browserID)
}

type browserStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (b *browserStore) Get(ctx context.Context, field string) (string, bool, error) {
	v, err := b.client.HGet(ctx, b.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session storage get %s: %w", field, err)
	}
	return v, true, nil
}

func (b *browserStore) Set(ctx context.Context, field, value string) error {
	pipe := b.client.TxPipeline()
	pipe.HSet(ctx, b.key, field, value)
	pipe.Expire(ctx, b.key, b.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session storage set %s: %w", field, err)
	}
	return nil
}

func (b *browserStore) Remove(ctx context.Context, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := b.client.HDel(ctx, b.key, fields...).Err(); err != nil {
		return fmt.Errorf("session storage remove: %w", err)
	}
	return nil
}
