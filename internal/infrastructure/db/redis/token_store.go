package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sellos-g/web-gate/internal/core/domain"
)

// TokenStore keeps one-time tokens and bearer revocations in Redis.
// Key formats:
//
//	<prefix>:token:<purpose>:<token>  → subject (expires with the token)
//	<prefix>:revoked:<token>          → "1"     (expires with the bearer)
type TokenStore struct {
	client *redis.Client
	prefix string
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
func NewTokenStore(client *redis.Client, prefix string) *TokenStore {
	return &TokenStore{client: client, prefix: prefix}
}

// Issue stores subject under a fresh random token.
func (s *TokenStore) Issue(ctx context.Context, purpose, subject string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.tokenKey(purpose, token), subject, ttl).Err(); err != nil {
		return "", fmt.Errorf("issue %s token: %w", purpose, err)
	}
	return token, nil
}

// Consume atomically reads and deletes a token.
func (s *TokenStore) Consume(ctx context.Context, purpose, token string) (string, error) {
	subject, err := s.client.GetDel(ctx, s.tokenKey(purpose, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("consume %s token: %w", purpose, err)
	}
	return subject, nil
}

// Revoke marks a bearer token as revoked until ttl elapses.
func (s *TokenStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.revokedKey(token), "1", ttl).Err()
}

// IsRevoked reports whether a bearer token was revoked.
func (s *TokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.revokedKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (s *TokenStore) tokenKey(purpose, token string) string {
	return fmt.Sprintf("%s:token:%s:%s", s.prefix, purpose, token)
}

func (s *TokenStore) revokedKey(token string) string {
	return fmt.Sprintf("%s:revoked:%s", s.prefix, token)
}
