package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sellos-g/web-gate/internal/core/domain"
)

type tokenEntry struct {
	subject   string
	expiresAt time.Time
}

// TokenStore is an in-process ports.TokenStore.
type TokenStore struct {
	mu      sync.Mutex
	tokens  map[string]tokenEntry
	revoked map[string]time.Time
	now     func() time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens:  make(map[string]tokenEntry),
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *TokenStore) Issue(_ context.Context, purpose, subject string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[purpose+":"+token] = tokenEntry{subject: subject, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return token, nil
}

func (s *TokenStore) Consume(_ context.Context, purpose, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := purpose + ":" + token
	entry, ok := s.tokens[key]
	if !ok {
		return "", domain.ErrInvalidToken
	}
	delete(s.tokens, key)
	if s.now().After(entry.expiresAt) {
		return "", domain.ErrInvalidToken
	}
	return entry.subject, nil
}

func (s *TokenStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	s.revoked[token] = s.now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *TokenStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.revoked[token]
	if !ok {
		return false, nil
	}
	if s.now().After(until) {
		delete(s.revoked, token)
		return false, nil
	}
	return true, nil
}
