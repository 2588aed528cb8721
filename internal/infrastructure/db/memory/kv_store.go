// Package memory holds process-local implementations of the storage ports,
// used in development (SESSION_STORE=memory) and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/sellos-g/web-gate/internal/core/ports"
)

// Storage keeps one key space per browser id.
type Storage struct {
	mu     sync.Mutex
	scopes map[string]*KVStore
}

func NewStorage() *Storage {
	return &Storage{scopes: make(map[string]*KVStore)}
}

// Scope returns the store of browserID, creating it on first use.
func (s *Storage) Scope(browserID string) ports.KeyValueStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	kv, ok := s.scopes[browserID]
	if !ok {
		kv = NewKVStore()
		s.scopes[browserID] = kv
	}
	return kv
}

// KVStore is a map-backed ports.KeyValueStore. Failure hooks let tests
// simulate a storage outage.
type KVStore struct {
	mu   sync.RWMutex
	data map[string]string

	FailGet    error
	FailSet    error
	FailRemove error
}

func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string]string)}
}

func (s *KVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailGet != nil {
		return "", false, s.FailGet
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSet != nil {
		return s.FailSet
	}
	s.data[key] = value
	return nil
}

func (s *KVStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRemove != nil {
		return s.FailRemove
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Len returns the number of stored keys.
func (s *KVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
