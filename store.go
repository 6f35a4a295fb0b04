package session

import (
	"context"
	"sync"
)

// DefaultStorageKey is the key the persisted bearer token lives under. It is
// the only persisted session field; identity is always re-derived.
const DefaultStorageKey = "authToken"

// TokenStore holds the current bearer token across process restarts. There
// is exactly one logical writer (the Manager); concurrent external writers
// are not supported and last write wins.
type TokenStore interface {
	Get(ctx context.Context) (token string, present bool, err error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryTokenStore keeps the token in process memory. It backs tests and
// embeddings that do not need the token to survive a restart.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	token   string
	present bool
}

var _ TokenStore = (*MemoryTokenStore)(nil)

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Get implements TokenStore.
func (s *MemoryTokenStore) Get(context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.present, nil
}

// Set implements TokenStore.
func (s *MemoryTokenStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.present = true
	return nil
}

// Clear implements TokenStore.
func (s *MemoryTokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.present = false
	return nil
}
