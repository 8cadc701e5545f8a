package revocation

import (
	"context"
	"sync"
	"time"
)

// Store records token ids as revoked for the remaining lifetime of the
// underlying token. Entries expire on their own; there is no un-revoke.
type Store interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryStore keeps the revocation list in-process. Used in development
// and tests; production deployments point at Redis instead.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
	}
}

func (m *MemoryStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (m *MemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	expiresAt, exists := m.entries[jti]
	m.mu.RUnlock()

	if !exists {
		return false, nil
	}

	if time.Now().After(expiresAt) {
		m.mu.Lock()
		delete(m.entries, jti)
		m.mu.Unlock()
		return false, nil
	}

	return true, nil
}
