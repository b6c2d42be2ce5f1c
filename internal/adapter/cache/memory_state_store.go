package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rcnpstock/schweb-email-login/internal/domain"
	"github.com/rcnpstock/schweb-email-login/internal/repository"
)

// MemoryStateStore implements LoginStateStore in process memory. Used when no
// Redis address is configured; state does not survive a restart, which only
// forces the operator to restart the login flow.
type MemoryStateStore struct {
	mu      sync.Mutex
	entries map[string]memoryStateEntry
}

type memoryStateEntry struct {
	state     domain.LoginState
	expiresAt time.Time
}

var _ repository.LoginStateStore = (*MemoryStateStore)(nil)

// NewMemoryStateStore constructs an empty in-memory store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{entries: make(map[string]memoryStateEntry)}
}

func (s *MemoryStateStore) SaveState(_ context.Context, key string, data domain.LoginState, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryStateEntry{state: data, expiresAt: time.Now().Add(ttl)}
	s.pruneLocked(time.Now())
	return nil
}

func (s *MemoryStateStore) GetState(_ context.Context, key string) (*domain.LoginState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	state := entry.state
	return &state, nil
}

func (s *MemoryStateStore) DeleteState(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStateStore) pruneLocked(now time.Time) {
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}
