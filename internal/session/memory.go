package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	maxAge   time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a store. maxAge bounds sessions whose token has no expiry.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session), maxAge: maxAge, now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if pastMaxAge(&s, m.maxAge, m.now()) {
		delete(m.sessions, id)
		return nil, fmt.Errorf("%w: %s", ErrExpired, id)
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *s
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.now()
	}
	m.sessions[s.ID] = stored
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.IsExpired(now) || pastMaxAge(&s, m.maxAge, now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
