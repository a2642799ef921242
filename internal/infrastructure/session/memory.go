package session

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process session store for tests and single-node runs
// without redis.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]entry
	now      func() time.Time
}

type entry struct {
	username  string
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]entry),
		now:      time.Now,
	}
}

func (m *Memory) Put(ctx context.Context, sessionID, username string) error {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionID] = entry{username: username, expiresAt: m.now().Add(TTL)}
	return nil
}

func (m *Memory) Get(ctx context.Context, sessionID string) (string, error) {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return "", ErrNotFound
	}
	if m.now().After(e.expiresAt) {
		delete(m.sessions, sessionID)
		return "", ErrNotFound
	}
	return e.username, nil
}

func (m *Memory) Delete(ctx context.Context, sessionID string) error {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}
