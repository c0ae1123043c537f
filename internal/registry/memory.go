package registry

import (
	"context"
	"sync"
)

// Memory is the single-process Registry implementation.
type Memory struct {
	mu    sync.RWMutex
	conns map[int64]string
}

// NewMemory constructs an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{conns: make(map[int64]string)}
}

func (m *Memory) Register(_ context.Context, userID int64, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[userID] = connID
	return nil
}

func (m *Memory) Lookup(_ context.Context, userID int64) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	connID, ok := m.conns[userID]
	return connID, ok, nil
}

func (m *Memory) Unregister(_ context.Context, userID int64, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.conns[userID]; ok && current == connID {
		delete(m.conns, userID)
	}
	return nil
}

var _ Registry = (*Memory)(nil)
