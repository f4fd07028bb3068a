package credstore

import (
	"context"
	"sync"
)

// Memory is an in-process slot store for tests and ephemeral sessions.
type Memory struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{slots: map[string]string{}}
}

func (m *Memory) Get(_ context.Context, slot string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.slots[slot]
	if !ok {
		return "", ErrSlotNotFound
	}
	return value, nil
}

func (m *Memory) Set(_ context.Context, slot, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, slot)
	return nil
}

func (m *Memory) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = map[string]string{}
	return nil
}
