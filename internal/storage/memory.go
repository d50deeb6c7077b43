package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend is an in-process implementation of Backend.
// A positive quota caps the summed size of keys and values, the way browser
// local storage does.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
	quota  int
	used   int
}

// NewMemoryBackend creates a new in-memory backend; quota <= 0 means unlimited
func NewMemoryBackend(quota int) *MemoryBackend {
	return &MemoryBackend{
		values: make(map[string]string),
		quota:  quota,
	}
}

// Get retrieves the value under key
func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	return value, ok, nil
}

// Set replaces the value under key
func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used
	if old, ok := m.values[key]; ok {
		used -= len(key) + len(old)
	}
	used += len(key) + len(value)

	if m.quota > 0 && used > m.quota {
		return fmt.Errorf("%w: %d bytes over a %d byte quota", ErrQuotaExceeded, used, m.quota)
	}

	m.values[key] = value
	m.used = used
	return nil
}

// Used returns the number of bytes currently stored
func (m *MemoryBackend) Used() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}

// Ping always succeeds
func (m *MemoryBackend) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op
func (m *MemoryBackend) Close() error {
	return nil
}
