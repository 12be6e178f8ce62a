// Package storage provides key-value backends for the dashboard collection store.
package storage

import (
	"context"
	"sync"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// Memory keeps values in process. It is the default backend for tests and
// the demo server.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ dashboard.KeyValue = (*Memory)(nil)

// NewMemory builds an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

// Get returns a copy of the stored value.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set stores a copy of value.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}
