package paramstore

import (
	"context"
	"maps"
	"sync"
)

// Memory is a concurrency-safe in-memory parameter store.
type Memory struct {
	mu     sync.RWMutex
	params map[string]string
}

// NewMemory creates a Memory store seeded with params (copied).
func NewMemory(params map[string]string) *Memory {
	m := &Memory{params: make(map[string]string, len(params))}
	maps.Copy(m.params, params)
	return m
}

// GetParam returns the value for key and whether it was set.
func (m *Memory) GetParam(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.params[key]
	return v, ok, nil
}

// SetParam stores value under key.
func (m *Memory) SetParam(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[key] = value
	return nil
}
