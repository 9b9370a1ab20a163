// Package storage provides the key/value persistence that contact submissions fall back to
// when the backend cannot be reached, modelled on the browser's localStorage.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by GetItem for a key that has no value.
var ErrNotFound = errors.New("storage: key not found")

// Storage is a string key/value store.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key string, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// UpdateFunc computes the new value of a key from its current one. found is false when the
// key has no value.
type UpdateFunc func(current string, found bool) (string, error)

// Updater is implemented by backends that can replace a value atomically with respect to
// other writers of the same backend, including other processes where the backend allows it.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Memory keeps the items in a map. The zero value is not usable, call NewMemory.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) SetItem(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

// Update runs fn and stores its result while holding the store's lock.
func (m *Memory) Update(_ context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, found := m.items[key]
	value, err := fn(current, found)
	if err != nil {
		return err
	}
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
