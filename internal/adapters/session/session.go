// Package session provides the key-value stores that hold per-browser data:
// the stored user written at login and the new-bill draft.
package session

import (
	"context"
	"sync"

	"github.com/csg33k/billed/internal/ports"
)

var (
	_ ports.SessionStore = (*Memory)(nil)
	_ ports.SessionStore = (*Redis)(nil)
	_ ports.SessionStore = scoped{}
)

// Memory is a process-local store. Data is lost on restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Scoped returns a view of backend whose keys live under the given session
// id, so two browsers never see each other's entries.
func Scoped(backend ports.SessionStore, id string) ports.SessionStore {
	return scoped{backend: backend, prefix: "session:" + id + ":"}
}

type scoped struct {
	backend ports.SessionStore
	prefix  string
}

func (s scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.backend.Get(ctx, s.prefix+key)
}

func (s scoped) Set(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.prefix+key, value)
}
