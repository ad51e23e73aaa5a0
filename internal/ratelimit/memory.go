package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count     int
	expiresAt time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*windowEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) CheckRateLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.windows[key]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &windowEntry{expiresAt: now.Add(window)}
		m.windows[key] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}

// Sweep drops expired windows and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.windows {
		if !now.Before(entry.expiresAt) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}
