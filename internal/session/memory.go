package session

import (
	"context"
	"sync"
	"time"
)

const janitorInterval = 10 * time.Minute

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

// MemoryStore is an in-process session store for single-node deployments and
// tests. Expired entries are dropped lazily on access and swept by a janitor.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	clock   func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryStore creates a MemoryStore with the given TTL and starts its
// sweep goroutine. Close stops the goroutine.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	store := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		clock:   time.Now,
		stop:    make(chan struct{}),
	}

	go store.sweep()

	return store
}

func (m *MemoryStore) Create(_ context.Context, data Data) (string, error) {
	id := NewSessionID()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[id] = memoryEntry{data: data, expiresAt: m.clock().Add(m.ttl)}

	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return Data{}, ErrSessionNotFound
	}

	if m.clock().After(entry.expiresAt) {
		delete(m.entries, id)

		return Data{}, ErrSessionNotFound
	}

	return entry.data, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, data Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return ErrSessionNotFound
	}

	// saving refreshes the expiry, a touched session stays alive
	m.entries[id] = memoryEntry{data: data, expiresAt: m.clock().Add(m.ttl)}

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)

	return nil
}

// Close stops the sweep goroutine.
func (m *MemoryStore) Close() {
	m.once.Do(func() {
		close(m.stop)
	})
}

func (m *MemoryStore) sweep() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.dropExpired()
		}
	}
}

func (m *MemoryStore) dropExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	for id, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, id)
		}
	}
}
