package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	storedAt  time.Time
	expiresAt time.Time
}

// Memory is an in-process Store with lazy TTL expiry. Entries are only
// removed when a lookup finds them expired; there is no size bound and no
// LRU, so growth is bounded only by the key space of a process lifetime.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory constructs an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the stored payload while it is still within its TTL. An
// expired entry is deleted and reported as a miss.
func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return Entry{}, false, nil
	}

	if !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; another Set may have replaced the
		// entry since the read above.
		if cur, ok := m.entries[key]; ok && cur.expiresAt == entry.expiresAt {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return Entry{}, false, nil
	}

	return Entry{
		Payload:  append([]byte(nil), entry.payload...),
		StoredAt: entry.storedAt,
	}, true, nil
}

// Set stores a payload under key for the given TTL, replacing any prior
// entry for the same key.
func (m *Memory) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	now := m.now()
	entry := memoryEntry{
		payload:   append([]byte(nil), payload...),
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Len reports how many entries are currently held, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
