package cache

import (
	"context"
	"time"
)

// Entry is a cached payload together with the moment it was stored.
type Entry struct {
	Payload  []byte
	StoredAt time.Time
}

// Store is the cache capability injected into the fetch pipeline. Payloads
// are opaque bytes so repeated hits return byte-identical responses.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// Noop implements a zero-effect store for deployments with caching disabled.
type Noop struct{}

// Get always reports a miss.
func (Noop) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, nil
}

// Set performs no operation and always succeeds.
func (Noop) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
