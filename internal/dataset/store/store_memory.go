package store

import (
	"context"
	"sync"
	"time"

	"bizverify/pkg/platform/sentinel"
	"bizverify/pkg/requestcontext"
)

type cachedExport struct {
	body     []byte
	storedAt time.Time
}

// InMemoryCache keeps fetched exports in process memory with TTL expiration.
type InMemoryCache struct {
	mu       sync.RWMutex
	exports  map[string]cachedExport
	cacheTTL time.Duration
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
func NewInMemoryCache(cacheTTL time.Duration) *InMemoryCache {
	return &InMemoryCache{
		exports:  make(map[string]cachedExport),
		cacheTTL: cacheTTL,
	}
}

// Save stores an export body under key, stamped with the context time.
func (c *InMemoryCache) Save(ctx context.Context, key string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exports[key] = cachedExport{body: body, storedAt: requestcontext.Now(ctx)}
	return nil
}

// Find returns the cached export for key.
// Returns sentinel.ErrNotFound if the entry does not exist or has expired past the cache TTL.
func (c *InMemoryCache) Find(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.exports[key]; ok {
		if requestcontext.Now(ctx).Sub(cached.storedAt) < c.cacheTTL {
			return cached.body, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Delete drops the entry for key. Deleting a missing key is not an error.
func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.exports, key)
	return nil
}
