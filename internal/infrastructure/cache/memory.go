package cache

import (
	"context"
	"sync"

	"github.com/foodtracker/backend/internal/domain"
)

// MemoryCache is a thread-safe in-memory key-value store.
// Entries never expire; freshness is decided by the caller.
type MemoryCache struct {
	data  map[string][]byte
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string][]byte),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	value, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	// Hand out a copy so callers cannot mutate stored bytes
	return append([]byte(nil), value...), nil
}

// Set stores a value in the cache, replacing any previous value
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = append([]byte(nil), value...)
	return nil
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string][]byte)
}
