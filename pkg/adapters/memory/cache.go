package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/agavesunset/agave/pkg/domain"
)

// Cache implements ports.ResultCache in memory.
// Safe for concurrent use.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewCache creates a new in-memory cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Set stores the output. Entries are kept serialized so callers can't mutate
// cached results through shared slices or maps.
func (c *Cache) Set(ctx context.Context, key string, out domain.Output) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

// Get retrieves the output stored under key.
func (c *Cache) Get(ctx context.Context, key string) (domain.Output, error) {
	c.mu.RLock()
	data, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		return domain.Output{}, domain.ErrCacheMiss
	}

	var out domain.Output
	if err := json.Unmarshal(data, &out); err != nil {
		return domain.Output{}, fmt.Errorf("failed to unmarshal output: %w", err)
	}
	return out, nil
}

// Delete removes the entry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// List returns the cached keys in sorted order.
func (c *Cache) List(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
