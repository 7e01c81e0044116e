// Package cache memoizes computed dashboard results per dataset version
// and filter selection.
package cache

import "sync"

// Cache stores values keyed by (dataset version, filter key, result name).
// A value is only ever returned for the exact key triple it was stored
// under, so a new dataset version or a different filter can never serve
// stale results.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
}

func New() *Cache {
	return &Cache{entries: make(map[string]any)}
}

func (c *Cache) Get(version, filterKey, name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[compose(version, filterKey, name)]
	return v, ok
}

func (c *Cache) Set(version, filterKey, name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[compose(version, filterKey, name)] = value
}

// GetOrCompute returns the cached value or computes, stores and returns it.
func (c *Cache) GetOrCompute(version, filterKey, name string, compute func() any) any {
	if v, ok := c.Get(version, filterKey, name); ok {
		return v
	}
	v := compute()
	c.Set(version, filterKey, name, v)
	return v
}

func compose(version, filterKey, name string) string {
	return version + "\x00" + filterKey + "\x00" + name
}
