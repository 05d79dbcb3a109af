package watcher

import "sync"

// Cache holds values keyed by file path. Subscribed to a Watcher, it drops an
// entry whenever its file changes.
type Cache[V any] struct {
	mu   sync.RWMutex
	data map[string]V
}

// NewCache creates an empty cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{data: make(map[string]V)}
}

// Get returns the cached value for path.
func (c *Cache[V]) Get(path string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[path]
	return v, ok
}

// Set stores a value.
func (c *Cache[V]) Set(path string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[path] = v
}

// Invalidate removes an entry.
func (c *Cache[V]) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, path)
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// OnFileEvent implements Subscriber.
func (c *Cache[V]) OnFileEvent(e Event) {
	c.Invalidate(e.Path)
}
