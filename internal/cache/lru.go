package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"geospy/internal/models"
)

// LRUCache implements Service using bounded in-memory storage with
// least-recently-used eviction. At most one entry exists per key and the
// entry count never exceeds the configured capacity.
type LRUCache struct {
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	hits     uint64
	misses   uint64
	mutex    sync.Mutex
}

// lruEntry represents a single cache entry with expiration
type lruEntry struct {
	key       string
	value     interface{}
	expiresAt time.Time
}

// NewLRUCache creates a new bounded in-memory cache
func NewLRUCache(capacity int) (Service, error) {
	return newLRUCache(capacity)
}

// newLRUCache creates the concrete implementation
func newLRUCache(capacity int) (*LRUCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got: %d", capacity)
	}

	return &LRUCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}, nil
}

// Get retrieves a cached value for the given key and refreshes its recency
func (c *LRUCache) Get(ctx context.Context, key string) (interface{}, error) {
	if key == "" {
		return nil, models.ErrInvalidCacheKey
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	elem, exists := c.entries[key]
	if !exists {
		c.misses++
		return nil, models.ErrCacheMiss
	}

	entry := elem.Value.(*lruEntry)
	if time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return nil, models.ErrCacheMiss
	}

	c.order.MoveToFront(elem)
	c.hits++
	return entry.value, nil
}

// Set inserts or overwrites a value. When the capacity bound would be
// exceeded, the least-recently-used entry is evicted before inserting.
func (c *LRUCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return models.ErrInvalidCacheKey
	}
	if ttl <= 0 {
		return fmt.Errorf("TTL must be positive, got: %v", ttl)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()

	// Overwrite keeps exactly one entry per key
	if elem, exists := c.entries[key]; exists {
		entry := elem.Value.(*lruEntry)
		entry.value = value
		entry.expiresAt = now.Add(ttl)
		c.order.MoveToFront(elem)
		return nil
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	elem := c.order.PushFront(&lruEntry{
		key:       key,
		value:     value,
		expiresAt: now.Add(ttl),
	})
	c.entries[key] = elem

	return nil
}

// Delete removes an entry from the cache
func (c *LRUCache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return models.ErrInvalidCacheKey
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if elem, exists := c.entries[key]; exists {
		c.removeElement(elem)
	}
	return nil
}

// Clear empties all entries
func (c *LRUCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*list.Element, c.capacity)
	c.order.Init()
	return nil
}

// Stats reports current occupancy and hit/miss counters
func (c *LRUCache) Stats() models.CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	total := c.hits + c.misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(c.hits) / float64(total)
	}

	return models.CacheStats{
		Size:     c.order.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
		HitRatio: ratio,
	}
}

// evictOldest drops expired entries first, then falls back to the LRU entry.
// Caller must hold the mutex.
func (c *LRUCache) evictOldest() {
	now := time.Now()
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*lruEntry).expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// removeElement deletes an entry from both index and order list.
// Caller must hold the mutex.
func (c *LRUCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*lruEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
