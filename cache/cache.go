// Package cache provides a generic TTL and capacity-bounded store.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache stores values with a per-entry TTL and evicts the least recently
// used entry once capacity is exceeded. Expired entries are dropped before
// LRU eviction is considered.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most recently used
	now      func() time.Time
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	insertedAt time.Time
	ttl        time.Duration
}

// New creates a cache holding at most capacity entries.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Set inserts or replaces a value. A TTL of zero means the entry never
// expires (it is still subject to LRU eviction).
func (c *Cache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.insertedAt = c.now()
		e.ttl = ttl
		c.order.MoveToFront(el)
		return
	}

	c.evictExpiredLocked()
	for len(c.items) >= c.capacity {
		c.evictOldestLocked()
	}

	el := c.order.PushFront(&entry[K, V]{
		key:        key,
		value:      value,
		insertedAt: c.now(),
		ttl:        ttl,
	})
	c.items[key] = el
}

// Get returns the value for key if present and not expired, marking it
// as recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.expiredLocked(e) {
		c.removeLocked(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return e.value, true
}

// Delete removes key if present.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// Len returns the number of live (unexpired) entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictExpiredLocked()
	return len(c.items)
}

func (c *Cache[K, V]) expiredLocked(e *entry[K, V]) bool {
	return e.ttl > 0 && c.now().Sub(e.insertedAt) >= e.ttl
}

func (c *Cache[K, V]) evictExpiredLocked() {
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if e := el.Value.(*entry[K, V]); c.expiredLocked(e) {
			c.removeLocked(el)
		}
		el = prev
	}
}

func (c *Cache[K, V]) evictOldestLocked() {
	if el := c.order.Back(); el != nil {
		c.removeLocked(el)
	}
}

func (c *Cache[K, V]) removeLocked(el *list.Element) {
	e := el.Value.(*entry[K, V])
	c.order.Remove(el)
	delete(c.items, e.key)
}
