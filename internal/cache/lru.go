package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a fixed-capacity cache where every entry also carries a deadline.
// Reads past the deadline miss and drop the entry, so a stale projection is
// never served even if the janitor has not run yet.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List
	index    map[string]*list.Element

	now func() time.Time
}

type entry[V any] struct {
	key      string
	val      V
	deadline time.Time
}

func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	return &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (c *LRU[V]) WithClock(now func() time.Time) *LRU[V] {
	c.now = now
	return c
}

// Get returns the cached value for key, treating expired entries as misses.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.index[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if !c.now().Before(e.deadline) {
		c.evict(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return e.val, true
}

// Put stores val under key, refreshing its deadline. When the cache is at
// capacity the least recently used entry is evicted.
func (c *LRU[V]) Put(key string, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := c.now().Add(c.ttl)
	if el, ok := c.index[key]; ok {
		e := el.Value.(*entry[V])
		e.val = val
		e.deadline = deadline
		c.order.MoveToFront(el)
		return
	}

	c.index[key] = c.order.PushFront(&entry[V]{key: key, val: val, deadline: deadline})
	for c.order.Len() > c.capacity {
		c.evict(c.order.Back())
	}
}

// Invalidate removes key if present. Callers use it after mutations so the
// next read recomputes the projection.
func (c *LRU[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.evict(el)
	}
}

// Purge drops every expired entry and reports how many were removed.
func (c *LRU[V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*entry[V]).deadline) {
			c.evict(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Len reports the number of live entries, expired or not.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *LRU[V]) evict(el *list.Element) {
	delete(c.index, el.Value.(*entry[V]).key)
	c.order.Remove(el)
}
