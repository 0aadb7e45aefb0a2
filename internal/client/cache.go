package client

import (
	"container/list"
	"sync"
	"time"
)

type (
	lruCache[K comparable, T any] struct {
		cache   map[K]*list.Element
		lru     *list.List
		now     func() time.Time
		maxSize int
		ttl     time.Duration
		mu      sync.Mutex
	}

	constructor[T any] func() (T, error)

	cacheEntry[K comparable, T any] struct {
		expires time.Time
		value   T
		key     K
	}
)

func newLRUCache[K comparable, T any](
	maxSize int, ttl time.Duration,
) *lruCache[K, T] {
	return &lruCache[K, T]{
		cache:   map[K]*list.Element{},
		lru:     list.New(),
		now:     time.Now,
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// get returns the live entry for key or builds it. Failed constructions
// are never cached
func (c *lruCache[K, T]) get(key K, create constructor[T]) (T, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	value, err := create()
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.Remove(elem)
		delete(c.cache, key)
	}

	entry := &cacheEntry[K, T]{
		key:     key,
		value:   value,
		expires: c.now().Add(c.ttl),
	}
	c.cache[key] = c.lru.PushFront(entry)

	if c.lru.Len() > c.maxSize {
		c.evictLast()
	}
	return value, nil
}

func (c *lruCache[K, T]) lookup(key K) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.cache[key]
	if !ok {
		return zero, false
	}
	entry := elem.Value.(*cacheEntry[K, T])
	if c.ttl > 0 && !c.now().Before(entry.expires) {
		c.lru.Remove(elem)
		delete(c.cache, key)
		return zero, false
	}
	c.lru.MoveToFront(elem)
	return entry.value, true
}

func (c *lruCache[K, T]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *lruCache[K, T]) evictLast() {
	back := c.lru.Back()
	if back != nil {
		c.lru.Remove(back)
		backEntry := back.Value.(*cacheEntry[K, T])
		delete(c.cache, backEntry.key)
	}
}
