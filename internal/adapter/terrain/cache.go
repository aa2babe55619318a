package terrain

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/rockfall-risk-service/internal/observability"
)

// CachedElevation wraps an ElevationLookup with an in-memory LRU cache.
// Elevation does not change, so entries never expire.
type CachedElevation struct {
	inner   ElevationLookup
	cache   *lruCache[float64]
	metrics *observability.Metrics
}

// NewCachedElevation creates a cache decorator around an elevation lookup.
func NewCachedElevation(inner ElevationLookup, maxEntries int, metrics *observability.Metrics) *CachedElevation {
	return &CachedElevation{
		inner:   inner,
		cache:   newLRUCache[float64](maxEntries),
		metrics: metrics,
	}
}

// ElevationAt serves from the cache, keyed to about 11 m of precision.
func (c *CachedElevation) ElevationAt(ctx context.Context, lat, lon float64) (float64, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	if v, ok := c.cache.get(key); ok {
		c.metrics.ElevationCache.WithLabelValues("hit").Inc()
		return v, nil
	}
	c.metrics.ElevationCache.WithLabelValues("miss").Inc()

	v, err := c.inner.ElevationAt(ctx, lat, lon)
	if err != nil {
		// Errors, including "no data", are not cached so they can be retried.
		return v, err
	}
	c.cache.put(key, v)
	return v, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.pushFront(e)

	if len(c.entries) > c.maxEntries {
		c.dropOldest()
	}
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *lruCache[V]) pushFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) unlink(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) dropOldest() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
