// Package pscache provides a compute-once cache for expensive host probes
// (boot time, IPv6 capability, platform detection) that are stable for the
// lifetime of the process but costly or racy to repeat.
package pscache

import "sync"

// Cache memoizes results of a deterministic computation keyed by its
// argument tuple. Use a comparable struct as K when the computation takes
// more than one argument.
//
// A single mutex guards both lookup and insertion, so a check-then-insert
// is atomic: two goroutines racing on the same uncached key run the
// computation once. The cache grows without bound until Clear is called.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
}

// New returns an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// GetOrCompute returns the cached value for key, running compute and storing
// its result on first use. A compute error is returned to the caller and
// nothing is cached, so a later call retries.
//
// compute runs while the cache lock is held and must not call back into the
// same cache.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = v
	return v, nil
}

// Clear wipes every stored result. The next GetOrCompute for any key
// recomputes.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len reports the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
