// Package cache bounds how many compiled formulas Evaluator keeps warm
// across repeated calls with the same expression text:
// hashicorp/golang-lru/v2 for bounded eviction, and
// golang.org/x/sync/singleflight so two goroutines racing to compile
// the same never-seen formula text produce exactly one compiled entry
// instead of two.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Entry is whatever the caller wants to keep warm per formula text —
// typically a compiled bytecode program plus the optimized AST it was
// compiled from.
type Entry any

// Cache is a bounded, concurrency-safe formula cache keyed by source
// text. Builder is only ever invoked once per key even under concurrent
// Get calls racing on a cold key, courtesy of singleflight.
type Cache struct {
	lru           *lru.Cache[string, Entry]
	group         singleflight.Group
	maximumSize   int
	reductionSize int
}

// New creates a Cache that grows up to maximumSize entries; once an
// insertion would exceed that size, the cache trims by evicting the
// least-recently-used entries down to reductionSize in one pass, rather
// than golang-lru/v2's default single-entry eviction per Add.
// reductionSize must be <= maximumSize.
func New(maximumSize, reductionSize int) (*Cache, error) {
	// Oversize the backing LRU so Add itself never evicts; eviction down
	// to reductionSize is driven by Get after a successful build, giving
	// a batch trim instead of golang-lru's one-at-a-time default.
	l, err := lru.New[string, Entry](maximumSize + 1)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, maximumSize: maximumSize, reductionSize: reductionSize}, nil
}

// Get returns the cached Entry for key if present, otherwise calls
// build() exactly once (even if multiple goroutines call Get(key)
// concurrently while it is cold), caches the result, trims the cache if
// it has grown past its maximum size, and returns the built entry.
func (c *Cache) Get(key string, build func() (Entry, error)) (Entry, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
		entry, err := build()
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, entry)
		c.trim()
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Entry), nil
}

// trim evicts least-recently-used entries down to reductionSize once the
// cache has grown past maximumSize.
func (c *Cache) trim() {
	if c.lru.Len() <= c.maximumSize {
		return
	}
	for c.lru.Len() > c.reductionSize {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			return
		}
	}
}

// Len reports how many formulas are currently cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge evicts every cached entry.
func (c *Cache) Purge() {
	c.lru.Purge()
}
