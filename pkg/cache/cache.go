// Package cache provides a thread-safe LRU cache for compiled programs.
//
// The evaluator uses it for EvalSource when the WithCaching option is
// enabled, so that a REPL or a host re-running the same script text does not
// re-parse it.
//
// # Example
//
//	c := cache.New(128)
//	prog, err := c.GetOrCompile(src, func() (*types.Program, error) {
//	    return parser.Parse(src)
//	})
package cache

import (
	"container/list"
	"sync"

	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// DefaultCapacity is used by New when the requested capacity is not positive.
const DefaultCapacity = 256

type entry struct {
	key  string
	prog *types.Program
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a thread-safe LRU cache of compiled programs keyed by source text.
// Once the capacity is reached, the least recently used entry is evicted.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	stats    Stats
}

// New creates a new LRU cache with the given capacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the program cached for key and marks it most recently used.
func (c *Cache) Get(key string) (*types.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	c.ll.MoveToFront(el)
	return el.Value.(*entry).prog, true
}

// Set inserts or replaces a program. If at capacity, the least recently used
// entry is evicted first.
func (c *Cache) Set(key string, prog *types.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).prog = prog
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}
	c.items[key] = c.ll.PushFront(&entry{key: key, prog: prog})
}

// GetOrCompile returns the program cached for key, or calls compile, caches
// its result and returns it. Errors are not cached.
func (c *Cache) GetOrCompile(key string, compile func() (*types.Program, error)) (*types.Program, error) {
	if prog, ok := c.Get(key); ok {
		return prog, nil
	}
	prog, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(key, prog)
	return prog, nil
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the hit, miss and eviction counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry. c.mu must be held.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
	c.stats.Evictions++
}
