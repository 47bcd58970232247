// Package dedup keeps a bounded, insertion-ordered set of recently processed
// message ids.
package dedup

import "sync"

const DefaultCapacity = 1000

// Cache is a FIFO ring of ids. Inserting past capacity evicts the oldest
// insertion; there is no expiry by time.
type Cache struct {
	mu       sync.Mutex
	ring     []int64
	head     int
	size     int
	counts   map[int64]int
	capacity int
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		ring:     make([]int64, capacity),
		counts:   make(map[int64]int, capacity),
		capacity: capacity,
	}
}

func (c *Cache) Contains(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[id] > 0
}

// Insert always appends, even when id is already present.
func (c *Cache) Insert(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertLocked(id)
}

// Observe reports whether id was already present and records it if not, in
// one step so two sessions delivering the same message cannot both pass.
func (c *Cache) Observe(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[id] > 0 {
		return true
	}
	c.insertLocked(id)
	return false
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *Cache) Capacity() int {
	return c.capacity
}

func (c *Cache) insertLocked(id int64) {
	if c.size == c.capacity {
		oldest := c.ring[c.head]
		if c.counts[oldest]--; c.counts[oldest] <= 0 {
			delete(c.counts, oldest)
		}
		c.head = (c.head + 1) % c.capacity
		c.size--
	}
	c.ring[(c.head+c.size)%c.capacity] = id
	c.size++
	c.counts[id]++
}
