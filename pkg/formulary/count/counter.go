package count

import "sort"

// Counter accumulates integer counts per key with default-zero lookups.
// Keys remember their first-insertion order, which MostCommon uses to break
// frequency ties deterministically.
type Counter[K comparable] struct {
	counts map[K]int
	order  []K
}

// Entry pairs a key with its count.
type Entry[K comparable] struct {
	Key   K
	Count int
}

// New creates an empty counter.
func New[K comparable]() *Counter[K] {
	return &Counter[K]{counts: make(map[K]int)}
}

// Inc adds 1 to the count for key.
func (c *Counter[K]) Inc(key K) {
	c.Add(key, 1)
}

// Add adds n to the count for key.
func (c *Counter[K]) Add(key K, n int) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key] += n
}

// Get returns the count for key, 0 if the key has never been counted.
func (c *Counter[K]) Get(key K) int {
	return c.counts[key]
}

// Has reports whether key has been counted at least once.
func (c *Counter[K]) Has(key K) bool {
	_, ok := c.counts[key]
	return ok
}

// Len returns the number of distinct keys.
func (c *Counter[K]) Len() int {
	return len(c.counts)
}

// Total returns the sum of all counts.
func (c *Counter[K]) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Keys returns all keys in first-insertion order.
func (c *Counter[K]) Keys() []K {
	keys := make([]K, len(c.order))
	copy(keys, c.order)
	return keys
}

// MostCommon returns all entries sorted by descending count.
// Equal counts keep first-insertion order.
func (c *Counter[K]) MostCommon() []Entry[K] {
	entries := make([]Entry[K], 0, len(c.order))
	for _, key := range c.order {
		entries = append(entries, Entry[K]{Key: key, Count: c.counts[key]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}
