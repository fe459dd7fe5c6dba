package reconcile

import (
	"cmp"
	"slices"
	"sort"
)

// FieldCount is one entry of a FieldCounter.
type FieldCount struct {
	Path  string `json:"path" yaml:"path"`
	Count int    `json:"count" yaml:"count"`
}

// FieldCounter is a multiset of field paths. The zero value is ready to use.
type FieldCounter struct {
	counts map[string]int
}

// Add counts path once.
func (c *FieldCounter) Add(path string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[path]++
}

// AddAll adds every count of other.
func (c *FieldCounter) AddAll(other FieldCounter) {
	for path, n := range other.counts {
		if c.counts == nil {
			c.counts = make(map[string]int, len(other.counts))
		}
		c.counts[path] += n
	}
}

// Count returns how many times path was added.
func (c FieldCounter) Count(path string) int {
	return c.counts[path]
}

// Total returns the number of additions across all paths.
func (c FieldCounter) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Len returns the number of distinct paths.
func (c FieldCounter) Len() int {
	return len(c.counts)
}

// Paths returns the distinct paths, ascending.
func (c FieldCounter) Paths() []string {
	paths := make([]string, 0, len(c.counts))
	for path := range c.counts {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// MostCommon returns every path with its count, most frequent first. Ties
// are ordered by path.
func (c FieldCounter) MostCommon() []FieldCount {
	out := make([]FieldCount, 0, len(c.counts))
	for path, n := range c.counts {
		out = append(out, FieldCount{Path: path, Count: n})
	}
	slices.SortFunc(out, func(a, b FieldCount) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Path, b.Path)
	})
	return out
}

// Counter builds a FieldCounter from paths, one addition each.
func Counter(paths ...string) FieldCounter {
	var c FieldCounter
	for _, p := range paths {
		c.Add(p)
	}
	return c
}
