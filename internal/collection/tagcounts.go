package collection

import (
	"sort"
	"strings"
	"sync"
)

// TagCounts tracks how many files carry each tag. Every known tag has
// an entry, including tags attached to no file; counts never go below
// zero. The aggregate is seeded from the store at startup and kept in
// step with attach/detach operations afterwards.
type TagCounts struct {
	mu     sync.RWMutex
	counts map[string]int
}

// NewTagCounts returns an aggregate seeded with the given counts.
func NewTagCounts(seed map[string]int) *TagCounts {
	counts := make(map[string]int, len(seed))
	for name, n := range seed {
		counts[name] = n
	}
	return &TagCounts{counts: counts}
}

// Define registers a tag with a zero count if it is not already known.
func (tc *TagCounts) Define(name string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if _, ok := tc.counts[name]; !ok {
		tc.counts[name] = 0
	}
}

// Attach increments the count for name, registering it if unknown.
func (tc *TagCounts) Attach(name string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.counts[name]++
}

// Detach decrements the count for name. Detaching an unknown tag or
// one already at zero leaves the count at zero.
func (tc *TagCounts) Detach(name string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.counts[name] > 0 {
		tc.counts[name]--
	} else {
		tc.counts[name] = 0
	}
}

// Drop removes a tag from the aggregate entirely.
func (tc *TagCounts) Drop(name string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	delete(tc.counts, name)
}

// Count returns the usage count for name and whether it is known.
func (tc *TagCounts) Count(name string) (int, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	n, ok := tc.counts[name]
	return n, ok
}

// Counts returns a copy of the full aggregate.
func (tc *TagCounts) Counts() map[string]int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	out := make(map[string]int, len(tc.counts))
	for name, n := range tc.counts {
		out[name] = n
	}
	return out
}

// Names returns every known tag name, sorted.
func (tc *TagCounts) Names() []string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	names := make([]string, 0, len(tc.counts))
	for name := range tc.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the stored spelling of name, matching
// case-insensitively. It reports false when no known tag matches.
func (tc *TagCounts) Resolve(name string) (string, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	if _, ok := tc.counts[name]; ok {
		return name, true
	}
	lower := strings.ToLower(name)
	for stored := range tc.counts {
		if strings.EqualFold(stored, lower) {
			return stored, true
		}
	}
	return "", false
}

// Len returns the number of known tags.
func (tc *TagCounts) Len() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.counts)
}
