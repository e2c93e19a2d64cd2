package img2mosaic

import (
	"slices"
	"sync"
)

// UsageLedger counts placements per tile id and remembers the order in
// which tiles were first used. One ledger is created per mosaic run.
type UsageLedger struct {
	ids    []string
	counts map[string]int
	mu     sync.RWMutex
}

// TileUsage is one ledger entry.
type TileUsage struct {
	ID    string
	Count int
}

// NewUsageLedger creates an empty ledger.
func NewUsageLedger() *UsageLedger {
	return &UsageLedger{
		ids:    make([]string, 0),
		counts: make(map[string]int),
	}
}

// Increment records one placement of id and returns the new count.
func (l *UsageLedger) Increment(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.counts[id]; !exists {
		l.ids = append(l.ids, id)
	}
	l.counts[id]++
	return l.counts[id]
}

// Count returns how many times id has been placed.
func (l *UsageLedger) Count(id string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.counts[id]
}

// Len returns the number of distinct tiles placed.
func (l *UsageLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.ids)
}

// Total returns the number of placements recorded.
func (l *UsageLedger) Total() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, c := range l.counts {
		total += c
	}
	return total
}

// Iterate calls f for each tile in first-use order.
func (l *UsageLedger) Iterate(f func(id string, count int)) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, id := range l.ids {
		f(id, l.counts[id])
	}
}

// Top returns up to n entries ordered by descending count. Equal counts
// keep first-use order.
func (l *UsageLedger) Top(n int) []TileUsage {
	l.mu.RLock()
	usage := make([]TileUsage, 0, len(l.ids))
	for _, id := range l.ids {
		usage = append(usage, TileUsage{ID: id, Count: l.counts[id]})
	}
	l.mu.RUnlock()

	slices.SortStableFunc(usage, func(a, b TileUsage) int {
		return b.Count - a.Count
	})
	if n >= 0 && n < len(usage) {
		usage = usage[:n]
	}
	return usage
}
