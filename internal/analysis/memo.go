package analysis

import (
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/classmap/runtime/pkg/dashboard"
)

// Memo caches derived DashboardData keyed by selection and dataset
// generation. Keys incorporate the generation counter, so a dataset reload
// implicitly invalidates every prior entry without coordination; stale
// entries are dropped lazily when the generation moves on.
type Memo struct {
	mu         sync.RWMutex
	entries    map[uint64]*dashboard.DashboardData
	generation uint64
	hits       uint64
	misses     uint64
}

// NewMemo creates an empty memo table.
func NewMemo() *Memo {
	return &Memo{entries: make(map[uint64]*dashboard.DashboardData)}
}

// Key derives the cache key for a selection at a dataset generation.
// Equivalent selections ("All" vs "") hash identically via Canonical.
func Key(sel dashboard.Selection, generation uint64) uint64 {
	h := fnv.New64a()
	h.Write([]byte(sel.Canonical()))
	h.Write([]byte("|gen="))
	h.Write([]byte(strconv.FormatUint(generation, 10)))
	return h.Sum64()
}

// Get returns the cached result for a selection at a generation, if any.
func (m *Memo) Get(sel dashboard.Selection, generation uint64) (*dashboard.DashboardData, bool) {
	key := Key(sel, generation)

	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.entries[key]
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	return data, ok
}

// Put stores a result for a selection at a generation. When the generation
// advances past the table's last seen one, entries from older generations
// are discarded.
func (m *Memo) Put(sel dashboard.Selection, generation uint64, data *dashboard.DashboardData) {
	key := Key(sel, generation)

	m.mu.Lock()
	defer m.mu.Unlock()

	if generation != m.generation {
		m.entries = make(map[uint64]*dashboard.DashboardData)
		m.generation = generation
	}
	m.entries[key] = data
}

// Invalidate drops every cached entry.
func (m *Memo) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[uint64]*dashboard.DashboardData)
}

// Stats reports hit/miss counters and the current entry count.
func (m *Memo) Stats() (hits, misses uint64, size int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits, m.misses, len(m.entries)
}
