package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/classmap/runtime/internal/logger"
)

// Store holds the loaded record table. Reads see a consistent table and
// generation; Reload swaps both atomically. The generation counter is the
// memoization invalidation signal: any cache keyed by (selection,
// generation) is implicitly emptied when the generation bumps.
type Store struct {
	source Source
	path   string

	mu         sync.RWMutex
	table      Table
	generation uint64
	loadedAt   time.Time
}

// NewStore creates a store over the given source. The path is used only
// for logging and the reload watcher's change detection.
func NewStore(source Source, path string) *Store {
	return &Store{source: source, path: path}
}

// Load performs the initial dataset load. Load failures at startup are
// fatal to the process; the caller decides.
func (s *Store) Load(ctx context.Context) error {
	return s.reload(ctx)
}

// Reload re-reads the source and swaps the table. On failure the previous
// table stays in place and the generation does not move.
func (s *Store) Reload(ctx context.Context) error {
	return s.reload(ctx)
}

func (s *Store) reload(ctx context.Context) error {
	s.mu.RLock()
	nextGen := s.generation + 1
	s.mu.RUnlock()

	logger.LogLoadStart(s.path, nextGen)
	start := time.Now()

	table, err := s.source.Fetch(ctx)
	logger.LogLoadEnd(s.path, len(table), nextGen, time.Since(start), err)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.table = table
	s.generation++
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Snapshot returns the current table and its generation. The table must be
// treated as read-only; it may be shared with concurrent readers.
func (s *Store) Snapshot() (Table, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table, s.generation
}

// Generation returns the current table generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Path returns the source file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying source.
func (s *Store) Close() error {
	return s.source.Close()
}
