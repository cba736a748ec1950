// Package persistence provides bookmark persistence for the dashboard.
// Bookmarks are named, saved selections stored as JSON files in the
// configured state directory so they survive restarts.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/classmap/runtime/internal/logger"
	"github.com/classmap/runtime/pkg/dashboard"
)

// DefaultStatePath is the default directory for bookmark files.
const DefaultStatePath = "./classmap-data/bookmarks"

// Common errors
var (
	// ErrInvalidName is returned when a bookmark name is empty or unsafe.
	ErrInvalidName = errors.New("bookmark name is required")

	// ErrNotFound is returned when a named bookmark does not exist.
	ErrNotFound = errors.New("bookmark not found")
)

// BookmarkStore provides thread-safe persistence of bookmarks.
// Bookmark files are stored as JSON in the configured base path.
type BookmarkStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewBookmarkStore creates a store with the specified base path.
// If basePath is empty, DefaultStatePath is used.
func NewBookmarkStore(basePath string) *BookmarkStore {
	if basePath == "" {
		basePath = DefaultStatePath
	}
	return &BookmarkStore{basePath: basePath}
}

// validateName rejects empty names and names that would escape the base
// directory or hide files.
func validateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// filePath returns the full path for a bookmark file.
func (s *BookmarkStore) filePath(name string) string {
	return filepath.Join(s.basePath, name+".json")
}

// Save persists a bookmark, overwriting any previous one with the same
// name. Uses atomic write (temp file + rename) to prevent corruption and
// creates the base directory if it doesn't exist.
func (s *BookmarkStore) Save(name string, sel dashboard.Selection) (dashboard.Bookmark, error) {
	if err := validateName(name); err != nil {
		return dashboard.Bookmark{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.basePath, 0700); err != nil {
		return dashboard.Bookmark{}, fmt.Errorf("creating bookmark directory: %w", err)
	}

	bookmark := dashboard.Bookmark{
		Name:      name,
		Selection: sel.Normalized(),
		SavedAt:   time.Now().UTC(),
	}

	data, err := json.MarshalIndent(bookmark, "", "  ")
	if err != nil {
		return dashboard.Bookmark{}, fmt.Errorf("marshaling bookmark: %w", err)
	}

	filePath := s.filePath(name)
	tempPath := filePath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return dashboard.Bookmark{}, fmt.Errorf("writing temp bookmark file: %w", err)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return dashboard.Bookmark{}, fmt.Errorf("renaming bookmark file: %w", err)
	}

	logger.Debug("bookmark saved",
		"name", name,
		"path", filePath,
	)
	return bookmark, nil
}

// Load retrieves a bookmark by name. Returns ErrNotFound when no bookmark
// with that name exists.
func (s *BookmarkStore) Load(name string) (dashboard.Bookmark, error) {
	if err := validateName(name); err != nil {
		return dashboard.Bookmark{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return dashboard.Bookmark{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return dashboard.Bookmark{}, fmt.Errorf("reading bookmark file: %w", err)
	}

	var bookmark dashboard.Bookmark
	if err := json.Unmarshal(data, &bookmark); err != nil {
		return dashboard.Bookmark{}, fmt.Errorf("unmarshaling bookmark %q: %w", name, err)
	}
	return bookmark, nil
}

// List returns every saved bookmark, sorted by name. A missing base
// directory means no bookmarks, not an error.
func (s *BookmarkStore) List() ([]dashboard.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading bookmark directory: %w", err)
	}

	var bookmarks []dashboard.Bookmark
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			logger.Warn("skipping unreadable bookmark file",
				"file", entry.Name(),
				"error", err.Error(),
			)
			continue
		}
		var bookmark dashboard.Bookmark
		if err := json.Unmarshal(data, &bookmark); err != nil {
			logger.Warn("skipping corrupt bookmark file",
				"file", entry.Name(),
				"error", err.Error(),
			)
			continue
		}
		bookmarks = append(bookmarks, bookmark)
	}

	sort.Slice(bookmarks, func(i, j int) bool { return bookmarks[i].Name < bookmarks[j].Name })
	return bookmarks, nil
}

// Delete removes a bookmark. Returns ErrNotFound when it does not exist.
func (s *BookmarkStore) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return fmt.Errorf("deleting bookmark file: %w", err)
	}

	logger.Debug("bookmark deleted", "name", name)
	return nil
}
