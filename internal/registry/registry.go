// Package registry provides the view renderer registry.
//
// # Overview
//
// Renderers register their constructors by type string instead of being
// wired through a hard-coded switch. This lets contributors add new view
// types without touching the server or the snapshot command.
//
// # Adding a New View
//
// To add a new view type (e.g., a "scatter" view):
//
//  1. Implement render.Renderer
//  2. Create a constructor matching the registry signature
//  3. Register the constructor in an init() function
//
// Example:
//
//	func init() {
//	    registry.Register("scatter", NewScatterRenderer)
//	}
//
// # Built-in Views
//
// Built-in views (heatmap, choropleth, bars, stats) are registered
// automatically at startup via init().
//
// # Stub Fallback
//
// Unknown types resolve to a stub renderer that produces a placeholder
// panel naming the missing type. This keeps a dashboard page rendering
// even when a configured view type is not implemented.
package registry

import (
	"sort"
	"sync"

	"github.com/classmap/runtime/internal/render"
)

// Constructor creates a renderer from the shared dependencies.
type Constructor func(deps render.Deps) render.Renderer

var (
	mu       sync.RWMutex
	registry = make(map[string]Constructor)
)

// Register registers a renderer constructor by type string. Registering an
// already registered type overwrites the previous constructor.
//
// Safe for concurrent use; typically called from init() functions.
func Register(viewType string, constructor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	registry[viewType] = constructor
}

// Get returns the registered constructor for a view type. Returns nil when
// no constructor is registered.
func Get(viewType string) Constructor {
	mu.RLock()
	defer mu.RUnlock()
	return registry[viewType]
}

// Build resolves a view type to a renderer, falling back to a stub for
// unknown types.
func Build(viewType string, deps render.Deps) render.Renderer {
	if constructor := Get(viewType); constructor != nil {
		return constructor(deps)
	}
	return newStubRenderer(viewType)
}

// ListTypes returns the registered view type names, sorted.
func ListTypes() []string {
	mu.RLock()
	defer mu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Clear removes all registered constructors. Intended for testing only.
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]Constructor)
}
