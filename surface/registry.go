// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"sort"
	"sync"
)

// Built-in provider names.
const (
	// WGPUName is the registry name of the GPU adapter provider. It is not
	// registered in builds tagged nogpu, nor in cgo builds on Linux, macOS
	// and FreeBSD where the Vulkan HAL cannot load.
	WGPUName = "wgpu"

	// SoftwareName is the registry name of the CPU provider.
	SoftwareName = "software"
)

// QueryFactory opens a capability query on a graphics subsystem.
type QueryFactory func() (CapabilityQuery, error)

// RegistryEntry represents a registered graphics subsystem.
type RegistryEntry struct {
	// Name is the unique identifier for this subsystem.
	Name string

	// Priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: GPU adapters
	//   - 10: software rendering
	Priority int

	// Factory opens a capability query.
	Factory QueryFactory

	// Available reports if the subsystem can be used on this system.
	Available func() bool
}

// globalRegistry is the default registry.
var globalRegistry = &Registry{}

// Registry manages graphics subsystems that can answer capability queries.
//
// Example registration:
//
//	func init() {
//	    surface.Register("egl", 50, eglFactory, eglAvailable)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and NewQuery.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a subsystem to the global registry.
// If available is nil, the subsystem is assumed always available.
// Registering a name that already exists replaces the previous entry.
func Register(name string, priority int, factory QueryFactory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a subsystem from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered subsystem names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// Available returns names of all available subsystems sorted by priority.
func Available() []string {
	return globalRegistry.Available()
}

// NewQuery opens a query on the best available subsystem.
func NewQuery() (CapabilityQuery, error) {
	return globalRegistry.NewQuery()
}

// NewQueryByName opens a query on a specific subsystem.
// The name "auto" or "" selects the best available one.
func NewQueryByName(name string) (CapabilityQuery, error) {
	if name == "" || name == "auto" {
		return globalRegistry.NewQuery()
	}
	return globalRegistry.NewQueryByName(name)
}

// Register adds a subsystem to this registry.
func (r *Registry) Register(name string, priority int, factory QueryFactory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}

	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a subsystem from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered subsystem names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns names of all available subsystems sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// Get returns a copy of the entry for name.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	entryCopy := *entry
	return &entryCopy, true
}

// NewQuery opens a query on the best available subsystem, falling back
// down the priority order when a factory fails.
func (r *Registry) NewQuery() (CapabilityQuery, error) {
	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	if len(available) == 0 {
		return nil, ErrNoBackendAvailable
	}

	var lastErr error
	for _, name := range available {
		q, err := r.NewQueryByName(name)
		if err == nil {
			return q, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// NewQueryByName opens a query on a specific subsystem.
func (r *Registry) NewQueryByName(name string) (CapabilityQuery, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &BackendUnavailableError{Name: name}
	}
	return entry.Factory()
}

// sortedNames returns names sorted by priority (highest first), then name.
// Must be called with lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}

	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Errors.
var (
	// ErrNoBackendAvailable is returned when no graphics subsystem is
	// registered or available on the current system.
	ErrNoBackendAvailable = errors.New("surface: no backend available")
)

// BackendNotFoundError indicates a named subsystem is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "surface: backend not found: " + e.Name
}

// BackendUnavailableError indicates a subsystem exists but is not available.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "surface: backend unavailable: " + e.Name
}
