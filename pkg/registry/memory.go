package registry

import (
	"fmt"
	"slices"
	"sync"
)

// Memory is an in-memory Registry. Lookups return clones so callers cannot
// mutate registered defaults.
type Memory struct {
	mu          sync.RWMutex
	definitions map[string]Definition
}

var _ Registry = (*Memory)(nil)

// New creates an empty registry.
func New() *Memory {
	return &Memory{definitions: make(map[string]Definition)}
}

// NewDefault creates a registry with the built-in component kinds registered.
func NewDefault() *Memory {
	reg := New()
	for _, def := range Builtins() {
		reg.MustRegister(def)
	}
	return reg
}

// Register stores a definition, replacing any existing entry for the type.
func (r *Memory) Register(def Definition) error {
	name := normalize(def.Type)
	if name == "" {
		return fmt.Errorf("registry: component type is required")
	}
	def.Type = name

	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[name] = def.clone()
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Memory) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Exists reports whether the type is registered.
func (r *Memory) Exists(componentType string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.definitions[normalize(componentType)]
	return ok
}

// Resolve fetches a definition by type.
func (r *Memory) Resolve(componentType string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[normalize(componentType)]
	if !ok {
		return Definition{}, false
	}
	return def.clone(), true
}

// Types returns the sorted registered type names.
func (r *Memory) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Clone returns an independent copy of the registry.
func (r *Memory) Clone() *Memory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := New()
	for name, def := range r.definitions {
		out.definitions[name] = def.clone()
	}
	return out
}
