// Package schema - schema registry with validation
// Enforces schema validation at registration time. Fails fast if any
// schema is invalid.
package schema

import (
	"fmt"
	"sort"
	"sync"

	"import-planner/internal/errors"
)

// Registry holds all registered resource schemas
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry creates a new validated schema registry
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
	}
}

// MustRegister adds a schema to the registry, panicking if the schema is
// invalid or the type is already registered
func (r *Registry) MustRegister(s *Schema) {
	s.MustValidate()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[s.ResourceType]; exists {
		panic(fmt.Sprintf("schema already registered: %s", s.ResourceType))
	}
	r.schemas[s.ResourceType] = s
}

// Register adds a schema returning error instead of panic
func (r *Registry) Register(s *Schema) error {
	if err := s.Validate(); err != nil {
		return errors.Config("invalid schema", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[s.ResourceType]; exists {
		return errors.Newf(errors.TypeConfig, "schema already registered: %s", s.ResourceType)
	}
	r.schemas[s.ResourceType] = s
	return nil
}

// Lookup returns the schema for a resource type
func (r *Registry) Lookup(resourceType string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[resourceType]
	if !ok {
		return nil, errors.UnknownType(resourceType)
	}
	return s, nil
}

// Types returns the registered resource type names, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered schemas
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}
