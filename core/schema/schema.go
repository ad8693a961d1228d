// Package schema defines resource attribute schemas and their registry.
// Schemas are static catalog data: loaded once at process start, read-only
// thereafter. Attribute order here determines emission order in the rendered
// configuration block.
package schema

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Attribute describes one settable or computed attribute of a resource type
type Attribute struct {
	// Name is the attribute name within its block
	Name string `json:"name"`

	// Type is the value type constraint
	Type cty.Type `json:"-"`

	// Required marks attributes the remote object must always carry
	Required bool `json:"required,omitempty"`

	// Computed marks remote-determined attributes, never user-settable.
	// Computed values are taken verbatim from fetch and never defaulted.
	Computed bool `json:"computed,omitempty"`

	// Sensitive marks values that must not appear literally in output
	Sensitive bool `json:"sensitive,omitempty"`
}

// Optional reports whether the attribute may be absent from a fetched object
func (a Attribute) Optional() bool {
	return !a.Required && !a.Computed
}

// NestingMode describes how a nested block type repeats
type NestingMode string

const (
	// NestingSingle allows at most one occurrence of the block
	NestingSingle NestingMode = "single"

	// NestingList allows any number of occurrences, order preserved
	NestingList NestingMode = "list"
)

// BlockType describes a nested block within a resource schema
type BlockType struct {
	// Name is the block type name
	Name string `json:"name"`

	// Nesting is single or list
	Nesting NestingMode `json:"nesting"`

	// Required marks blocks that must occur at least once
	Required bool `json:"required,omitempty"`

	// Block is the sub-schema the nested bodies reconcile against
	Block *Schema `json:"block"`
}

// Schema is the ordered attribute schema for one resource type or nested
// block body
type Schema struct {
	// ResourceType names the type; empty for nested block bodies
	ResourceType string `json:"resource_type,omitempty"`

	// Attributes in declared order
	Attributes []Attribute `json:"attributes"`

	// BlockTypes in declared order
	BlockTypes []BlockType `json:"blocks,omitempty"`
}

// Attribute returns the named attribute, if declared
func (s *Schema) Attribute(name string) (Attribute, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// BlockType returns the named nested block type, if declared
func (s *Schema) BlockType(name string) (BlockType, bool) {
	for _, b := range s.BlockTypes {
		if b.Name == name {
			return b, true
		}
	}
	return BlockType{}, false
}

// Validate checks the schema for structural problems
func (s *Schema) Validate() error {
	return s.validate(s.ResourceType)
}

func (s *Schema) validate(path string) error {
	if path == "" {
		return fmt.Errorf("schema missing resource type")
	}

	seen := make(map[string]bool)
	for _, a := range s.Attributes {
		if a.Name == "" {
			return fmt.Errorf("%s: attribute with empty name", path)
		}
		if seen[a.Name] {
			return fmt.Errorf("%s: duplicate attribute %q", path, a.Name)
		}
		seen[a.Name] = true

		if a.Required && a.Computed {
			return fmt.Errorf("%s: attribute %q cannot be both required and computed", path, a.Name)
		}
		if a.Type == cty.NilType {
			return fmt.Errorf("%s: attribute %q has no type", path, a.Name)
		}
	}

	for _, b := range s.BlockTypes {
		if b.Name == "" {
			return fmt.Errorf("%s: block type with empty name", path)
		}
		if seen[b.Name] {
			return fmt.Errorf("%s: block type %q collides with an attribute or block", path, b.Name)
		}
		seen[b.Name] = true

		switch b.Nesting {
		case NestingSingle, NestingList:
		default:
			return fmt.Errorf("%s: block type %q has invalid nesting %q", path, b.Name, b.Nesting)
		}
		if b.Block == nil {
			return fmt.Errorf("%s: block type %q has no body schema", path, b.Name)
		}
		if err := b.Block.validate(path + "." + b.Name); err != nil {
			return err
		}
	}

	return nil
}

// MustValidate panics on an invalid schema (fail fast at registration)
func (s *Schema) MustValidate() {
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("invalid schema: %v", err))
	}
}
