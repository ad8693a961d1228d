// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// ResourceAddress uniquely identifies a declared resource instance.
// Format: resource_type.local_name
type ResourceAddress string

// String returns the string representation
func (r ResourceAddress) String() string {
	return string(r)
}

// Type returns the resource type part of the address
func (r ResourceAddress) Type() string {
	if i := strings.Index(string(r), "."); i >= 0 {
		return string(r)[:i]
	}
	return string(r)
}

// Name returns the local name part of the address
func (r ResourceAddress) Name() string {
	if i := strings.Index(string(r), "."); i >= 0 {
		return string(r)[i+1:]
	}
	return ""
}

// ParseAddress parses and validates a resource_type.local_name address
func ParseAddress(s string) (ResourceAddress, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid resource address %q: want resource_type.local_name", s)
	}
	return ResourceAddress(s), nil
}

// ExternalID identifies the real-world object in the remote system.
// Immutable once bound to an address.
type ExternalID string

// String returns the string representation
func (e ExternalID) String() string {
	return string(e)
}

// ImportRequest asks the planner to adopt one remote object under an address
type ImportRequest struct {
	// To is the target resource address
	To ResourceAddress `json:"to"`

	// ID is the external identifier of the remote object
	ID ExternalID `json:"id"`

	// SourceFile is the file the request was declared in, if any
	SourceFile string `json:"source_file,omitempty"`

	// SourceLine is the declaration line, if any
	SourceLine int `json:"source_line,omitempty"`
}

// RawObject is the untyped attribute payload returned by a remote client
type RawObject map[string]interface{}

// AttributeSet is a reconciled, typed attribute mapping.
// Values holds scalar and collection attributes; Blocks holds nested
// attribute sets keyed by block type, repetition order preserved.
type AttributeSet struct {
	Values map[string]cty.Value
	Blocks map[string][]*AttributeSet
}

// NewAttributeSet creates an empty attribute set
func NewAttributeSet() *AttributeSet {
	return &AttributeSet{
		Values: make(map[string]cty.Value),
		Blocks: make(map[string][]*AttributeSet),
	}
}

// Equal reports deep equality of two attribute sets
func (s *AttributeSet) Equal(other *AttributeSet) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Values) != len(other.Values) || len(s.Blocks) != len(other.Blocks) {
		return false
	}
	for name, v := range s.Values {
		ov, ok := other.Values[name]
		if !ok || !v.RawEquals(ov) {
			return false
		}
	}
	for name, blocks := range s.Blocks {
		oblocks, ok := other.Blocks[name]
		if !ok || len(blocks) != len(oblocks) {
			return false
		}
		for i := range blocks {
			if !blocks[i].Equal(oblocks[i]) {
				return false
			}
		}
	}
	return true
}

// BindingState is the lifecycle state of a binding
type BindingState string

const (
	// BindingBound is the active association between address and external id
	BindingBound BindingState = "bound"

	// BindingRetired marks a superseded or unbound association, kept for audit
	BindingRetired BindingState = "retired"
)

// Binding records the association between a resource address and the
// external identifier of the real-world object it represents. Bindings are
// immutable; supersession appends a new Binding for the same address.
type Binding struct {
	// ID is a unique identifier for this binding generation
	ID string `json:"id"`

	// Address is the declared resource address
	Address ResourceAddress `json:"address"`

	// ExternalID is the remote object identifier
	ExternalID ExternalID `json:"external_id"`

	// FetchedAt is when the remote attributes backing this binding were read
	FetchedAt time.Time `json:"fetched_at"`

	// State is bound or retired
	State BindingState `json:"state"`

	// RetiredAt is set when the binding leaves the bound state
	RetiredAt *time.Time `json:"retired_at,omitempty"`
}

// RenderedBlock is a rendered declarative configuration block.
// Purely derived from a reconciled attribute set; no independent identity.
type RenderedBlock struct {
	// Address is the resource address the block declares
	Address ResourceAddress `json:"address"`

	// Source is the rendered HCL text
	Source []byte `json:"source"`

	// Notes are side-channel remarks (redacted attributes, skipped computed values)
	Notes []string `json:"notes,omitempty"`
}
