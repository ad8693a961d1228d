// Package schema - JSON catalog loader
// Catalog files use arrays so the declared attribute order survives loading.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"import-planner/internal/errors"
)

// catalogFile is the on-disk catalog document
type catalogFile struct {
	Schemas []catalogSchema `json:"schemas"`
}

// catalogSchema is one resource type entry
type catalogSchema struct {
	ResourceType string             `json:"resource_type"`
	Attributes   []catalogAttribute `json:"attributes"`
	Blocks       []catalogBlock     `json:"blocks,omitempty"`
}

// catalogAttribute is one attribute entry with a textual type constraint
type catalogAttribute struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Required  bool   `json:"required,omitempty"`
	Computed  bool   `json:"computed,omitempty"`
	Sensitive bool   `json:"sensitive,omitempty"`
}

// catalogBlock is one nested block entry
type catalogBlock struct {
	Name       string             `json:"name"`
	Nesting    string             `json:"nesting,omitempty"`
	Required   bool               `json:"required,omitempty"`
	Attributes []catalogAttribute `json:"attributes"`
	Blocks     []catalogBlock     `json:"blocks,omitempty"`
}

// LoadCatalog reads a JSON schema catalog and registers every schema in a
// fresh registry
func LoadCatalog(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("cannot read schema catalog", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses a JSON schema catalog document
func ParseCatalog(data []byte) (*Registry, error) {
	var doc catalogFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Parsing("malformed schema catalog", err)
	}

	registry := NewRegistry()
	for _, cs := range doc.Schemas {
		s, err := cs.toSchema()
		if err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "schema catalog entry %q", cs.ResourceType)
		}
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (cs catalogSchema) toSchema() (*Schema, error) {
	s := &Schema{ResourceType: cs.ResourceType}

	for _, ca := range cs.Attributes {
		attr, err := ca.toAttribute()
		if err != nil {
			return nil, err
		}
		s.Attributes = append(s.Attributes, attr)
	}

	for _, cb := range cs.Blocks {
		bt, err := cb.toBlockType()
		if err != nil {
			return nil, err
		}
		s.BlockTypes = append(s.BlockTypes, bt)
	}

	return s, nil
}

func (ca catalogAttribute) toAttribute() (Attribute, error) {
	ty, err := parseTypeConstraint(ca.Type)
	if err != nil {
		return Attribute{}, fmt.Errorf("attribute %q: %w", ca.Name, err)
	}
	return Attribute{
		Name:      ca.Name,
		Type:      ty,
		Required:  ca.Required,
		Computed:  ca.Computed,
		Sensitive: ca.Sensitive,
	}, nil
}

func (cb catalogBlock) toBlockType() (BlockType, error) {
	nesting := NestingMode(cb.Nesting)
	if cb.Nesting == "" {
		nesting = NestingSingle
	}

	body, err := catalogSchema{
		Attributes: cb.Attributes,
		Blocks:     cb.Blocks,
	}.toSchema()
	if err != nil {
		return BlockType{}, fmt.Errorf("block %q: %w", cb.Name, err)
	}

	return BlockType{
		Name:     cb.Name,
		Nesting:  nesting,
		Required: cb.Required,
		Block:    body,
	}, nil
}

// parseTypeConstraint turns a textual type like "string", "list(string)" or
// "map(number)" into a cty type
func parseTypeConstraint(text string) (cty.Type, error) {
	text = strings.TrimSpace(text)

	switch text {
	case "string":
		return cty.String, nil
	case "number":
		return cty.Number, nil
	case "bool":
		return cty.Bool, nil
	}

	open := strings.Index(text, "(")
	if open > 0 && strings.HasSuffix(text, ")") {
		elem, err := parseTypeConstraint(text[open+1 : len(text)-1])
		if err != nil {
			return cty.NilType, err
		}
		switch text[:open] {
		case "list":
			return cty.List(elem), nil
		case "set":
			return cty.Set(elem), nil
		case "map":
			return cty.Map(elem), nil
		}
	}

	return cty.NilType, fmt.Errorf("unsupported type constraint %q", text)
}
