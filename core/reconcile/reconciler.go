// Package reconcile merges fetched remote attributes against a declared
// schema, producing a validated, typed attribute set.
package reconcile

import (
	"fmt"

	"import-planner/core/schema"
	"import-planner/core/types"
	"import-planner/internal/errors"
)

// Reconcile merges a raw fetched object against its schema.
//
// Per attribute: present values are coerced to the schema type; absent
// required attributes fail; absent optional attributes are omitted; computed
// attributes take the fetched value verbatim and are never defaulted.
// Nested blocks reconcile recursively against their sub-schemas, repetition
// order preserved. Sensitive values pass through unredacted; redaction is the
// emitter's concern.
func Reconcile(s *schema.Schema, raw types.RawObject) (*types.AttributeSet, error) {
	return reconcileBody(s, map[string]interface{}(raw), "")
}

func reconcileBody(s *schema.Schema, raw map[string]interface{}, path string) (*types.AttributeSet, error) {
	set := types.NewAttributeSet()

	for _, attr := range s.Attributes {
		name := qualify(path, attr.Name)

		rawVal, present := raw[attr.Name]
		if present && rawVal == nil && !attr.Computed {
			// explicit null from the remote system is absence for
			// settable attributes
			present = false
		}

		if !present {
			if attr.Required {
				return nil, errors.MissingRequired(name)
			}
			continue
		}

		val, err := coerce(rawVal, attr.Type)
		if err != nil {
			return nil, errors.TypeMismatch(name, attr.Type.FriendlyName(), err)
		}
		set.Values[attr.Name] = val
	}

	for _, bt := range s.BlockTypes {
		name := qualify(path, bt.Name)

		bodies, err := blockBodies(bt, raw[bt.Name], name)
		if err != nil {
			return nil, err
		}
		if len(bodies) == 0 {
			if bt.Required {
				return nil, errors.MissingRequired(name)
			}
			continue
		}

		for i, body := range bodies {
			elemPath := name
			if bt.Nesting == schema.NestingList {
				elemPath = fmt.Sprintf("%s[%d]", name, i)
			}
			nested, err := reconcileBody(bt.Block, body, elemPath)
			if err != nil {
				return nil, err
			}
			set.Blocks[bt.Name] = append(set.Blocks[bt.Name], nested)
		}
	}

	return set, nil
}

// blockBodies normalizes the raw shape of a nested block: a single object
// for single nesting, a list of objects for list nesting
func blockBodies(bt schema.BlockType, raw interface{}, path string) ([]map[string]interface{}, error) {
	if raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case map[string]interface{}:
		if bt.Nesting != schema.NestingSingle {
			return nil, errors.TypeMismatch(path, "list of blocks",
				fmt.Errorf("remote system returned a single object"))
		}
		return []map[string]interface{}{v}, nil
	case []interface{}:
		if bt.Nesting != schema.NestingList {
			return nil, errors.TypeMismatch(path, "single block",
				fmt.Errorf("remote system returned a list"))
		}
		bodies := make([]map[string]interface{}, 0, len(v))
		for i, e := range v {
			body, ok := e.(map[string]interface{})
			if !ok {
				return nil, errors.TypeMismatch(fmt.Sprintf("%s[%d]", path, i), "block",
					fmt.Errorf("got %T", e))
			}
			bodies = append(bodies, body)
		}
		return bodies, nil
	default:
		return nil, errors.TypeMismatch(path, "block", fmt.Errorf("got %T", raw))
	}
}

func qualify(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
