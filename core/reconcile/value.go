// Package reconcile - raw value to cty conversion
// Raw remote payloads are untyped JSON shapes. They are NEVER blindly
// trusted: every value is built into a cty value and then converted against
// the schema's declared type constraint.
package reconcile

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// coerce converts a raw remote value into the schema-declared type
func coerce(raw interface{}, ty cty.Type) (cty.Value, error) {
	if raw == nil {
		return cty.NullVal(ty), nil
	}

	guess, err := guessValue(raw)
	if err != nil {
		return cty.NilVal, err
	}

	converted, err := convert.Convert(guess, ty)
	if err != nil {
		return cty.NilVal, err
	}
	return converted, nil
}

// guessValue builds the natural cty value for a raw Go value.
// Numbers go through decimal so JSON floats and numeric strings keep
// precision.
func guessValue(raw interface{}) (cty.Value, error) {
	switch v := raw.(type) {
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case float64:
		return cty.NumberVal(decimal.NewFromFloat(v).BigFloat()), nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		return cty.NumberVal(d.BigFloat()), nil
	case []interface{}:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(v))
		for i, e := range v {
			ev, err := guessValue(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems = append(elems, ev)
		}
		return cty.TupleVal(elems), nil
	case map[string]interface{}:
		if len(v) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(v))
		for k, e := range v {
			ev, err := guessValue(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value of type %T", raw)
	}
}
