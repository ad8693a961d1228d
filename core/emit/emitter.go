// Package emit renders reconciled attribute sets into declarative
// configuration blocks.
//
// Rendering is deterministic: attribute order follows the schema's declared
// order, nested blocks follow their declared order with repeated blocks in
// fetch order, and identical input yields byte-identical output. Empty
// optional nested blocks are omitted entirely.
package emit

import (
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"import-planner/core/schema"
	"import-planner/core/types"
)

// SensitivePlaceholder replaces sensitive values in rendered output
const SensitivePlaceholder = "(sensitive value)"

// Options control rendering
type Options struct {
	// RevealSensitive renders sensitive values literally instead of the
	// placeholder token
	RevealSensitive bool
}

// Render renders one resource block for a reconciled attribute set
func Render(s *schema.Schema, localName string, set *types.AttributeSet, opts Options) (*types.RenderedBlock, error) {
	addr := types.ResourceAddress(s.ResourceType + "." + localName)

	f := hclwrite.NewEmptyFile()
	block := f.Body().AppendNewBlock("resource", []string{s.ResourceType, localName})

	notes := renderBody(block.Body(), s, set, "", opts)

	return &types.RenderedBlock{
		Address: addr,
		Source:  f.Bytes(),
		Notes:   notes,
	}, nil
}

// RenderImport renders the companion import block for a binding, mirroring
// the request declaration
func RenderImport(addr types.ResourceAddress, id types.ExternalID) *types.RenderedBlock {
	f := hclwrite.NewEmptyFile()
	body := f.Body().AppendNewBlock("import", nil).Body()

	body.SetAttributeTraversal("to", hcl.Traversal{
		hcl.TraverseRoot{Name: addr.Type()},
		hcl.TraverseAttr{Name: addr.Name()},
	})
	body.SetAttributeValue("id", cty.StringVal(id.String()))

	return &types.RenderedBlock{
		Address: addr,
		Source:  f.Bytes(),
	}
}

func renderBody(body *hclwrite.Body, s *schema.Schema, set *types.AttributeSet, path string, opts Options) []string {
	var notes []string

	for _, attr := range s.Attributes {
		name := qualify(path, attr.Name)

		val, ok := set.Values[attr.Name]
		if !ok || val.IsNull() {
			continue
		}

		if attr.Computed {
			notes = append(notes, name+": computed by the remote system, omitted from configuration")
			continue
		}

		if attr.Sensitive && !opts.RevealSensitive {
			body.SetAttributeValue(attr.Name, cty.StringVal(SensitivePlaceholder))
			notes = append(notes, name+": sensitive value redacted, retrieve it from the remote system")
			continue
		}

		body.SetAttributeValue(attr.Name, val)
	}

	for _, bt := range s.BlockTypes {
		for i, nested := range set.Blocks[bt.Name] {
			if len(nested.Values) == 0 && len(nested.Blocks) == 0 {
				continue
			}
			elemPath := qualify(path, bt.Name)
			if bt.Nesting == schema.NestingList {
				elemPath = qualifyIndex(elemPath, i)
			}
			nestedBlock := body.AppendNewBlock(bt.Name, nil)
			notes = append(notes, renderBody(nestedBlock.Body(), bt.Block, nested, elemPath, opts)...)
		}
	}

	return notes
}

func qualify(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func qualifyIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
