package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zclconf/go-cty/cty"
)

const testCatalog = `{
  "schemas": [
    {
      "resource_type": "netbird_policy",
      "attributes": [
        {"name": "name", "type": "string", "required": true},
        {"name": "enabled", "type": "bool"},
        {"name": "tags", "type": "list(string)"},
        {"name": "id", "type": "string", "computed": true}
      ],
      "blocks": [
        {
          "name": "rule",
          "nesting": "list",
          "attributes": [
            {"name": "action", "type": "string", "required": true},
            {"name": "port", "type": "number"}
          ]
        }
      ]
    }
  ]
}`

func TestParseCatalog(t *testing.T) {
	r, err := ParseCatalog([]byte(testCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := r.Lookup("netbird_policy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// declared order must survive loading
	var names []string
	for _, a := range s.Attributes {
		names = append(names, a.Name)
	}
	want := []string{"name", "enabled", "tags", "id"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("attribute order mismatch (-want +got):\n%s", diff)
	}

	if attr, _ := s.Attribute("tags"); !attr.Type.Equals(cty.List(cty.String)) {
		t.Errorf("tags type = %v, want list(string)", attr.Type)
	}
	if attr, _ := s.Attribute("id"); !attr.Computed {
		t.Error("id should be computed")
	}

	bt, ok := s.BlockType("rule")
	if !ok {
		t.Fatal("rule block type missing")
	}
	if bt.Nesting != NestingList {
		t.Errorf("rule nesting = %q, want list", bt.Nesting)
	}
	if len(bt.Block.Attributes) != 2 {
		t.Errorf("rule attribute count = %d, want 2", len(bt.Block.Attributes))
	}
}

func TestParseCatalogRejectsBadType(t *testing.T) {
	doc := `{"schemas":[{"resource_type":"t","attributes":[{"name":"a","type":"complex128"}]}]}`
	if _, err := ParseCatalog([]byte(doc)); err == nil {
		t.Fatal("expected error for unsupported type constraint")
	}
}

func TestParseTypeConstraint(t *testing.T) {
	cases := map[string]cty.Type{
		"string":       cty.String,
		"number":       cty.Number,
		"bool":         cty.Bool,
		"list(string)": cty.List(cty.String),
		"set(number)":  cty.Set(cty.Number),
		"map(bool)":    cty.Map(cty.Bool),
	}
	for text, want := range cases {
		got, err := parseTypeConstraint(text)
		if err != nil {
			t.Errorf("parseTypeConstraint(%q): %v", text, err)
			continue
		}
		if !got.Equals(want) {
			t.Errorf("parseTypeConstraint(%q) = %v, want %v", text, got, want)
		}
	}
}
