package hcl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"import-planner/core/types"
)

func TestParseFileImportBlocks(t *testing.T) {
	src := []byte(`
import {
  to = netbird_group.engineering
  id = "grp-1"
}

resource "netbird_group" "other" {
  name = "other"
}

import {
  to = netbird_user.alice
  id = "usr-9"
}
`)

	reqs, diags := NewScanner().ParseFile("main.tf", src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	want := []types.ImportRequest{
		{To: "netbird_group.engineering", ID: "grp-1", SourceFile: "main.tf", SourceLine: 2},
		{To: "netbird_user.alice", ID: "usr-9", SourceFile: "main.tf", SourceLine: 11},
	}
	if diff := cmp.Diff(want, reqs); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFileMalformedBlocks(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing id", `import { to = netbird_group.eng }`},
		{"missing to", `import { id = "grp-1" }`},
		{"to not a reference", `import {
  to = "netbird_group.eng"
  id = "grp-1"
}`},
		{"to too deep", `import {
  to = module.x.netbird_group.eng
  id = "grp-1"
}`},
		{"id not a string", `import {
  to = netbird_group.eng
  id = 42
}`},
	}

	for _, tc := range cases {
		reqs, diags := NewScanner().ParseFile(tc.name+".tf", []byte(tc.src))
		if len(reqs) != 0 {
			t.Errorf("%s: got %d requests, want 0", tc.name, len(reqs))
		}
		if len(diags) != 1 {
			t.Errorf("%s: got %d diagnostics, want 1: %v", tc.name, len(diags), diags)
		}
	}
}

func TestParseFileSyntaxErrorBecomesDiagnostic(t *testing.T) {
	reqs, diags := NewScanner().ParseFile("broken.tf", []byte(`import { to = `))
	if len(reqs) != 0 {
		t.Errorf("got %d requests from broken file", len(reqs))
	}
	if len(diags) == 0 {
		t.Error("expected diagnostics for syntax error")
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("imports.tf", `import {
  to = netbird_group.eng
  id = "grp-1"
}`)
	write("notes.txt", "not terraform")
	write("broken.tf", `import {`)

	result, err := NewScanner().ScanDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Requests) != 1 {
		t.Errorf("request count = %d, want 1", len(result.Requests))
	}
	if len(result.Diagnostics) == 0 {
		t.Error("expected diagnostics from broken.tf")
	}
}
