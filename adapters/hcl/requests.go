// Package hcl parses import request declarations out of Terraform files.
//
// A request is declared as:
//
//	import {
//	  to = resource_type.local_name
//	  id = "external-identifier"
//	}
//
// Malformed blocks become per-file diagnostics, never batch failures.
package hcl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"import-planner/core/types"
	"import-planner/internal/errors"
)

// Diagnostic is a non-fatal issue found while scanning request files
type Diagnostic struct {
	// File is the file where the issue occurred
	File string `json:"file"`

	// Line is the line number
	Line int `json:"line,omitempty"`

	// Message describes the issue
	Message string `json:"message"`
}

// ScanResult contains the requests and diagnostics of one scan
type ScanResult struct {
	// Requests are the well-formed import declarations
	Requests []types.ImportRequest `json:"requests"`

	// Diagnostics are malformed declarations and parse errors
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Scanner parses import declarations from .tf files
type Scanner struct {
	parser *hclparse.Parser
}

// NewScanner creates a new request scanner
func NewScanner() *Scanner {
	return &Scanner{
		parser: hclparse.NewParser(),
	}
}

// ScanDir walks a directory for .tf files and collects their import
// declarations
func (s *Scanner) ScanDir(path string) (*ScanResult, error) {
	var tfFiles []string
	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(p, ".tf") {
			tfFiles = append(tfFiles, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Config("failed to walk directory", err)
	}

	result := &ScanResult{}
	for _, file := range tfFiles {
		src, err := os.ReadFile(file)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				File:    file,
				Message: fmt.Sprintf("failed to read file: %v", err),
			})
			continue
		}
		reqs, diags := s.ParseFile(file, src)
		result.Requests = append(result.Requests, reqs...)
		result.Diagnostics = append(result.Diagnostics, diags...)
	}
	return result, nil
}

// ParseFile extracts import declarations from one file's source
func (s *Scanner) ParseFile(filename string, src []byte) ([]types.ImportRequest, []Diagnostic) {
	var requests []types.ImportRequest
	var diagnostics []Diagnostic

	file, diags := s.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		for _, d := range diags {
			if d.Severity != hcl.DiagError {
				continue
			}
			line := 0
			if d.Subject != nil {
				line = d.Subject.Start.Line
			}
			diagnostics = append(diagnostics, Diagnostic{
				File:    filename,
				Line:    line,
				Message: d.Summary + ": " + d.Detail,
			})
		}
		return requests, diagnostics
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		diagnostics = append(diagnostics, Diagnostic{
			File:    filename,
			Message: "unexpected body type from parser",
		})
		return requests, diagnostics
	}

	for _, block := range body.Blocks {
		if block.Type != "import" {
			continue
		}
		req, diag := decodeImportBlock(filename, block)
		if diag != nil {
			diagnostics = append(diagnostics, *diag)
			continue
		}
		requests = append(requests, req)
	}
	return requests, diagnostics
}

// decodeImportBlock reads the to and id attributes of one import block
func decodeImportBlock(filename string, block *hclsyntax.Block) (types.ImportRequest, *Diagnostic) {
	line := block.TypeRange.Start.Line
	fail := func(format string, args ...interface{}) (types.ImportRequest, *Diagnostic) {
		return types.ImportRequest{}, &Diagnostic{
			File:    filename,
			Line:    line,
			Message: fmt.Sprintf(format, args...),
		}
	}

	toAttr, ok := block.Body.Attributes["to"]
	if !ok {
		return fail("import block missing required attribute \"to\"")
	}
	idAttr, ok := block.Body.Attributes["id"]
	if !ok {
		return fail("import block missing required attribute \"id\"")
	}

	traversal, diags := hcl.AbsTraversalForExpr(toAttr.Expr)
	if diags.HasErrors() || len(traversal) != 2 {
		return fail("import \"to\" must be a resource_type.local_name reference")
	}
	root, ok := traversal[0].(hcl.TraverseRoot)
	if !ok {
		return fail("import \"to\" must be a resource_type.local_name reference")
	}
	attr, ok := traversal[1].(hcl.TraverseAttr)
	if !ok {
		return fail("import \"to\" must be a resource_type.local_name reference")
	}

	idVal, diags := idAttr.Expr.Value(nil)
	if diags.HasErrors() || idVal.Type() != cty.String || idVal.IsNull() {
		return fail("import \"id\" must be a string literal")
	}

	addr, err := types.ParseAddress(root.Name + "." + attr.Name)
	if err != nil {
		return fail("%v", err)
	}

	return types.ImportRequest{
		To:         addr,
		ID:         types.ExternalID(idVal.AsString()),
		SourceFile: filename,
		SourceLine: line,
	}, nil
}
