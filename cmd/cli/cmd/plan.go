// Package cmd - plan command
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	adapterhcl "import-planner/adapters/hcl"
	"import-planner/adapters/remote"
	"import-planner/core/emit"
	"import-planner/core/fetch"
	"import-planner/core/ledger"
	"import-planner/core/planner"
	"import-planner/core/schema"
	"import-planner/internal/config"
	"import-planner/internal/logging"
)

var (
	outDir          string
	catalogPath     string
	revealSensitive bool
	concurrency     int
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan [path]",
	Short: "Plan import requests found in a directory",
	Long: `Scan a directory for import declarations, fetch each remote object,
and write one generated configuration block per request.

The path must contain .tf files with import blocks:

  import {
    to = resource_type.local_name
    id = "external-identifier"
  }

Examples:
  import-planner plan .
  import-planner plan --out generated ./infrastructure
  import-planner plan --reveal-sensitive ./infrastructure`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory for generated blocks (default from config)")
	planCmd.Flags().StringVar(&catalogPath, "catalog", "", "schema catalog file (default from config)")
	planCmd.Flags().BoolVar(&revealSensitive, "reveal-sensitive", false, "render sensitive values literally")
	planCmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent import requests")
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}

	catalog := cfg.CatalogPath
	if catalogPath != "" {
		catalog = catalogPath
	}
	registry, err := schema.LoadCatalog(catalog)
	if err != nil {
		return fmt.Errorf("failed to load schema catalog: %w", err)
	}

	out := cfg.OutputDir
	if outDir != "" {
		out = outDir
	}

	scan, err := adapterhcl.NewScanner().ScanDir(path)
	if err != nil {
		return fmt.Errorf("failed to scan import declarations: %w", err)
	}
	for _, d := range scan.Diagnostics {
		fmt.Fprintf(os.Stderr, "warning: %s:%d: %s\n", d.File, d.Line, d.Message)
	}
	if len(scan.Requests) == 0 {
		fmt.Println("No import declarations found.")
		return nil
	}

	store, err := ledger.Open(ctx, ledger.Backend(cfg.Ledger.Backend), cfg.Ledger.Path, cfg.Ledger.PostgresDSN)
	if err != nil {
		return fmt.Errorf("failed to open binding ledger: %w", err)
	}
	bindings := ledger.New(store)
	defer bindings.Close()

	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Token, cfg.Fetch.Timeout())
	fetcher := fetch.NewFetcher(client, fetch.Options{
		MaxRetries:   cfg.Fetch.MaxRetries,
		InitialDelay: cfg.Fetch.InitialDelay(),
		MaxDelay:     cfg.Fetch.MaxDelay(),
	})

	p := planner.New(registry, fetcher, bindings, planner.Options{
		Emit:        emit.Options{RevealSensitive: revealSensitive},
		Concurrency: concurrency,
	})

	logging.Info("planning import requests")
	fmt.Printf("Planning %d import request(s)...\n", len(scan.Requests))
	results := p.PlanAll(ctx, scan.Requests)

	if err := os.MkdirAll(out, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	succeeded, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  %s: %v\n", res.Request.To, res.Err)
			continue
		}

		name := strings.ReplaceAll(res.Request.To.String(), ".", "_") + ".tf"
		target := filepath.Join(out, name)
		if err := os.WriteFile(target, res.Artifact(), 0644); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  %s: failed to write %s: %v\n", res.Request.To, target, err)
			continue
		}

		succeeded++
		fmt.Printf("  %s <- %s (%s)\n", res.Request.To, res.Request.ID, target)
		for _, note := range res.Block.Notes {
			fmt.Printf("    note: %s\n", note)
		}
	}

	fmt.Printf("Done: %d succeeded, %d failed.\n", succeeded, failed)
	if failed > 0 {
		return fmt.Errorf("%d import request(s) failed", failed)
	}
	return nil
}
