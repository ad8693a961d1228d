// Package main - entry point for the import-planner API server
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"import-planner/adapters/remote"
	"import-planner/api"
	"import-planner/core/emit"
	"import-planner/core/fetch"
	"import-planner/core/ledger"
	"import-planner/core/planner"
	"import-planner/core/schema"
	"import-planner/internal/config"
	"import-planner/internal/logging"
)

const version = "0.1.0"

func main() {
	addr := flag.String("addr", ":8080", "Server address")
	cfgPath := flag.String("config", "", "Config file path")
	flag.Parse()

	ctx := context.Background()

	cfg := config.Get()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(loaded)
		cfg = loaded
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}

	registry, err := schema.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading schema catalog: %v\n", err)
		os.Exit(1)
	}

	store, err := ledger.Open(ctx, ledger.Backend(cfg.Ledger.Backend), cfg.Ledger.Path, cfg.Ledger.PostgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening binding ledger: %v\n", err)
		os.Exit(1)
	}
	bindings := ledger.New(store)
	defer bindings.Close()

	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Token, cfg.Fetch.Timeout())
	fetcher := fetch.NewFetcher(client, fetch.Options{
		MaxRetries:   cfg.Fetch.MaxRetries,
		InitialDelay: cfg.Fetch.InitialDelay(),
		MaxDelay:     cfg.Fetch.MaxDelay(),
	})

	p := planner.New(registry, fetcher, bindings, planner.Options{Emit: emit.Options{}})
	server := api.NewServer(version, p, bindings)

	fmt.Printf("import-planner server v%s listening on %s\n", version, *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
