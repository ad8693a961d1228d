// Package main is the entry point for the import-planner CLI.
package main

import (
	"os"

	"import-planner/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
