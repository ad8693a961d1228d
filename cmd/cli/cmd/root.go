// Package cmd provides the CLI commands for import-planner.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"import-planner/internal/config"
	"import-planner/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "import-planner",
	Short: "Generate configuration blocks for existing infrastructure",
	Long: `import-planner adopts real-world objects into declarative configuration.

Given import declarations (a target resource address and an external
identifier), it fetches the live object's attributes, reconciles them
against a schema catalog, emits a deterministic configuration block and
records the address-to-id binding.

Examples:
  import-planner plan ./infrastructure
  import-planner plan --out generated ./infrastructure
  import-planner bindings list`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.import-planner/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(bindingsCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("import-planner version 0.1.0")
	},
}
