// Package cmd - bindings commands
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"import-planner/core/ledger"
	"import-planner/core/types"
	"import-planner/internal/config"
)

// bindingsCmd groups binding ledger operations
var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "Inspect and manage the binding ledger",
}

var bindingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List current bindings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, l *ledger.Ledger) error {
			bindings, err := l.List(ctx)
			if err != nil {
				return err
			}
			if len(bindings) == 0 {
				fmt.Println("No bindings recorded.")
				return nil
			}
			for _, b := range bindings {
				fmt.Printf("%s -> %s (fetched %s)\n",
					b.Address, b.ExternalID, b.FetchedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		})
	},
}

var bindingsHistoryCmd = &cobra.Command{
	Use:   "history <address>",
	Short: "Show the full binding history of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := types.ParseAddress(args[0])
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, l *ledger.Ledger) error {
			history, err := l.History(ctx, addr)
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Printf("No history for %s.\n", addr)
				return nil
			}
			for _, b := range history {
				line := fmt.Sprintf("%s -> %s [%s] fetched %s",
					b.Address, b.ExternalID, b.State, b.FetchedAt.Format("2006-01-02 15:04:05"))
				if b.RetiredAt != nil {
					line += fmt.Sprintf(", retired %s", b.RetiredAt.Format("2006-01-02 15:04:05"))
				}
				fmt.Println(line)
			}
			return nil
		})
	},
}

var bindingsUnbindCmd = &cobra.Command{
	Use:   "unbind <address>",
	Short: "Retire the current binding of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := types.ParseAddress(args[0])
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, l *ledger.Ledger) error {
			if err := l.Unbind(ctx, addr); err != nil {
				return err
			}
			fmt.Printf("Unbound %s.\n", addr)
			return nil
		})
	},
}

// withLedger opens the configured ledger backend around one operation
func withLedger(fn func(context.Context, *ledger.Ledger) error) error {
	ctx := context.Background()
	cfg := config.Get()

	store, err := ledger.Open(ctx, ledger.Backend(cfg.Ledger.Backend), cfg.Ledger.Path, cfg.Ledger.PostgresDSN)
	if err != nil {
		return fmt.Errorf("failed to open binding ledger: %w", err)
	}
	l := ledger.New(store)
	defer l.Close()

	return fn(ctx, l)
}

func init() {
	bindingsCmd.AddCommand(bindingsListCmd)
	bindingsCmd.AddCommand(bindingsHistoryCmd)
	bindingsCmd.AddCommand(bindingsUnbindCmd)
}
