// Command ledgerctl is the placeholder CLI entry point spec.md §1 calls
// out as boilerplate external to the foundation: no ledger or Git-port
// operations are implemented here. It exists only to give the foundation
// a runnable smoke test (construct a Context, raise an Error, render its
// JSON) and a version command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flyingrobots/libgitledger-go"
	"github.com/flyingrobots/libgitledger-go/version"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Placeholder CLI for the libgitledger foundation layer",
	}
	root.AddCommand(versionCmd(), diagnoseCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the module version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
}

func diagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Build a sample Context and Error and print its JSON rendering",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ledgercore.NewContext(nil)
			defer ctx.Release()

			err := ledgercore.New(ctx, ledgercore.DomainIO, ledgercore.CodeIOError,
				ledgercore.Here(), "disk full")
			defer err.Release()

			fmt.Fprintln(cmd.OutOrStdout(), err.JSON())
			return nil
		},
	}
}
