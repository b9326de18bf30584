// Package cli implements the gammon command line tool.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gammon",
		Short: "Backgammon rules engine tool",
		Long: `gammon drives the backgammon rules engine from the command line.

It can run bot self-play games and inspect game record files.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newSelfplayCmd())
	rootCmd.AddCommand(newInspectCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
