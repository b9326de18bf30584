package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/gammon/pkg/match"
)

func newInspectCmd() *cobra.Command {
	var positionOnly bool

	cmd := &cobra.Command{
		Use:   "inspect <record-file>",
		Short: "Replay a game record file and print the resulting position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			importer := match.ImportGame
			if positionOnly {
				importer = match.ImportPosition
			}
			g, err := importer(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			printState(cmd.OutOrStdout(), g)
			return nil
		},
	}

	cmd.Flags().BoolVar(&positionOnly, "position", false,
		"Read the setup position only, without replaying moves")

	return cmd
}
