package cli

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/gammon/internal/bot"
	"github.com/yourusername/gammon/pkg/game"
	"github.com/yourusername/gammon/pkg/match"
)

func pickBot(name string, seed int64) (bot.Bot, error) {
	switch name {
	case "random":
		return bot.NewRandom(rand.NewSource(seed)), nil
	case "greedy":
		return bot.Greedy{}, nil
	}
	return nil, fmt.Errorf("unknown bot %q (want random or greedy)", name)
}

func newSelfplayCmd() *cobra.Command {
	var (
		games      int
		seed       int64
		whiteName  string
		blackName  string
		recordFile string
	)

	cmd := &cobra.Command{
		Use:   "selfplay",
		Short: "Play bot-vs-bot games and report the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			white, err := pickBot(whiteName, seed)
			if err != nil {
				return err
			}
			black, err := pickBot(blackName, seed+1)
			if err != nil {
				return err
			}

			wins := map[game.Color]int{}
			points := map[game.Color]int{}
			var lastGame *game.Game

			for i := 0; i < games; i++ {
				g := game.NewGameWithSource(whiteName, blackName, rand.NewSource(seed+int64(i)))
				res, err := bot.PlayGame(g, white, black)
				if err != nil {
					return fmt.Errorf("game %d: %w", i+1, err)
				}
				wins[res.Winner]++
				points[res.Winner] += res.Points
				lastGame = g
				fmt.Fprintf(cmd.OutOrStdout(), "game %d: %s wins a %s (%d points)\n",
					i+1, res.Winner, res.WinType, res.Points)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nwhite (%s): %d wins, %d points\n",
				whiteName, wins[game.White], points[game.White])
			fmt.Fprintf(cmd.OutOrStdout(), "black (%s): %d wins, %d points\n",
				blackName, wins[game.Black], points[game.Black])

			if recordFile != "" && lastGame != nil {
				f, err := os.Create(recordFile)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := match.ExportGame(f, nil, lastGame); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "last game record written to %s\n", recordFile)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&games, "games", "n", 1, "Number of games to play")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Dice seed")
	cmd.Flags().StringVar(&whiteName, "white", "greedy", "White bot: random, greedy")
	cmd.Flags().StringVar(&blackName, "black", "random", "Black bot: random, greedy")
	cmd.Flags().StringVar(&recordFile, "record", "", "Write the last game's record to this file")

	return cmd
}
