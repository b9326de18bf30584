package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/yourusername/gammon/pkg/game"
)

// checkerGlyph is the board symbol for each color: O for white, X for
// black.
func checkerGlyph(c game.Color) string {
	if c == game.White {
		return "O"
	}
	return "X"
}

func cell(g *game.Game, pos, row int) string {
	p, err := g.Board().GetPoint(pos)
	if err != nil || p.Count() <= row {
		return " . "
	}
	if row == 4 && p.Count() > 5 {
		return fmt.Sprintf("%2d ", p.Count())
	}
	return " " + checkerGlyph(p.Color()) + " "
}

// printBoard writes an ASCII rendering of the board. White (O) moves
// toward point 1, black (X) toward point 24.
func printBoard(w io.Writer, g *game.Game) {
	fmt.Fprintln(w, " 13 14 15 16 17 18 | 19 20 21 22 23 24")
	fmt.Fprintln(w, "-------------------+-------------------")
	for row := 0; row < 5; row++ {
		var b strings.Builder
		for pos := 13; pos <= 18; pos++ {
			b.WriteString(cell(g, pos, row))
		}
		b.WriteString(" | ")
		for pos := 19; pos <= 24; pos++ {
			b.WriteString(cell(g, pos, row))
		}
		fmt.Fprintln(w, b.String())
	}
	fmt.Fprintln(w)
	for row := 4; row >= 0; row-- {
		var b strings.Builder
		for pos := 12; pos >= 7; pos-- {
			b.WriteString(cell(g, pos, row))
		}
		b.WriteString(" | ")
		for pos := 6; pos >= 1; pos-- {
			b.WriteString(cell(g, pos, row))
		}
		fmt.Fprintln(w, b.String())
	}
	fmt.Fprintln(w, "-------------------+-------------------")
	fmt.Fprintln(w, " 12 11 10  9  8  7 |  6  5  4  3  2  1")
}

// printState writes a one-screen summary of the game state.
func printState(w io.Writer, g *game.Game) {
	printBoard(w, g)
	fmt.Fprintln(w)

	for _, c := range []game.Color{game.White, game.Black} {
		p := g.Player(c)
		fmt.Fprintf(w, "%s (%s): bar %d, off %d\n",
			p.Name, checkerGlyph(c), p.CheckersOnBar, p.CheckersBornOff)
	}

	cube := g.Cube()
	owner := "centered"
	if cube.Owner() != game.NoColor {
		owner = "held by " + cube.Owner().String()
	}
	fmt.Fprintf(w, "cube: %d (%s)\n", cube.Value(), owner)

	switch g.Phase() {
	case game.PhaseGameOver:
		wt, _ := g.DetermineWinType()
		fmt.Fprintf(w, "result: %s wins a %s\n", g.Winner(), wt)
	case game.PhaseInProgress:
		fmt.Fprintf(w, "turn %d: %s to play", g.TurnNumber(), g.CurrentPlayer())
		if rem := g.RemainingMoves(); len(rem) > 0 {
			fmt.Fprintf(w, ", dice %v", rem)
		}
		fmt.Fprintln(w)
	default:
		fmt.Fprintf(w, "phase: %s\n", g.Phase())
	}
}
