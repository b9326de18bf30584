package bot

import (
	"fmt"

	"github.com/yourusername/gammon/pkg/game"
)

// maxTurns caps runaway games so a broken bot cannot loop forever.
const maxTurns = 2000

// PlayOpening rolls the opening dice for both sides, repeating on
// ties, and returns the first player.
func PlayOpening(g *game.Game) (game.Color, error) {
	for g.Phase() == game.PhaseOpeningRoll {
		if _, err := g.RollOpening(game.White); err != nil {
			return game.NoColor, err
		}
		if g.Phase() != game.PhaseOpeningRoll {
			break
		}
		if _, err := g.RollOpening(game.Black); err != nil {
			return game.NoColor, err
		}
	}
	return g.CurrentPlayer(), nil
}

// PlayTurn plays the current player's whole turn: roll if needed, then
// move until no legal move remains, then end the turn. The legal set
// is re-queried after every move since consuming one die can strand
// the other.
func PlayTurn(g *game.Game, b Bot) error {
	if len(g.RemainingMoves()) == 0 {
		if _, _, err := g.RollDice(); err != nil {
			return err
		}
	}
	for {
		moves := g.GetValidMoves(false)
		if len(moves) == 0 {
			break
		}
		m := b.ChooseMove(g, moves)
		if !g.ExecuteMove(m) {
			return fmt.Errorf("%s chose a rejected move %d/%d: %w",
				b.Name(), m.From, m.To, game.ErrInvalidOperation)
		}
		if g.GameOver() {
			return nil
		}
	}
	return g.EndTurn()
}

// PlayGame runs a full game between two bots and returns its result.
func PlayGame(g *game.Game, white, black Bot) (game.GameResult, error) {
	if g.Phase() == game.PhaseNotStarted {
		g.StartNewGame()
	}
	if g.Phase() == game.PhaseOpeningRoll {
		if _, err := PlayOpening(g); err != nil {
			return game.GameResult{}, err
		}
	}

	// The opening already seeded the first turn's dice.
	for turns := 0; !g.GameOver(); turns++ {
		if turns >= maxTurns {
			return game.GameResult{}, fmt.Errorf("game exceeded %d turns: %w", maxTurns, game.ErrInvalidOperation)
		}
		b := white
		if g.CurrentPlayer() == game.Black {
			b = black
		}
		if err := PlayTurn(g, b); err != nil {
			return game.GameResult{}, err
		}
	}
	return g.GameResult()
}
