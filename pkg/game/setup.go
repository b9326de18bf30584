package game

import "fmt"

// PointSetup describes one point's stack in a Position.
type PointSetup struct {
	Color Color
	Count int
}

// Position is an arbitrary game state for import and test setup.
// Dice (0,0) means the turn's roll is still pending.
type Position struct {
	Points        map[int]PointSetup
	WhiteBar      int
	BlackBar      int
	WhiteOff      int
	BlackOff      int
	CurrentPlayer Color
	Dice          [2]int
	CubeValue     int
	CubeOwner     Color
	Crawford      bool
}

// NewGameFromPosition builds an in-progress game from an arbitrary
// position. More than 15 checkers of a color is an error; checkers
// not accounted for on the board or bar are treated as borne off so
// the 15-per-side invariant always holds.
func NewGameFromPosition(pos Position, whiteName, blackName string) (*Game, error) {
	if pos.CurrentPlayer != White && pos.CurrentPlayer != Black {
		return nil, fmt.Errorf("position needs a player on turn: %w", ErrInvalidOperation)
	}
	g := NewGame(whiteName, blackName)
	g.StartNewGame()
	for i := 1; i <= NumPoints; i++ {
		g.board.points[i] = Point{position: i}
	}

	counts := map[Color]int{White: pos.WhiteBar, Black: pos.BlackBar}
	for p, ps := range pos.Points {
		if p < 1 || p > NumPoints {
			return nil, fmt.Errorf("position %d: %w", p, ErrOutOfRange)
		}
		if ps.Count < 0 || (ps.Count > 0 && ps.Color != White && ps.Color != Black) {
			return nil, fmt.Errorf("bad stack on point %d: %w", p, ErrInvalidOperation)
		}
		g.board.place(p, ps.Color, ps.Count)
		counts[ps.Color] += ps.Count
	}
	for _, c := range []Color{White, Black} {
		if counts[c] > CheckersPerPlayer {
			return nil, fmt.Errorf("%d %s checkers on board and bar: %w",
				counts[c], c, ErrInvalidOperation)
		}
	}

	g.players[White].CheckersOnBar = pos.WhiteBar
	g.players[Black].CheckersOnBar = pos.BlackBar
	g.players[White].CheckersBornOff = CheckersPerPlayer - counts[White]
	g.players[Black].CheckersBornOff = CheckersPerPlayer - counts[Black]
	if pos.WhiteOff > g.players[White].CheckersBornOff || pos.BlackOff > g.players[Black].CheckersBornOff {
		return nil, fmt.Errorf("borne-off counts exceed unaccounted checkers: %w", ErrInvalidOperation)
	}

	if pos.CubeValue != 0 {
		if !validCubeValue(pos.CubeValue) {
			return nil, fmt.Errorf("cube value %d: %w", pos.CubeValue, ErrInvalidOperation)
		}
		g.cube.value = pos.CubeValue
		g.cube.owner = pos.CubeOwner
	}
	g.crawford = pos.Crawford
	g.phase = PhaseInProgress
	g.currentPlayer = pos.CurrentPlayer
	g.turnNumber = 0

	if pos.Dice[0] != 0 || pos.Dice[1] != 0 {
		if err := g.SetRoll(pos.Dice[0], pos.Dice[1]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func validCubeValue(v int) bool {
	for x := 1; x <= MaxCubeValue; x *= 2 {
		if v == x {
			return true
		}
	}
	return false
}
