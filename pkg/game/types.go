// Package game implements the backgammon rules engine: board and
// checker state, legal move generation (including multi-die combined
// moves), transactional move execution with undo, the doubling cube,
// and win detection for a single game.
//
// The package is a pure, synchronous library. A Game must not be
// mutated from two goroutines concurrently; callers hosting several
// games are expected to serialize access per game.
package game

import "errors"

// Color identifies a player side. White moves from point 24 toward
// point 1 and bears off past point 1; Black moves from point 1 toward
// point 24 and bears off past point 24.
type Color int

const (
	NoColor Color = iota
	White
	Black
)

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// Opponent returns the opposing color.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// Direction returns the sign of this color's movement along the
// 1..24 point numbering: -1 for White, +1 for Black.
func (c Color) Direction() int {
	if c == White {
		return -1
	}
	return 1
}

const (
	// NumPoints is the number of board points.
	NumPoints = 24

	// CheckersPerPlayer is the checker count each side starts with.
	CheckersPerPlayer = 15

	// BarPos is the pseudo-position a move enters from the bar.
	BarPos = 0

	// WhiteOffPos and BlackOffPos are the bear-off destinations.
	WhiteOffPos = 0
	BlackOffPos = 25

	// MaxCubeValue is the cap on the doubling cube.
	MaxCubeValue = 64
)

// Errors reported for programmer misuse of the engine. Illegal move
// attempts are never errors; they are boolean failures from
// ExecuteMove/IsValidMove.
var (
	// ErrInvalidOperation is wrapped by every state-machine misuse
	// fault (rolling before the game starts, doubling mid-roll, ...).
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrOutOfRange reports a point lookup outside 1..24.
	ErrOutOfRange = errors.New("point out of range")

	// ErrIllegalColorMix reports adding a checker to a point held by
	// two or more opposing checkers.
	ErrIllegalColorMix = errors.New("point held by opposing checkers")

	// ErrEmptyPoint reports removing a checker from an empty point.
	ErrEmptyPoint = errors.New("no checker on point")
)
