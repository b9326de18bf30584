package game

import "fmt"

// Board holds the 24 points. It owns no player identity; color-scoped
// queries take the color as a parameter. Bar and borne-off counts live
// on the players, so the board invariant is checked one level up:
// board + bar + off == 15 per color at all times.
type Board struct {
	points [NumPoints + 1]Point // index 1..24; index 0 unused
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	b := &Board{}
	for i := 1; i <= NumPoints; i++ {
		b.points[i].position = i
	}
	return b
}

// Reset arranges the standard 30-checker starting layout.
func (b *Board) Reset() {
	for i := 1; i <= NumPoints; i++ {
		b.points[i] = Point{position: i}
	}
	// White runs 24 -> 1.
	b.place(24, White, 2)
	b.place(13, White, 5)
	b.place(8, White, 3)
	b.place(6, White, 5)
	// Black mirrors, running 1 -> 24.
	b.place(1, Black, 2)
	b.place(12, Black, 5)
	b.place(17, Black, 3)
	b.place(19, Black, 5)
}

func (b *Board) place(pos int, c Color, n int) {
	b.points[pos].color = c
	b.points[pos].count = n
}

// GetPoint returns the point at pos, failing with ErrOutOfRange for
// pos outside 1..24.
func (b *Board) GetPoint(pos int) (*Point, error) {
	if pos < 1 || pos > NumPoints {
		return nil, fmt.Errorf("position %d: %w", pos, ErrOutOfRange)
	}
	return &b.points[pos], nil
}

// point returns the point at pos without bounds checking. Callers
// must have validated pos.
func (b *Board) point(pos int) *Point { return &b.points[pos] }

// IsOpen reports whether a checker of color c may land on pos: the
// point is empty, held by c, or holds a single opposing blot (which
// would be hit).
func (b *Board) IsOpen(pos int, c Color) bool {
	if pos < 1 || pos > NumPoints {
		return false
	}
	p := &b.points[pos]
	return p.count == 0 || p.color == c || p.count == 1
}

// AllCheckersHome reports whether every checker of color c is inside
// its 6-point home board (1-6 for White, 19-24 for Black). Any
// checker on the bar means false, so the caller passes the bar count.
func (b *Board) AllCheckersHome(c Color, checkersOnBar int) bool {
	if checkersOnBar > 0 {
		return false
	}
	lo, hi := homeRange(c)
	for i := 1; i <= NumPoints; i++ {
		p := &b.points[i]
		if p.count > 0 && p.color == c && (i < lo || i > hi) {
			return false
		}
	}
	return true
}

// HighestPoint returns the occupied home-board point farthest from
// bearing off: for White the numerically highest occupied point 1-6,
// for Black the occupied point nearest 19. Returns 0 if the home
// board holds no checker of that color.
func (b *Board) HighestPoint(c Color) int {
	if c == White {
		for i := 6; i >= 1; i-- {
			if b.points[i].count > 0 && b.points[i].color == c {
				return i
			}
		}
		return 0
	}
	for i := 19; i <= NumPoints; i++ {
		if b.points[i].count > 0 && b.points[i].color == c {
			return i
		}
	}
	return 0
}

// CountCheckers returns the total on-board checkers of a color.
func (b *Board) CountCheckers(c Color) int {
	n := 0
	for i := 1; i <= NumPoints; i++ {
		if b.points[i].color == c {
			n += b.points[i].count
		}
	}
	return n
}

// Clone returns an independent copy of the board for scratch
// simulation.
func (b *Board) Clone() *Board {
	cp := *b
	return &cp
}

// homeRange returns the inclusive home-board span for a color.
func homeRange(c Color) (int, int) {
	if c == White {
		return 1, 6
	}
	return 19, NumPoints
}

// bearOffDistance returns how far the checker on pos is from bearing
// off for the given color.
func bearOffDistance(c Color, pos int) int {
	if c == White {
		return pos
	}
	return BlackOffPos - pos
}

// offPos returns the bear-off destination for a color.
func offPos(c Color) int {
	if c == White {
		return WhiteOffPos
	}
	return BlackOffPos
}

// entryPoint returns the bar-entry destination for die value d.
func entryPoint(c Color, d int) int {
	if c == White {
		return NumPoints + 1 - d
	}
	return d
}
