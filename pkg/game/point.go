package game

import "fmt"

// Point is one of the 24 board triangles. It holds a stack of
// same-colored checkers; a point never holds both colors at once.
// Point is a value type so a Board can be copied wholesale for
// scratch move simulation.
type Point struct {
	position int
	color    Color
	count    int
}

// Position returns the point number (1..24).
func (p *Point) Position() int { return p.position }

// Count returns the number of checkers on the point.
func (p *Point) Count() int { return p.count }

// Color returns the color occupying the point, or NoColor if empty.
func (p *Point) Color() Color {
	if p.count == 0 {
		return NoColor
	}
	return p.color
}

// IsBlot reports whether exactly one checker sits on the point.
func (p *Point) IsBlot() bool { return p.count == 1 }

// AddChecker places a checker of the given color on the point. It
// fails with ErrIllegalColorMix if the point is held by two or more
// opposing checkers. Landing on an opposing blot is a hit and must be
// resolved by the caller before adding.
func (p *Point) AddChecker(c Color) error {
	if p.count > 0 && p.color != c {
		return fmt.Errorf("point %d: %w", p.position, ErrIllegalColorMix)
	}
	p.color = c
	p.count++
	return nil
}

// RemoveChecker removes the top checker and returns its color. It
// fails with ErrEmptyPoint if the point is empty.
func (p *Point) RemoveChecker() (Color, error) {
	if p.count == 0 {
		return NoColor, fmt.Errorf("point %d: %w", p.position, ErrEmptyPoint)
	}
	c := p.color
	p.count--
	if p.count == 0 {
		p.color = NoColor
	}
	return c, nil
}
