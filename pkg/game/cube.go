package game

// DoublingCube tracks the stake multiplier and which side holds the
// exclusive right to double next. A centered cube (owner NoColor) may
// be doubled by either side.
type DoublingCube struct {
	value int
	owner Color
}

// NewDoublingCube returns a centered cube at value 1.
func NewDoublingCube() *DoublingCube {
	return &DoublingCube{value: 1, owner: NoColor}
}

// Value returns the current stake multiplier.
func (c *DoublingCube) Value() int { return c.value }

// Owner returns the color holding the cube, NoColor if centered.
func (c *DoublingCube) Owner() Color { return c.owner }

// CanDouble reports whether the given color may double: the cube is
// below its cap and either centered or already owned by that color.
func (c *DoublingCube) CanDouble(color Color) bool {
	if c.value >= MaxCubeValue {
		return false
	}
	return c.owner == NoColor || c.owner == color
}

// Double doubles the stake on behalf of color and hands that color
// the cube, mirroring physical cube possession after an accepted
// double. Returns false, leaving the cube unchanged, if the color may
// not double.
func (c *DoublingCube) Double(color Color) bool {
	if !c.CanDouble(color) {
		return false
	}
	c.value *= 2
	c.owner = color
	return true
}

// Take doubles the stake and hands the cube to the accepting side.
// The offer-side checks have already run by the time a take happens,
// so Take performs none of its own.
func (c *DoublingCube) Take(accepter Color) {
	c.value *= 2
	c.owner = accepter
}

// Reset recenters the cube at value 1.
func (c *DoublingCube) Reset() {
	c.value = 1
	c.owner = NoColor
}
