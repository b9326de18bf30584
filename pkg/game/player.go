package game

// Player holds one side's off-board checker counts.
type Player struct {
	Color           Color
	Name            string
	CheckersOnBar   int
	CheckersBornOff int
}

// NewPlayer returns a player with empty bar and off counts.
func NewPlayer(c Color, name string) *Player {
	return &Player{Color: c, Name: name}
}

// Direction returns the sign of the player's movement: -1 for White,
// +1 for Black.
func (p *Player) Direction() int { return p.Color.Direction() }
