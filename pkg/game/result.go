package game

// WinType classifies how a game was won.
type WinType int

const (
	WinNormal WinType = iota + 1
	WinGammon
	WinBackgammon
)

// String returns the win type name.
func (w WinType) String() string {
	switch w {
	case WinGammon:
		return "gammon"
	case WinBackgammon:
		return "backgammon"
	default:
		return "single"
	}
}

// Multiplier returns the scoring factor: 1, 2, or 3.
func (w WinType) Multiplier() int {
	switch w {
	case WinGammon:
		return 2
	case WinBackgammon:
		return 3
	default:
		return 1
	}
}

// GameResult is the outcome a finished Game reports to its match.
type GameResult struct {
	Winner    Color
	WinType   WinType
	CubeValue int
	Points    int // WinType multiplier x cube value
}
