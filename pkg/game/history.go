package game

// CubeEvent records a doubling-cube action taken during a turn.
type CubeEvent int

const (
	CubeNone CubeEvent = iota
	CubeDoubled
	CubeTaken
	CubeDropped
)

// TurnRecord is one turn's worth of history: the dice rolled, the
// moves executed, and any cube action. A record is opened when the
// turn's dice are rolled and archived by EndTurn.
type TurnRecord struct {
	Number     int
	Player     Color
	Dice       [2]int
	Moves      []Move
	CubeValue  int
	CubeEvent  CubeEvent
	Forfeited  bool
}

// removeLastMove drops the most recently recorded move, for undo.
func (t *TurnRecord) removeLastMove() {
	if len(t.Moves) > 0 {
		t.Moves = t.Moves[:len(t.Moves)-1]
	}
}
