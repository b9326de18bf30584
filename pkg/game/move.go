package game

// Move describes a single-die or combined (multi-die) relocation of
// one checker. Moves are created by generation, applied once by
// ExecuteMove, and retained in turn history for undo and export. A
// move recorded by the engine additionally carries the undo tokens
// captured while it was applied; only those recorded moves are
// guaranteed exactly reversible.
type Move struct {
	From          int   // source point, BarPos (0) for bar entry
	To            int   // destination point, WhiteOffPos/BlackOffPos for bear-off
	DiceUsed      []int // ordered die values consumed; length 1 for a single-die move
	Intermediates []int // landing points between From and To for combined moves
	IsHit         bool  // an opposing blot is sent to the bar somewhere along the move

	// Undo log, recorded at execution time.
	tokens []undoToken
}

// undoToken captures the reverse of one applied sub-step. The token
// stack doubles as the transactional rollback log during execution
// and as the persistent undo record afterwards.
type undoToken struct {
	from, to int
	bearOff  bool
	barEntry bool
	hit      bool
}

// NewMove returns a single-die move.
func NewMove(from, to, die int) Move {
	return Move{From: from, To: to, DiceUsed: []int{die}}
}

// NewCombinedMove returns a combined move applying dice in order
// through the given intermediate points.
func NewCombinedMove(from, to int, dice, intermediates []int) Move {
	return Move{From: from, To: to, DiceUsed: dice, Intermediates: intermediates}
}

// Die returns the total pip distance, the sum of DiceUsed.
func (m Move) Die() int {
	sum := 0
	for _, d := range m.DiceUsed {
		sum += d
	}
	return sum
}

// IsCombined reports whether the move consumes more than one die.
func (m Move) IsCombined() bool { return len(m.DiceUsed) > 1 }

// IsBearOff reports whether the move removes the checker from play.
// Bar entries never target an off position, so the destination alone
// decides.
func (m Move) IsBearOff() bool {
	return (m.To == WhiteOffPos && m.From != BarPos) || m.To == BlackOffPos
}

// IsBarEntry reports whether the move enters from the bar.
func (m Move) IsBarEntry() bool { return m.From == BarPos }

// steps expands the move into its per-die (from, to) hops.
func (m Move) steps() [][2]int {
	path := make([]int, 0, len(m.DiceUsed)+1)
	path = append(path, m.From)
	path = append(path, m.Intermediates...)
	path = append(path, m.To)
	hops := make([][2]int, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		hops = append(hops, [2]int{path[i], path[i+1]})
	}
	return hops
}

// sameDice reports whether two moves consume the same multiset of die
// values, ignoring order.
func sameDice(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	var counts [7]int
	for _, d := range a {
		if d < 1 || d > 6 {
			return false
		}
		counts[d]++
	}
	for _, d := range b {
		if d < 1 || d > 6 {
			return false
		}
		counts[d]--
	}
	for _, n := range counts {
		if n != 0 {
			return false
		}
	}
	return true
}
