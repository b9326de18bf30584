package game

import (
	"gonum.org/v1/gonum/stat/combin"
)

// GetValidMoves returns every legal move for the player on turn given
// the remaining die values. With includeCombined set, multi-die
// sequences are searched as well; destinations already reachable with
// a single die are never duplicated as combined moves, and one
// ordering is reported per combined destination. The query never
// mutates game state.
func (g *Game) GetValidMoves(includeCombined bool) []Move {
	if g.phase != PhaseInProgress || len(g.remainingMoves) == 0 {
		return nil
	}
	mover := g.players[g.currentPlayer]

	// Bar priority: while any checker waits on the bar, only entry
	// moves exist and combined sequences are not searched at all.
	if mover.CheckersOnBar > 0 {
		return g.barEntryMoves(mover)
	}

	moves := g.singleDieMoves(mover)
	if includeCombined {
		moves = append(moves, g.combinedMoves(mover, moves)...)
	}
	return moves
}

// IsValidMove re-derives whether the move is in the current legal
// set for its shape, including that its die values are still among
// the remaining moves.
func (g *Game) IsValidMove(m Move) bool {
	if g.phase != PhaseInProgress || len(m.DiceUsed) == 0 {
		return false
	}
	if !isSubMultiset(m.DiceUsed, g.remainingMoves) {
		return false
	}
	for _, v := range g.GetValidMoves(m.IsCombined()) {
		if v.From != m.From || v.To != m.To || v.IsCombined() != m.IsCombined() {
			continue
		}
		if m.IsCombined() {
			if sameDice(v.DiceUsed, m.DiceUsed) {
				return true
			}
			continue
		}
		if v.DiceUsed[0] == m.DiceUsed[0] {
			return true
		}
	}
	return false
}

// lookupCombined finds the generated combined move matching m's
// source, destination, and dice multiset.
func (g *Game) lookupCombined(m Move) (Move, bool) {
	for _, v := range g.GetValidMoves(true) {
		if v.IsCombined() && v.From == m.From && v.To == m.To && sameDice(v.DiceUsed, m.DiceUsed) {
			return v, true
		}
	}
	return Move{}, false
}

func (g *Game) barEntryMoves(mover *Player) []Move {
	var moves []Move
	for _, d := range distinctDice(g.remainingMoves) {
		to := entryPoint(mover.Color, d)
		if !g.board.IsOpen(to, mover.Color) {
			continue
		}
		m := NewMove(BarPos, to, d)
		m.IsHit = g.wouldHit(to, mover.Color)
		moves = append(moves, m)
	}
	return moves
}

func (g *Game) singleDieMoves(mover *Player) []Move {
	var moves []Move
	allHome := g.board.AllCheckersHome(mover.Color, mover.CheckersOnBar)
	highest := g.board.HighestPoint(mover.Color)
	for _, d := range distinctDice(g.remainingMoves) {
		for from := 1; from <= NumPoints; from++ {
			src := g.board.point(from)
			if src.Count() == 0 || src.Color() != mover.Color {
				continue
			}
			to := from + d*mover.Direction()
			if to >= 1 && to <= NumPoints {
				if g.board.IsOpen(to, mover.Color) {
					m := NewMove(from, to, d)
					m.IsHit = g.wouldHit(to, mover.Color)
					moves = append(moves, m)
				}
				continue
			}
			// Off the end of the board: bear-off territory.
			if !allHome {
				continue
			}
			dist := bearOffDistance(mover.Color, from)
			if d == dist || (d > dist && from == highest) {
				moves = append(moves, NewMove(from, offPos(mover.Color), d))
			}
		}
	}
	return moves
}

// combinedMoves searches every ordered sequence of 2..n remaining die
// values from every source point, simulating sub-steps against a
// scratch board so that openness, the home-board condition, and the
// highest occupied point are all re-evaluated against the position as
// mutated by the preceding sub-steps.
func (g *Game) combinedMoves(mover *Player, singles []Move) []Move {
	n := len(g.remainingMoves)
	if n < 2 {
		return nil
	}

	reachable := make(map[[2]int]bool, len(singles))
	for _, m := range singles {
		reachable[[2]int{m.From, m.To}] = true
	}

	var moves []Move
	seenSeq := make(map[string]bool)
	for k := 2; k <= n; k++ {
		for _, perm := range combin.Permutations(n, k) {
			dice := make([]int, k)
			for i, idx := range perm {
				dice[i] = g.remainingMoves[idx]
			}
			// Doubles make many index permutations collapse to the
			// same value sequence.
			key := diceKey(dice)
			if seenSeq[key] {
				continue
			}
			seenSeq[key] = true

			for from := 1; from <= NumPoints; from++ {
				src := g.board.point(from)
				if src.Count() == 0 || src.Color() != mover.Color {
					continue
				}
				to, inters, hit, ok := g.simulateSequence(mover.Color, from, dice)
				if !ok {
					continue
				}
				dest := [2]int{from, to}
				if reachable[dest] {
					continue
				}
				reachable[dest] = true
				m := NewCombinedMove(from, to, dice, inters)
				m.IsHit = hit
				moves = append(moves, m)
			}
		}
		// Sequence keys are per length; reset between sizes.
		seenSeq = make(map[string]bool)
	}
	return moves
}

// simulateSequence plays dice one at a time from the given source
// against a scratch copy of the board. Every intermediate landing
// must be an open point; only the final step may bear off, under the
// exact-or-highest rule evaluated on the mutated copy.
func (g *Game) simulateSequence(c Color, from int, dice []int) (to int, intermediates []int, hit bool, ok bool) {
	scratch := g.board.Clone()
	cur := from
	for i, d := range dice {
		last := i == len(dice)-1
		dest := cur + d*c.Direction()
		if dest >= 1 && dest <= NumPoints {
			if !scratch.IsOpen(dest, c) {
				return 0, nil, false, false
			}
			if scratchApply(scratch, c, cur, dest) {
				hit = true
			}
			if !last {
				intermediates = append(intermediates, dest)
			}
			cur = dest
			continue
		}
		// Bearing off ends the sequence; it cannot happen mid-way.
		if !last {
			return 0, nil, false, false
		}
		if !scratch.AllCheckersHome(c, 0) {
			return 0, nil, false, false
		}
		dist := bearOffDistance(c, cur)
		if d != dist && !(d > dist && cur == scratch.HighestPoint(c)) {
			return 0, nil, false, false
		}
		scratch.point(cur).RemoveChecker()
		cur = offPos(c)
	}
	return cur, intermediates, hit, true
}

// scratchApply relocates a checker on the scratch board, clearing an
// opposing blot. Reports whether a blot was hit.
func scratchApply(b *Board, c Color, from, to int) bool {
	b.point(from).RemoveChecker()
	dest := b.point(to)
	hit := false
	if dest.Count() == 1 && dest.Color() != c {
		dest.RemoveChecker()
		hit = true
	}
	dest.AddChecker(c)
	return hit
}

// wouldHit reports whether landing on pos would hit an opposing blot.
func (g *Game) wouldHit(pos int, c Color) bool {
	p := g.board.point(pos)
	return p.Count() == 1 && p.Color() != NoColor && p.Color() != c
}

// distinctDice returns the unique die values in the multiset,
// preserving first-seen order.
func distinctDice(dice []int) []int {
	var out []int
	var seen [7]bool
	for _, d := range dice {
		if d >= 1 && d <= 6 && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// isSubMultiset reports whether every value in sub (with
// multiplicity) is present in super.
func isSubMultiset(sub, super []int) bool {
	var counts [7]int
	for _, d := range super {
		if d >= 1 && d <= 6 {
			counts[d]++
		}
	}
	for _, d := range sub {
		if d < 1 || d > 6 {
			return false
		}
		counts[d]--
		if counts[d] < 0 {
			return false
		}
	}
	return true
}

func diceKey(dice []int) string {
	buf := make([]byte, len(dice))
	for i, d := range dice {
		buf[i] = byte('0' + d)
	}
	return string(buf)
}
