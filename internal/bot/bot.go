// Package bot provides automated players and a driver that runs them
// against the rules engine, used for self-play and exercising full
// games in tests.
package bot

import (
	"math/rand"

	"github.com/yourusername/gammon/pkg/game"
)

// Bot picks one move from the legal set for the player on turn.
type Bot interface {
	Name() string
	ChooseMove(g *game.Game, moves []game.Move) game.Move
}

// Random plays a uniformly random legal move.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a random mover drawing from src. A nil src uses a
// fixed seed.
func NewRandom(src rand.Source) *Random {
	if src == nil {
		src = rand.NewSource(1)
	}
	return &Random{rng: rand.New(src)}
}

func (r *Random) Name() string { return "random" }

func (r *Random) ChooseMove(_ *game.Game, moves []game.Move) game.Move {
	return moves[r.rng.Intn(len(moves))]
}

// Greedy prefers hits, then bear-offs, then the largest pip gain.
type Greedy struct{}

func (Greedy) Name() string { return "greedy" }

func (Greedy) ChooseMove(g *game.Game, moves []game.Move) game.Move {
	best := moves[0]
	bestScore := moveScore(g, moves[0])
	for _, m := range moves[1:] {
		if s := moveScore(g, m); s > bestScore {
			best, bestScore = m, s
		}
	}
	return best
}

func moveScore(g *game.Game, m game.Move) int {
	score := m.Die()
	if m.IsHit {
		score += 100
	}
	if m.IsBearOff() {
		score += 50
	}
	return score
}
