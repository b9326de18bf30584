package bot

import (
	"math/rand"
	"testing"

	"github.com/yourusername/gammon/pkg/game"
)

func TestRandomVsRandomCompletes(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		g := game.NewGameWithSource("white-bot", "black-bot", rand.NewSource(seed))
		white := NewRandom(rand.NewSource(seed))
		black := NewRandom(rand.NewSource(seed + 100))

		res, err := PlayGame(g, white, black)
		if err != nil {
			t.Fatalf("Seed %d: %v", seed, err)
		}
		if res.Winner != game.White && res.Winner != game.Black {
			t.Fatalf("Seed %d: no winner", seed)
		}
		if res.Points < 1 || res.Points > 3 {
			t.Errorf("Seed %d: %d points at cube 1", seed, res.Points)
		}
		if g.Player(res.Winner).CheckersBornOff != game.CheckersPerPlayer {
			t.Errorf("Seed %d: winner bore off %d checkers",
				seed, g.Player(res.Winner).CheckersBornOff)
		}
	}
}

func TestGreedyVsGreedyCompletes(t *testing.T) {
	g := game.NewGameWithSource("white-bot", "black-bot", rand.NewSource(3))
	res, err := PlayGame(g, Greedy{}, Greedy{})
	if err != nil {
		t.Fatalf("PlayGame: %v", err)
	}
	if !g.GameOver() {
		t.Fatal("PlayGame returned without finishing")
	}
	if res.WinType.String() == "" {
		t.Error("Result has no win type")
	}
}

func TestGreedyPrefersHit(t *testing.T) {
	g, err := game.NewGameFromPosition(game.Position{
		Points: map[int]game.PointSetup{
			8: {Color: game.White, Count: 2},
			5: {Color: game.Black, Count: 1},
			1: {Color: game.Black, Count: 2},
		},
		CurrentPlayer: game.White,
		Dice:          [2]int{3, 2},
	}, "W", "B")
	if err != nil {
		t.Fatalf("NewGameFromPosition: %v", err)
	}

	moves := g.GetValidMoves(false)
	m := Greedy{}.ChooseMove(g, moves)
	if m.To != 5 || !m.IsHit {
		t.Errorf("Expected greedy to hit the blot on 5, chose %d/%d", m.From, m.To)
	}
}

func TestGreedyPrefersBearOff(t *testing.T) {
	g, err := game.NewGameFromPosition(game.Position{
		Points: map[int]game.PointSetup{
			6:  {Color: game.White, Count: 2},
			19: {Color: game.Black, Count: 2},
		},
		CurrentPlayer: game.White,
		Dice:          [2]int{6, 1},
	}, "W", "B")
	if err != nil {
		t.Fatalf("NewGameFromPosition: %v", err)
	}

	moves := g.GetValidMoves(false)
	m := Greedy{}.ChooseMove(g, moves)
	if !m.IsBearOff() {
		t.Errorf("Expected greedy to bear off, chose %d/%d", m.From, m.To)
	}
}

func TestPlayTurnEndsTurn(t *testing.T) {
	g := game.NewGameWithSource("W", "B", rand.NewSource(11))
	g.StartNewGame()
	first, err := PlayOpening(g)
	if err != nil {
		t.Fatalf("PlayOpening: %v", err)
	}
	if first == game.NoColor {
		t.Fatal("Opening produced no first player")
	}

	if err := PlayTurn(g, NewRandom(rand.NewSource(1))); err != nil {
		t.Fatalf("PlayTurn: %v", err)
	}
	if g.CurrentPlayer() != first.Opponent() {
		t.Errorf("Expected the turn to pass to %s, got %s", first.Opponent(), g.CurrentPlayer())
	}
	if len(g.RemainingMoves()) != 0 {
		t.Errorf("Turn ended with dice left: %v", g.RemainingMoves())
	}
}
