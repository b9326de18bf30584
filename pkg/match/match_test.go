package match

import (
	"errors"
	"testing"

	"github.com/yourusername/gammon/pkg/game"
)

func newTestMatch(t *testing.T, target int) *Match {
	t.Helper()
	m, err := New("p1", "Alice", "p2", "Bob", target)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func win(winType game.WinType, cube int) game.GameResult {
	return game.GameResult{
		WinType:   winType,
		CubeValue: cube,
		Points:    winType.Multiplier() * cube,
	}
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name   string
		p1, p2 string
		target int
	}{
		{"zero target", "p1", "p2", 0},
		{"same seat", "p1", "p1", 5},
		{"empty id", "", "p2", 5},
	}
	for _, tc := range cases {
		if _, err := New(tc.p1, "A", tc.p2, "B", tc.target); !errors.Is(err, game.ErrInvalidOperation) {
			t.Errorf("%s: expected ErrInvalidOperation, got %v", tc.name, err)
		}
	}

	m := newTestMatch(t, 5)
	if m.ID == "" {
		t.Error("Expected a generated match id")
	}
	if m.Status != StatusInProgress {
		t.Errorf("Expected in-progress status, got %s", m.Status)
	}
}

func TestCrawfordSequence(t *testing.T) {
	m := newTestMatch(t, 5)

	// Two gammons put player 1 at 4-0: one point from the target.
	for i := 0; i < 2; i++ {
		if err := m.RecordGame("p1", win(game.WinGammon, 1)); err != nil {
			t.Fatalf("Game %d: %v", i+1, err)
		}
	}
	if m.Player1Score != 4 {
		t.Fatalf("Expected 4-0, got %d-%d", m.Player1Score, m.Player2Score)
	}
	if !m.IsCrawfordGame {
		t.Fatal("Expected the Crawford game to be armed at 4-0")
	}

	// A game started now forbids doubling.
	g, err := m.NewGame()
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if !g.IsCrawfordGame() {
		t.Error("Expected the new game to carry the Crawford flag")
	}

	// Player 2 wins the Crawford game; the flag clears for good.
	if err := m.RecordGame("p2", win(game.WinNormal, 1)); err != nil {
		t.Fatalf("Crawford game: %v", err)
	}
	if m.IsCrawfordGame {
		t.Error("Expected the Crawford flag to clear")
	}
	if !m.HasCrawfordGameBeenPlayed {
		t.Error("Expected the Crawford game to be marked played")
	}
	if rec := m.Games[2]; !rec.Crawford {
		t.Error("Expected the third game record to be flagged Crawford")
	}

	// Player 2 stays at 4-1; post-Crawford the flag must not re-arm.
	if err := m.RecordGame("p2", win(game.WinNormal, 2)); err != nil {
		t.Fatalf("Game 4: %v", err)
	}
	if m.IsCrawfordGame {
		t.Error("Crawford re-armed after being played")
	}

	// Player 1 reaches the target.
	if err := m.RecordGame("p1", win(game.WinNormal, 1)); err != nil {
		t.Fatalf("Final game: %v", err)
	}
	if m.Status != StatusCompleted {
		t.Fatalf("Expected completed status, got %s", m.Status)
	}
	if m.WinnerID() != "p1" {
		t.Errorf("Expected p1 to win the match, got %q", m.WinnerID())
	}
	if m.CompletedAt == nil {
		t.Error("Expected a completion timestamp")
	}

	// Completed matches are frozen.
	if err := m.RecordGame("p2", win(game.WinNormal, 1)); !errors.Is(err, game.ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation recording into a completed match, got %v", err)
	}
	if _, err := m.NewGame(); !errors.Is(err, game.ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation starting a game in a completed match, got %v", err)
	}
	if m.CanPlayerReconnect("p1") {
		t.Error("Expected no reconnects to a completed match")
	}
}

func TestRecordGameUnknownPlayer(t *testing.T) {
	m := newTestMatch(t, 3)
	if err := m.RecordGame("stranger", win(game.WinNormal, 1)); !errors.Is(err, game.ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation for an unseated winner, got %v", err)
	}
	if len(m.Games) != 0 {
		t.Errorf("Failed record appended a game: %d", len(m.Games))
	}
}

func TestCubeValueCarriesIntoRecord(t *testing.T) {
	m := newTestMatch(t, 7)
	if err := m.RecordGame("p2", win(game.WinGammon, 2)); err != nil {
		t.Fatalf("RecordGame: %v", err)
	}
	rec := m.Games[0]
	if rec.Points != 4 || rec.CubeValue != 2 || rec.WinType != "gammon" {
		t.Errorf("Bad record: points=%d cube=%d type=%s", rec.Points, rec.CubeValue, rec.WinType)
	}
	if m.ScoreFor("p2") != 4 {
		t.Errorf("Expected p2 at 4, got %d", m.ScoreFor("p2"))
	}
	if m.ScoreFor("p1") != 0 {
		t.Errorf("Expected p1 at 0, got %d", m.ScoreFor("p1"))
	}
}

func TestPlayerIDFor(t *testing.T) {
	m := newTestMatch(t, 5)
	if got := m.PlayerIDFor(game.White); got != "p1" {
		t.Errorf("Expected player 1 to play white, got %q", got)
	}
	if got := m.PlayerIDFor(game.Black); got != "p2" {
		t.Errorf("Expected player 2 to play black, got %q", got)
	}
	if got := m.PlayerIDFor(game.NoColor); got != "" {
		t.Errorf("Expected no id for no color, got %q", got)
	}
}
