// Package match runs a sequence of games to a target score, applying
// the Crawford rule and match scoring, and reads and writes the
// bracketed game-record text format.
package match

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gammon/pkg/game"
)

// Status is the lifecycle state of a match.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// GameRecord summarizes one completed game.
type GameRecord struct {
	Number     int       `json:"number"`
	WinnerID   string    `json:"winner_id"`
	WinType    string    `json:"win_type"`
	CubeValue  int       `json:"cube_value"`
	Points     int       `json:"points"`
	Crawford   bool      `json:"crawford"`
	FinishedAt time.Time `json:"finished_at"`
}

// Match tracks two seated players racing to a target score. Scores
// freeze once either player reaches the target.
type Match struct {
	ID          string `json:"id"`
	Player1ID   string `json:"player1_id"`
	Player2ID   string `json:"player2_id"`
	Player1Name string `json:"player1_name"`
	Player2Name string `json:"player2_name"`

	Player1Score int `json:"player1_score"`
	Player2Score int `json:"player2_score"`
	TargetScore  int `json:"target_score"`

	Status                    Status `json:"status"`
	IsCrawfordGame            bool   `json:"is_crawford_game"`
	HasCrawfordGameBeenPlayed bool   `json:"has_crawford_game_been_played"`

	Games []GameRecord `json:"games"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// New seats two players for a match to targetScore points.
func New(p1ID, p1Name, p2ID, p2Name string, targetScore int) (*Match, error) {
	if targetScore < 1 {
		return nil, fmt.Errorf("target score %d: %w", targetScore, game.ErrInvalidOperation)
	}
	if p1ID == "" || p2ID == "" || p1ID == p2ID {
		return nil, fmt.Errorf("need two distinct player ids: %w", game.ErrInvalidOperation)
	}
	return &Match{
		ID:          uuid.NewString(),
		Player1ID:   p1ID,
		Player2ID:   p2ID,
		Player1Name: p1Name,
		Player2Name: p2Name,
		TargetScore: targetScore,
		Status:      StatusInProgress,
		StartedAt:   time.Now().UTC(),
	}, nil
}

// NewGame starts the next game of the match, with the Crawford flag
// set when this is the Crawford game.
func (m *Match) NewGame() (*game.Game, error) {
	if !m.CanContinueToNextGame() {
		return nil, fmt.Errorf("match %s is %s: %w", m.ID, m.Status, game.ErrInvalidOperation)
	}
	g := game.NewGame(m.Player1Name, m.Player2Name)
	g.StartNewGame()
	g.SetCrawfordGame(m.IsCrawfordGame)
	return g, nil
}

// UpdateScores credits points to the winner and advances the Crawford
// state machine. If the finished game was the Crawford game it is
// marked played; otherwise a score reaching one short of the target
// arms the Crawford game. Reaching the target completes the match and
// freezes the scores.
func (m *Match) UpdateScores(winnerID string, points int) error {
	if m.Status == StatusCompleted {
		return fmt.Errorf("match %s already completed: %w", m.ID, game.ErrInvalidOperation)
	}
	if points < 1 {
		return fmt.Errorf("award of %d points: %w", points, game.ErrInvalidOperation)
	}
	switch winnerID {
	case m.Player1ID:
		m.Player1Score += points
	case m.Player2ID:
		m.Player2Score += points
	default:
		return fmt.Errorf("player %s is not seated: %w", winnerID, game.ErrInvalidOperation)
	}

	if m.IsCrawfordGame {
		m.IsCrawfordGame = false
		m.HasCrawfordGameBeenPlayed = true
	} else if !m.HasCrawfordGameBeenPlayed &&
		(m.Player1Score == m.TargetScore-1 || m.Player2Score == m.TargetScore-1) {
		m.IsCrawfordGame = true
	}

	if m.Player1Score >= m.TargetScore || m.Player2Score >= m.TargetScore {
		m.Status = StatusCompleted
		now := time.Now().UTC()
		m.CompletedAt = &now
	}
	return nil
}

// RecordGame appends a finished game's summary and applies its points
// via UpdateScores.
func (m *Match) RecordGame(winnerID string, res game.GameResult) error {
	rec := GameRecord{
		Number:     len(m.Games) + 1,
		WinnerID:   winnerID,
		WinType:    res.WinType.String(),
		CubeValue:  res.CubeValue,
		Points:     res.Points,
		Crawford:   m.IsCrawfordGame,
		FinishedAt: time.Now().UTC(),
	}
	if err := m.UpdateScores(winnerID, res.Points); err != nil {
		return err
	}
	m.Games = append(m.Games, rec)
	return nil
}

// CanContinueToNextGame reports whether another game may start.
func (m *Match) CanContinueToNextGame() bool {
	return m.Status == StatusInProgress
}

// CanPlayerReconnect reports whether the id belongs to a seated player
// of a match that is still running.
func (m *Match) CanPlayerReconnect(playerID string) bool {
	if m.Status == StatusCompleted {
		return false
	}
	return playerID == m.Player1ID || playerID == m.Player2ID
}

// WinnerID returns the id of the match winner, or "" while the match
// is in progress.
func (m *Match) WinnerID() string {
	if m.Status != StatusCompleted {
		return ""
	}
	if m.Player1Score >= m.TargetScore {
		return m.Player1ID
	}
	return m.Player2ID
}

// ScoreFor returns the score of the given seated player.
func (m *Match) ScoreFor(playerID string) int {
	switch playerID {
	case m.Player1ID:
		return m.Player1Score
	case m.Player2ID:
		return m.Player2Score
	}
	return 0
}

// PlayerIDFor maps a game color to the seated player id. Player 1
// always plays White.
func (m *Match) PlayerIDFor(c game.Color) string {
	if c == game.White {
		return m.Player1ID
	}
	if c == game.Black {
		return m.Player2ID
	}
	return ""
}
