// Package api provides the HTTP/JSON interface to matches and games,
// with WebSocket and SSE channels for live state updates.
package api

import (
	"github.com/yourusername/gammon/pkg/game"
	"github.com/yourusername/gammon/pkg/match"
)

// Request types

// CreateMatchRequest starts a new match. Player 1 plays White.
type CreateMatchRequest struct {
	Player1ID   string `json:"player1_id"`
	Player1Name string `json:"player1_name"`
	Player2ID   string `json:"player2_id"`
	Player2Name string `json:"player2_name"`
	TargetScore int    `json:"target_score"`
	TimeControl bool   `json:"time_control,omitempty"`
}

// RollRequest asks for an opening die roll for one side.
type RollRequest struct {
	Player string `json:"player"` // "W" or "B"
}

// MoveRequest plays one move for the player on turn. DiceUsed with
// more than one value denotes a combined move.
type MoveRequest struct {
	From     int   `json:"from"`
	To       int   `json:"to"`
	DiceUsed []int `json:"dice_used"`
}

// CubeRequest performs a doubling cube action.
type CubeRequest struct {
	Action string `json:"action"` // "offer", "accept", "decline"
}

// ForfeitRequest concedes the game for one side.
type ForfeitRequest struct {
	Player string `json:"player"` // "W" or "B"
}

// ImportPositionRequest carries record text to parse.
type ImportPositionRequest struct {
	Record string `json:"record"`
}

// Response types

// PointState is one occupied point.
type PointState struct {
	Position int    `json:"position"`
	Color    string `json:"color"`
	Count    int    `json:"count"`
}

// PlayerState is one side's checker accounting.
type PlayerState struct {
	Name     string `json:"name"`
	Bar      int    `json:"bar"`
	BorneOff int    `json:"borne_off"`
}

// GameStateResponse is the full visible state of the current game.
type GameStateResponse struct {
	Phase          string       `json:"phase"`
	CurrentPlayer  string       `json:"current_player,omitempty"`
	Dice           [2]int       `json:"dice"`
	RemainingMoves []int        `json:"remaining_moves,omitempty"`
	Points         []PointState `json:"points"`
	White          PlayerState  `json:"white"`
	Black          PlayerState  `json:"black"`
	CubeValue      int          `json:"cube_value"`
	CubeOwner      string       `json:"cube_owner,omitempty"`
	DoublePending  bool         `json:"double_pending"`
	Crawford       bool         `json:"crawford"`
	Winner         string       `json:"winner,omitempty"`
	WinType        string       `json:"win_type,omitempty"`
	TurnNumber     int          `json:"turn_number"`
}

// MoveState is one legal or played move.
type MoveState struct {
	From          int   `json:"from"`
	To            int   `json:"to"`
	DiceUsed      []int `json:"dice_used"`
	Intermediates []int `json:"intermediates,omitempty"`
	IsHit         bool  `json:"is_hit"`
	IsBearOff     bool  `json:"is_bear_off"`
}

// MovesResponse lists the legal moves for the player on turn.
type MovesResponse struct {
	Moves []MoveState `json:"moves"`
}

// MatchResponse is the match envelope around the current game state.
type MatchResponse struct {
	Match *match.Match       `json:"match"`
	Game  *GameStateResponse `json:"game,omitempty"`
}

// RollResponse reports a die roll.
type RollResponse struct {
	Die1  int                `json:"die1"`
	Die2  int                `json:"die2,omitempty"`
	State *GameStateResponse `json:"state"`
}

// RecordResponse carries exported record text.
type RecordResponse struct {
	Record string `json:"record"`
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status  string     `json:"status"`
	Version string     `json:"version"`
	Matches int        `json:"matches"`
	Gate    *GateStats `json:"gate,omitempty"`
}

// stateResponse flattens a game into its wire form.
func stateResponse(g *game.Game) *GameStateResponse {
	resp := &GameStateResponse{
		Phase:      g.Phase().String(),
		CubeValue:  g.Cube().Value(),
		Crawford:   g.IsCrawfordGame(),
		TurnNumber: g.TurnNumber(),
	}
	if c := g.CurrentPlayer(); c != game.NoColor {
		resp.CurrentPlayer = c.String()
	}
	if owner := g.Cube().Owner(); owner != game.NoColor {
		resp.CubeOwner = owner.String()
	}
	resp.DoublePending = g.HasPendingDouble()
	d1, d2 := g.DiceValues()
	resp.Dice = [2]int{d1, d2}
	resp.RemainingMoves = g.RemainingMoves()

	for pos := 1; pos <= game.NumPoints; pos++ {
		p, err := g.Board().GetPoint(pos)
		if err != nil || p.Count() == 0 {
			continue
		}
		resp.Points = append(resp.Points, PointState{
			Position: pos,
			Color:    p.Color().String(),
			Count:    p.Count(),
		})
	}
	resp.White = playerState(g, game.White)
	resp.Black = playerState(g, game.Black)

	if g.GameOver() {
		resp.Winner = g.Winner().String()
		if wt, err := g.DetermineWinType(); err == nil {
			resp.WinType = wt.String()
		}
	}
	return resp
}

func playerState(g *game.Game, c game.Color) PlayerState {
	p := g.Player(c)
	return PlayerState{
		Name:     p.Name,
		Bar:      p.CheckersOnBar,
		BorneOff: p.CheckersBornOff,
	}
}

func moveState(m game.Move) MoveState {
	return MoveState{
		From:          m.From,
		To:            m.To,
		DiceUsed:      m.DiceUsed,
		Intermediates: m.Intermediates,
		IsHit:         m.IsHit,
		IsBearOff:     m.IsBearOff(),
	}
}

func parseColor(s string) (game.Color, bool) {
	switch s {
	case "W", "white":
		return game.White, true
	case "B", "black":
		return game.Black, true
	}
	return game.NoColor, false
}
