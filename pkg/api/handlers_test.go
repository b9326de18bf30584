package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gammon/internal/storage/memory"
	"github.com/yourusername/gammon/internal/testutil"
	"github.com/yourusername/gammon/internal/timecontrol"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	srv := NewServer(memory.New(), testutil.NopLogger(), timecontrol.Config{}, DefaultServerConfig(), "test")
	return srv.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func createMatch(t *testing.T, router http.Handler) MatchResponse {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/matches", CreateMatchRequest{
		Player1ID:   "p1",
		Player1Name: "Alice",
		Player2ID:   "p2",
		Player2Name: "Bob",
		TargetScore: 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp MatchResponse
	decode(t, rec, &resp)
	return resp
}

// playOpening posts opening rolls until the tie-breaking loop
// resolves and the game is in progress.
func playOpening(t *testing.T, router http.Handler, matchID string) *GameStateResponse {
	t.Helper()
	for i := 0; i < 100; i++ {
		for _, p := range []string{"W", "B"} {
			rec := doJSON(t, router, http.MethodPost, "/api/matches/"+matchID+"/opening-roll", RollRequest{Player: p})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var roll RollResponse
			decode(t, rec, &roll)
			if roll.State.Phase == "in-progress" {
				return roll.State
			}
		}
	}
	t.Fatal("opening never resolved")
	return nil
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	decode(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	require.NotNil(t, resp.Gate)
	assert.Equal(t, 100, resp.Gate.Play.Slots)
	assert.Equal(t, 8, resp.Gate.Record.Slots)
}

func TestSaturatedPlayClassAnswersBusy(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Gate = GateConfig{PlaySlots: 1, PlayWaiting: 1}
	srv := NewServer(memory.New(), testutil.NopLogger(), timecontrol.Config{}, cfg, "test")
	router := srv.Router()
	m := createMatch(t, router)

	// Hold the only play slot and park one waiter behind it.
	release, err := srv.Gate().Enter(context.Background(), OpPlay)
	require.NoError(t, err)
	defer release()
	waiterCtx, cancelWaiter := context.WithCancel(context.Background())
	defer cancelWaiter()
	go func() {
		_, _ = srv.Gate().Enter(waiterCtx, OpPlay)
	}()
	for i := 0; srv.Gate().Stats().Play.Waiting == 0; i++ {
		if i > 1000 {
			t.Fatal("waiter never reached the queue")
		}
		time.Sleep(time.Millisecond)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/roll", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "SERVER_BUSY", resp.Code)
}

func TestCreateMatch(t *testing.T) {
	router := newTestRouter(t)
	resp := createMatch(t, router)

	assert.NotEmpty(t, resp.Match.ID)
	assert.Equal(t, "Alice", resp.Match.Player1Name)
	assert.Equal(t, 5, resp.Match.TargetScore)
	require.NotNil(t, resp.Game)
	assert.Equal(t, "opening-roll", resp.Game.Phase)
	assert.Equal(t, 1, resp.Game.CubeValue)
}

func TestCreateMatchRejectsDuplicateSeats(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/matches", CreateMatchRequest{
		Player1ID: "p1", Player2ID: "p1", TargetScore: 3,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetMatchNotFound(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/matches/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpeningRoll(t *testing.T) {
	router := newTestRouter(t)
	m := createMatch(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/opening-roll", RollRequest{Player: "W"})
	require.Equal(t, http.StatusOK, rec.Code)
	var roll RollResponse
	decode(t, rec, &roll)
	assert.GreaterOrEqual(t, roll.Die1, 1)
	assert.LessOrEqual(t, roll.Die1, 6)

	// The same side may not roll twice before the opening resolves.
	rec = doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/opening-roll", RollRequest{Player: "W"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMoveFlow(t *testing.T) {
	router := newTestRouter(t)
	m := createMatch(t, router)
	state := playOpening(t, router, m.Match.ID)
	require.NotEmpty(t, state.RemainingMoves)

	rec := doJSON(t, router, http.MethodGet, "/api/matches/"+m.Match.ID+"/moves", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var moves MovesResponse
	decode(t, rec, &moves)
	require.NotEmpty(t, moves.Moves)

	first := moves.Moves[0]
	rec = doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/move", MoveRequest{
		From: first.From, To: first.To, DiceUsed: first.DiceUsed,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var after GameStateResponse
	decode(t, rec, &after)
	assert.Len(t, after.RemainingMoves, len(state.RemainingMoves)-len(first.DiceUsed))

	rec = doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var undone GameStateResponse
	decode(t, rec, &undone)
	assert.Len(t, undone.RemainingMoves, len(state.RemainingMoves))
}

func TestMoveRejectsIllegal(t *testing.T) {
	router := newTestRouter(t)
	m := createMatch(t, router)
	playOpening(t, router, m.Match.ID)

	rec := doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/move", MoveRequest{
		From: 3, To: 4, DiceUsed: []int{9},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRollWithUnusedDiceConflicts(t *testing.T) {
	router := newTestRouter(t)
	m := createMatch(t, router)
	playOpening(t, router, m.Match.ID)

	rec := doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/roll", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEndTurnPassesPlay(t *testing.T) {
	router := newTestRouter(t)
	m := createMatch(t, router)
	state := playOpening(t, router, m.Match.ID)

	rec := doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/end-turn", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var after GameStateResponse
	decode(t, rec, &after)
	assert.NotEqual(t, state.CurrentPlayer, after.CurrentPlayer)
	assert.Empty(t, after.RemainingMoves)

	rec = doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/roll", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var roll RollResponse
	decode(t, rec, &roll)
	assert.NotEmpty(t, roll.State.RemainingMoves)
}

func TestCubeUnavailableMidTurn(t *testing.T) {
	router := newTestRouter(t)
	m := createMatch(t, router)
	playOpening(t, router, m.Match.ID)

	// The opening roll leaves dice to play, so doubling must wait.
	rec := doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/cube", CubeRequest{Action: "offer"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestForfeitScoresMatch(t *testing.T) {
	router := newTestRouter(t)
	m := createMatch(t, router)
	state := playOpening(t, router, m.Match.ID)

	loser := "W"
	if state.CurrentPlayer == "black" {
		loser = "B"
	}
	rec := doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/forfeit", ForfeitRequest{Player: loser})
	require.Equal(t, http.StatusOK, rec.Code)
	var after GameStateResponse
	decode(t, rec, &after)
	assert.Equal(t, "game-over", after.Phase)
	assert.NotEmpty(t, after.Winner)

	rec = doJSON(t, router, http.MethodGet, "/api/matches/"+m.Match.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mr MatchResponse
	decode(t, rec, &mr)
	assert.Equal(t, 1, mr.Match.Player1Score+mr.Match.Player2Score)
	assert.Len(t, mr.Match.Games, 1)

	// A stored record exists for the finished game.
	rec = doJSON(t, router, http.MethodGet, "/api/matches/"+m.Match.ID+"/record/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stored RecordResponse
	decode(t, rec, &stored)
	assert.Contains(t, stored.Record, "GM[6]")

	// And the next game can start.
	rec = doJSON(t, router, http.MethodPost, "/api/matches/"+m.Match.ID+"/next-game", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &mr)
	assert.Equal(t, "opening-roll", mr.Game.Phase)
}

func TestExportPosition(t *testing.T) {
	router := newTestRouter(t)
	m := createMatch(t, router)
	playOpening(t, router, m.Match.ID)

	rec := doJSON(t, router, http.MethodGet, "/api/matches/"+m.Match.ID+"/position", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp RecordResponse
	decode(t, rec, &resp)
	assert.Contains(t, resp.Record, "GM[6]")
	assert.Contains(t, resp.Record, "AW[")
	assert.Contains(t, resp.Record, "AB[")
}

func TestExportRecord(t *testing.T) {
	router := newTestRouter(t)
	m := createMatch(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/matches/"+m.Match.ID+"/record", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp RecordResponse
	decode(t, rec, &resp)
	assert.Contains(t, resp.Record, "PW[Alice]PB[Bob]")
	assert.Contains(t, resp.Record, "MI[length:5]")
}

func TestImportPosition(t *testing.T) {
	router := newTestRouter(t)

	record := "(;FF[4]GM[6]CA[UTF-8]PL[W]CV[2]CO[B]AW[a][a]AB[a][a])"
	rec := doJSON(t, router, http.MethodPost, "/api/positions", ImportPositionRequest{Record: record})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var state GameStateResponse
	decode(t, rec, &state)
	assert.Equal(t, "in-progress", state.Phase)
	assert.Equal(t, "white", state.CurrentPlayer)
	assert.Equal(t, 2, state.CubeValue)
	assert.Equal(t, "black", state.CubeOwner)
	assert.Equal(t, 13, state.White.BorneOff)
}

func TestImportPositionRejectsWrongGameType(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/positions", ImportPositionRequest{
		Record: "(;FF[4]GM[1]PL[W])",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "INVALID_FORMAT", resp.Code)
}

func TestDeleteMatch(t *testing.T) {
	router := newTestRouter(t)
	m := createMatch(t, router)

	rec := doJSON(t, router, http.MethodDelete, "/api/matches/"+m.Match.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/matches/"+m.Match.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
