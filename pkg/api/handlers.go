package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/yourusername/gammon/internal/storage"
	"github.com/yourusername/gammon/internal/timecontrol"
	"github.com/yourusername/gammon/pkg/game"
	"github.com/yourusername/gammon/pkg/match"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store    storage.Storage
	registry *Registry
	gate     *Gate
	logger   *zap.Logger
	tc       timecontrol.Config
	version  string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store storage.Storage, logger *zap.Logger, tc timecontrol.Config, gate *Gate, version string) *Handlers {
	return &Handlers{
		store:    store,
		registry: NewRegistry(),
		gate:     gate,
		logger:   logger,
		tc:       tc,
		version:  version,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// writeOpError maps engine errors to HTTP statuses: misuse of the
// state machine is a conflict, a malformed record is a bad request.
func (h *Handlers) writeOpError(w http.ResponseWriter, err error) {
	var fe *match.FormatError
	switch {
	case errors.As(err, &fe):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_FORMAT")
	case errors.Is(err, game.ErrInvalidOperation):
		writeError(w, http.StatusConflict, err.Error(), "INVALID_OPERATION")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
	}
}

// session resolves the {id} path variable to a live session.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := mux.Vars(r)["id"]
	sess, ok := h.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no live match with id "+id, "NOT_FOUND")
		return nil, false
	}
	return sess, true
}

// admit gates a request on the admission gate, answering 503 when its
// class is saturated or the caller gave up waiting. The returned
// release must be called when the request finishes.
func (h *Handlers) admit(w http.ResponseWriter, r *http.Request, class OpClass) (func(), bool) {
	if h.gate == nil {
		return func() {}, true
	}
	release, err := h.gate.Enter(r.Context(), class)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
		return nil, false
	}
	return release, true
}

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Matches: h.registry.Len(),
	}
	if h.gate != nil {
		stats := h.gate.Stats()
		resp.Gate = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateMatch handles POST /api/matches.
func (h *Handlers) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	m, err := match.New(req.Player1ID, req.Player1Name, req.Player2ID, req.Player2Name, req.TargetScore)
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	g, err := m.NewGame()
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	if req.TimeControl && h.tc.Type != timecontrol.TypeNone {
		g.EnableTimeControl(h.tc)
	}
	h.registry.Add(m, g)
	if err := h.store.SaveMatch(r.Context(), m); err != nil {
		h.logger.Warn("match not persisted", zap.String("match_id", m.ID), zap.Error(err))
	}
	h.logger.Info("match created",
		zap.String("match_id", m.ID),
		zap.Int("target_score", m.TargetScore))
	writeJSON(w, http.StatusCreated, MatchResponse{Match: m, Game: stateResponse(g)})
}

// ListMatches handles GET /api/matches.
func (h *Handlers) ListMatches(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.ListMatchIDs(r.Context())
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"match_ids": ids})
}

// GetMatch handles GET /api/matches/{id}. Completed matches are
// served from storage after their session is gone.
func (h *Handlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if sess, ok := h.registry.Get(id); ok {
		_ = sess.Do(func(m *match.Match, g *game.Game) error {
			writeJSON(w, http.StatusOK, MatchResponse{Match: m, Game: stateResponse(g)})
			return nil
		})
		return
	}
	m, err := h.store.GetMatch(r.Context(), id)
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MatchResponse{Match: m})
}

// DeleteMatch handles DELETE /api/matches/{id}.
func (h *Handlers) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.registry.Remove(id)
	if err := h.store.DeleteGameRecords(r.Context(), id); err != nil {
		h.writeOpError(w, err)
		return
	}
	if err := h.store.DeleteMatch(r.Context(), id); err != nil {
		h.writeOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OpeningRoll handles POST /api/matches/{id}/opening-roll.
func (h *Handlers) OpeningRoll(w http.ResponseWriter, r *http.Request) {
	release, ok := h.admit(w, r, OpPlay)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req RollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	c, ok := parseColor(req.Player)
	if !ok {
		writeError(w, http.StatusBadRequest, "player must be W or B", "INVALID_PLAYER")
		return
	}
	err := sess.Do(func(m *match.Match, g *game.Game) error {
		die, err := g.RollOpening(c)
		if err != nil {
			return err
		}
		state := stateResponse(g)
		sess.publish(Event{Type: "state", MatchID: m.ID, State: state})
		writeJSON(w, http.StatusOK, RollResponse{Die1: die, State: state})
		return nil
	})
	if err != nil {
		h.writeOpError(w, err)
	}
}

// Roll handles POST /api/matches/{id}/roll.
func (h *Handlers) Roll(w http.ResponseWriter, r *http.Request) {
	release, ok := h.admit(w, r, OpPlay)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	err := sess.Do(func(m *match.Match, g *game.Game) error {
		d1, d2, err := g.RollDice()
		if err != nil {
			return err
		}
		state := stateResponse(g)
		sess.publish(Event{Type: "state", MatchID: m.ID, State: state})
		writeJSON(w, http.StatusOK, RollResponse{Die1: d1, Die2: d2, State: state})
		return nil
	})
	if err != nil {
		h.writeOpError(w, err)
	}
}

// ValidMoves handles GET /api/matches/{id}/moves. The combined query
// parameter includes multi-die sequences.
func (h *Handlers) ValidMoves(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	includeCombined := strings.EqualFold(r.URL.Query().Get("combined"), "true")
	_ = sess.Do(func(m *match.Match, g *game.Game) error {
		moves := g.GetValidMoves(includeCombined)
		resp := MovesResponse{Moves: make([]MoveState, 0, len(moves))}
		for _, mv := range moves {
			resp.Moves = append(resp.Moves, moveState(mv))
		}
		writeJSON(w, http.StatusOK, resp)
		return nil
	})
}

// Move handles POST /api/matches/{id}/move.
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	release, ok := h.admit(w, r, OpPlay)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if len(req.DiceUsed) == 0 {
		writeError(w, http.StatusBadRequest, "dice_used is required", "MISSING_DICE")
		return
	}

	var mv game.Move
	if len(req.DiceUsed) == 1 {
		mv = game.NewMove(req.From, req.To, req.DiceUsed[0])
	} else {
		mv = game.NewCombinedMove(req.From, req.To, req.DiceUsed, nil)
	}

	err := sess.Do(func(m *match.Match, g *game.Game) error {
		if !g.ExecuteMove(mv) {
			writeError(w, http.StatusUnprocessableEntity, "move is not legal", "ILLEGAL_MOVE")
			return nil
		}
		h.afterPlay(r.Context(), sess, m, g)
		writeJSON(w, http.StatusOK, stateResponse(g))
		return nil
	})
	if err != nil {
		h.writeOpError(w, err)
	}
}

// Undo handles POST /api/matches/{id}/undo.
func (h *Handlers) Undo(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	_ = sess.Do(func(m *match.Match, g *game.Game) error {
		if !g.UndoLastMove() {
			writeError(w, http.StatusConflict, "nothing to undo", "NOTHING_TO_UNDO")
			return nil
		}
		state := stateResponse(g)
		sess.publish(Event{Type: "state", MatchID: m.ID, State: state})
		writeJSON(w, http.StatusOK, state)
		return nil
	})
}

// EndTurn handles POST /api/matches/{id}/end-turn.
func (h *Handlers) EndTurn(w http.ResponseWriter, r *http.Request) {
	release, ok := h.admit(w, r, OpPlay)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	err := sess.Do(func(m *match.Match, g *game.Game) error {
		if err := g.EndTurn(); err != nil {
			return err
		}
		state := stateResponse(g)
		sess.publish(Event{Type: "state", MatchID: m.ID, State: state})
		writeJSON(w, http.StatusOK, state)
		return nil
	})
	if err != nil {
		h.writeOpError(w, err)
	}
}

// Cube handles POST /api/matches/{id}/cube.
func (h *Handlers) Cube(w http.ResponseWriter, r *http.Request) {
	release, ok := h.admit(w, r, OpPlay)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req CubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	_ = sess.Do(func(m *match.Match, g *game.Game) error {
		var ok bool
		switch req.Action {
		case "offer":
			ok = g.OfferDouble()
		case "accept":
			ok = g.AcceptDouble()
		case "decline":
			ok = g.DeclineDouble()
		default:
			writeError(w, http.StatusBadRequest, "action must be offer, accept or decline", "INVALID_ACTION")
			return nil
		}
		if !ok {
			writeError(w, http.StatusConflict, "cube action not available", "CUBE_REFUSED")
			return nil
		}
		h.afterPlay(r.Context(), sess, m, g)
		writeJSON(w, http.StatusOK, stateResponse(g))
		return nil
	})
}

// Forfeit handles POST /api/matches/{id}/forfeit.
func (h *Handlers) Forfeit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ForfeitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	c, ok := parseColor(req.Player)
	if !ok {
		writeError(w, http.StatusBadRequest, "player must be W or B", "INVALID_PLAYER")
		return
	}
	err := sess.Do(func(m *match.Match, g *game.Game) error {
		if err := g.ForfeitGame(c); err != nil {
			return err
		}
		h.afterPlay(r.Context(), sess, m, g)
		writeJSON(w, http.StatusOK, stateResponse(g))
		return nil
	})
	if err != nil {
		h.writeOpError(w, err)
	}
}

// NextGame handles POST /api/matches/{id}/next-game.
func (h *Handlers) NextGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	err := sess.swapGame(func(m *match.Match) (*game.Game, error) {
		g, err := m.NewGame()
		if err != nil {
			return nil, err
		}
		if h.tc.Type != timecontrol.TypeNone {
			g.EnableTimeControl(h.tc)
		}
		return g, nil
	})
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	_ = sess.Do(func(m *match.Match, g *game.Game) error {
		state := stateResponse(g)
		sess.publish(Event{Type: "state", MatchID: m.ID, State: state})
		writeJSON(w, http.StatusOK, MatchResponse{Match: m, Game: state})
		return nil
	})
}

// ExportRecord handles GET /api/matches/{id}/record.
func (h *Handlers) ExportRecord(w http.ResponseWriter, r *http.Request) {
	release, ok := h.admit(w, r, OpRecord)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	err := sess.Do(func(m *match.Match, g *game.Game) error {
		var b strings.Builder
		if err := match.ExportGame(&b, m, g); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, RecordResponse{Record: b.String()})
		return nil
	})
	if err != nil {
		h.writeOpError(w, err)
	}
}

// ExportPosition handles GET /api/matches/{id}/position.
func (h *Handlers) ExportPosition(w http.ResponseWriter, r *http.Request) {
	release, ok := h.admit(w, r, OpRecord)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	_ = sess.Do(func(m *match.Match, g *game.Game) error {
		writeJSON(w, http.StatusOK, RecordResponse{Record: match.ExportPosition(g)})
		return nil
	})
}

// ImportPosition handles POST /api/positions. It parses and validates
// record text and returns the decoded state.
func (h *Handlers) ImportPosition(w http.ResponseWriter, r *http.Request) {
	release, ok := h.admit(w, r, OpRecord)
	if !ok {
		return
	}
	defer release()

	var req ImportPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	g, err := match.ImportPosition(strings.NewReader(req.Record))
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(g))
}

// GetGameRecord handles GET /api/matches/{id}/record/{n}: a stored
// record of an earlier game of the match.
func (h *Handlers) GetGameRecord(w http.ResponseWriter, r *http.Request) {
	release, ok := h.admit(w, r, OpRecord)
	if !ok {
		return
	}
	defer release()

	vars := mux.Vars(r)
	n, err := strconv.Atoi(vars["n"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "game number must be an integer", "INVALID_GAME_NUMBER")
		return
	}
	rec, err := h.store.GetGameRecord(r.Context(), vars["id"], n)
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordResponse{Record: rec})
}

// afterPlay runs the bookkeeping shared by every mutating play
// action: publish the new state and, when the game just ended, score
// the match and persist both the match and the game's record.
func (h *Handlers) afterPlay(ctx context.Context, sess *Session, m *match.Match, g *game.Game) {
	state := stateResponse(g)
	sess.publish(Event{Type: "state", MatchID: m.ID, State: state})
	if !g.GameOver() {
		return
	}

	res, err := g.GameResult()
	if err != nil {
		h.logger.Error("result unavailable after game over", zap.Error(err))
		return
	}
	winnerID := m.PlayerIDFor(res.Winner)
	if err := m.RecordGame(winnerID, res); err != nil {
		h.logger.Error("game not recorded", zap.String("match_id", m.ID), zap.Error(err))
		return
	}

	if err := h.store.SaveMatch(ctx, m); err != nil {
		h.logger.Warn("match not persisted", zap.String("match_id", m.ID), zap.Error(err))
	}
	var b strings.Builder
	if err := match.ExportGame(&b, m, g); err == nil {
		if err := h.store.SaveGameRecord(ctx, m.ID, len(m.Games), b.String()); err != nil {
			h.logger.Warn("record not persisted", zap.String("match_id", m.ID), zap.Error(err))
		}
	}

	sess.publish(Event{Type: "game_over", MatchID: m.ID, State: state, Match: m})
	if m.Status == match.StatusCompleted {
		sess.publish(Event{Type: "match_over", MatchID: m.ID, Match: m})
	}
	h.logger.Info("game finished",
		zap.String("match_id", m.ID),
		zap.String("winner", res.Winner.String()),
		zap.String("win_type", res.WinType.String()),
		zap.Int("points", res.Points))
}

// afterPlayWS is afterPlay for WebSocket actions, which have no
// request context.
func (h *Handlers) afterPlayWS(sess *Session, m *match.Match, g *game.Game) {
	h.afterPlay(context.Background(), sess, m, g)
}
