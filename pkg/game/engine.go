package game

import (
	"fmt"
	"math/rand"

	"github.com/yourusername/gammon/internal/timecontrol"
)

// Phase is the turn/match state machine position.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseOpeningRoll
	PhaseInProgress
	PhaseGameOver
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseOpeningRoll:
		return "opening-roll"
	case PhaseInProgress:
		return "in-progress"
	case PhaseGameOver:
		return "game-over"
	default:
		return "not-started"
	}
}

// Game orchestrates one game: board, two players, dice, doubling
// cube, turn state, move legality, undo, win detection, and the
// in-memory turn log. All operations are synchronous and complete
// before returning; mutation is all-or-nothing.
type Game struct {
	board   *Board
	players map[Color]*Player
	dice    *Dice
	cube    *DoublingCube

	phase            Phase
	currentPlayer    Color
	remainingMoves   []int
	currentTurnMoves []Move
	currentTurn      *TurnRecord
	history          []TurnRecord
	turnNumber       int
	openingRolls     map[Color]int

	winner  Color
	winType WinType

	crawford          bool
	pendingDoubleFrom Color

	clock *timecontrol.Clock
}

// NewGame returns a game in PhaseNotStarted with wall-clock dice.
func NewGame(whiteName, blackName string) *Game {
	return NewGameWithSource(whiteName, blackName, nil)
}

// NewGameWithSource returns a game whose dice draw from src. A nil
// src seeds from the wall clock.
func NewGameWithSource(whiteName, blackName string, src rand.Source) *Game {
	dice := NewDice()
	if src != nil {
		dice = NewDiceWithSource(src)
	}
	return &Game{
		board: NewBoard(),
		players: map[Color]*Player{
			White: NewPlayer(White, whiteName),
			Black: NewPlayer(Black, blackName),
		},
		dice:         dice,
		cube:         NewDoublingCube(),
		openingRolls: make(map[Color]int),
	}
}

// StartNewGame resets the board to the standard layout, clears bars,
// borne-off counts, history and the cube, and enters the opening-roll
// phase.
func (g *Game) StartNewGame() {
	g.board.Reset()
	for _, p := range g.players {
		p.CheckersOnBar = 0
		p.CheckersBornOff = 0
	}
	g.cube.Reset()
	g.dice.Clear()
	g.phase = PhaseOpeningRoll
	g.currentPlayer = NoColor
	g.remainingMoves = nil
	g.currentTurnMoves = nil
	g.currentTurn = nil
	g.history = nil
	g.turnNumber = 0
	g.openingRolls = make(map[Color]int)
	g.winner = NoColor
	g.winType = 0
	g.pendingDoubleFrom = NoColor
}

// SetCrawfordGame marks this game as the Crawford game, in which
// doubling is forbidden.
func (g *Game) SetCrawfordGame(crawford bool) { g.crawford = crawford }

// IsCrawfordGame reports whether this is the Crawford game.
func (g *Game) IsCrawfordGame() bool { return g.crawford }

// EnableTimeControl attaches a turn clock consulted by the timer
// hooks. The engine never schedules anything itself.
func (g *Game) EnableTimeControl(cfg timecontrol.Config) {
	g.clock = timecontrol.New(cfg)
}

// Accessors. The bot/driver contract is GetValidMoves, ExecuteMove,
// RollDice, EndTurn, the cube operations, and these reads.

// Board returns the live board.
func (g *Game) Board() *Board { return g.board }

// Player returns the state for one side.
func (g *Game) Player(c Color) *Player { return g.players[c] }

// CurrentPlayer returns the color on turn, NoColor before the
// opening roll resolves.
func (g *Game) CurrentPlayer() Color { return g.currentPlayer }

// Phase returns the state-machine phase.
func (g *Game) Phase() Phase { return g.phase }

// GameOver reports whether the game has ended.
func (g *Game) GameOver() bool { return g.phase == PhaseGameOver }

// Winner returns the winning color, NoColor while in progress.
func (g *Game) Winner() Color { return g.winner }

// Cube returns the doubling cube.
func (g *Game) Cube() *DoublingCube { return g.cube }

// DiceValues returns the current roll.
func (g *Game) DiceValues() (int, int) { return g.dice.Values() }

// RemainingMoves returns a copy of the unused die values this turn.
func (g *Game) RemainingMoves() []int {
	out := make([]int, len(g.remainingMoves))
	copy(out, g.remainingMoves)
	return out
}

// CurrentTurnMoves returns the moves executed so far this turn.
func (g *Game) CurrentTurnMoves() []Move {
	out := make([]Move, len(g.currentTurnMoves))
	copy(out, g.currentTurnMoves)
	return out
}

// History returns the archived turn records.
func (g *Game) History() []TurnRecord {
	out := make([]TurnRecord, len(g.history))
	copy(out, g.history)
	return out
}

// TurnNumber returns the number of the turn in progress.
func (g *Game) TurnNumber() int { return g.turnNumber }

// RollOpening rolls one opening die for the given color. Equal rolls
// are a tie: both rolls are cleared and the phase re-arms. Unequal
// rolls determine the first player, seed the turn's moves from both
// opening dice, and enter PhaseInProgress.
func (g *Game) RollOpening(c Color) (int, error) {
	if g.phase != PhaseOpeningRoll {
		return 0, fmt.Errorf("opening roll in phase %s: %w", g.phase, ErrInvalidOperation)
	}
	if c != White && c != Black {
		return 0, fmt.Errorf("opening roll for %s: %w", c, ErrInvalidOperation)
	}
	if _, rolled := g.openingRolls[c]; rolled {
		return 0, fmt.Errorf("%s already rolled the opening die: %w", c, ErrInvalidOperation)
	}
	die := g.dice.rollOne()
	g.openingRolls[c] = die
	if len(g.openingRolls) < 2 {
		return die, nil
	}

	w, b := g.openingRolls[White], g.openingRolls[Black]
	if w == b {
		// Tie: both sides roll again.
		g.openingRolls = make(map[Color]int)
		return die, nil
	}
	winner := White
	if b > w {
		winner = Black
	}
	hi, lo := w, b
	if b > w {
		hi, lo = b, w
	}
	g.currentPlayer = winner
	g.dice.Set(hi, lo)
	g.phase = PhaseInProgress
	g.openTurn(hi, lo)
	return die, nil
}

// RollDice rolls for the player on turn. It fails if the game has not
// started, is over, or if die values from the previous roll are still
// unconsumed (the turn must be finished or forfeited first).
func (g *Game) RollDice() (int, int, error) {
	if err := g.checkRollable(); err != nil {
		return 0, 0, err
	}
	d1, d2 := g.dice.Roll()
	g.openTurn(d1, d2)
	return d1, d2, nil
}

// SetRoll seeds a specific roll instead of a random one, under the
// same state checks as RollDice. Used by position import and tests.
func (g *Game) SetRoll(d1, d2 int) error {
	if err := g.checkRollable(); err != nil {
		return err
	}
	if err := g.dice.Set(d1, d2); err != nil {
		return err
	}
	g.openTurn(d1, d2)
	return nil
}

func (g *Game) checkRollable() error {
	if g.phase != PhaseInProgress {
		return fmt.Errorf("roll in phase %s: %w", g.phase, ErrInvalidOperation)
	}
	if g.pendingDoubleFrom != NoColor {
		return fmt.Errorf("roll with a double pending: %w", ErrInvalidOperation)
	}
	if len(g.remainingMoves) > 0 {
		return fmt.Errorf("roll with %d unused dice: %w", len(g.remainingMoves), ErrInvalidOperation)
	}
	return nil
}

// openTurn seeds remainingMoves from the dice and opens the turn
// record.
func (g *Game) openTurn(d1, d2 int) {
	g.remainingMoves = g.dice.Moves()
	g.currentTurnMoves = nil
	if g.currentTurn == nil {
		g.turnNumber++
		g.currentTurn = &TurnRecord{
			Number:    g.turnNumber,
			Player:    g.currentPlayer,
			CubeValue: g.cube.Value(),
		}
	}
	g.currentTurn.Dice = [2]int{d1, d2}
	g.StartTurnTimer()
}

// ensureTurn opens a turn record before any dice are rolled, for
// cube actions taken pre-roll.
func (g *Game) ensureTurn() {
	if g.currentTurn == nil {
		g.turnNumber++
		g.currentTurn = &TurnRecord{
			Number:    g.turnNumber,
			Player:    g.currentPlayer,
			CubeValue: g.cube.Value(),
		}
	}
}

// ExecuteMove validates and applies a move for the player on turn.
// Illegal moves are an expected input and return false without
// fault. Combined moves apply one sub-step at a time against live
// state; if any sub-step fails the defensive re-check, every applied
// sub-step is rolled back and false is returned, so a partially
// applied multi-step move is never persisted.
func (g *Game) ExecuteMove(m Move) bool {
	if g.phase != PhaseInProgress {
		return false
	}
	if !g.IsValidMove(m) {
		return false
	}
	if m.IsCombined() && len(m.Intermediates) != len(m.DiceUsed)-1 {
		// Caller supplied a combined move without its path; adopt the
		// generated ordering for the same destination and dice.
		gen, ok := g.lookupCombined(m)
		if !ok {
			return false
		}
		gen.IsHit = false
		m = gen
	}

	mover := g.players[g.currentPlayer]
	m.tokens = nil

	hit := false
	hops := m.steps()
	for i, hop := range hops {
		tok, ok := g.applyStep(hop[0], hop[1], m.DiceUsed[i])
		if !ok {
			g.rollback(m.tokens)
			return false
		}
		m.tokens = append(m.tokens, tok)
		if tok.hit {
			hit = true
		}
	}
	m.IsHit = hit

	g.consumeDice(m.DiceUsed)
	g.currentTurnMoves = append(g.currentTurnMoves, m)
	if g.currentTurn != nil {
		g.currentTurn.Moves = append(g.currentTurn.Moves, m)
	}

	if mover.CheckersBornOff == CheckersPerPlayer {
		g.finishWith(mover.Color, g.determineWinType(mover.Color))
	}
	return true
}

// applyStep applies one sub-step for the player on turn, re-checking
// its legality against the live (already partially mutated) board.
func (g *Game) applyStep(from, to, die int) (undoToken, bool) {
	mover := g.players[g.currentPlayer]
	opp := g.players[g.currentPlayer.Opponent()]
	tok := undoToken{from: from, to: to}

	if from == BarPos {
		tok.barEntry = true
		if mover.CheckersOnBar == 0 || to != entryPoint(mover.Color, die) || !g.board.IsOpen(to, mover.Color) {
			return tok, false
		}
		mover.CheckersOnBar--
		tok.hit = g.landOn(to, mover.Color, opp)
		return tok, true
	}

	if from < 1 || from > NumPoints {
		return tok, false
	}
	src := g.board.point(from)
	if src.Count() == 0 || src.Color() != mover.Color {
		return tok, false
	}

	if to == offPos(mover.Color) {
		tok.bearOff = true
		if !g.board.AllCheckersHome(mover.Color, mover.CheckersOnBar) {
			return tok, false
		}
		dist := bearOffDistance(mover.Color, from)
		if die != dist && !(die > dist && from == g.board.HighestPoint(mover.Color)) {
			return tok, false
		}
		src.RemoveChecker()
		mover.CheckersBornOff++
		return tok, true
	}

	if to != from+die*mover.Direction() || !g.board.IsOpen(to, mover.Color) {
		return tok, false
	}
	src.RemoveChecker()
	tok.hit = g.landOn(to, mover.Color, opp)
	return tok, true
}

// landOn places a mover checker on pos, sending an opposing blot to
// the bar. Reports whether a hit occurred.
func (g *Game) landOn(pos int, mover Color, opp *Player) bool {
	pt := g.board.point(pos)
	hit := false
	if pt.Count() == 1 && pt.Color() == opp.Color {
		pt.RemoveChecker()
		opp.CheckersOnBar++
		hit = true
	}
	pt.AddChecker(mover)
	return hit
}

// rollback reverses applied sub-steps in LIFO order.
func (g *Game) rollback(tokens []undoToken) {
	for i := len(tokens) - 1; i >= 0; i-- {
		g.revertStep(tokens[i])
	}
}

func (g *Game) revertStep(tok undoToken) {
	mover := g.players[g.currentPlayer]
	opp := g.players[g.currentPlayer.Opponent()]
	switch {
	case tok.bearOff:
		mover.CheckersBornOff--
		g.board.point(tok.from).AddChecker(mover.Color)
	case tok.barEntry:
		g.board.point(tok.to).RemoveChecker()
		mover.CheckersOnBar++
		if tok.hit {
			g.board.point(tok.to).AddChecker(opp.Color)
			opp.CheckersOnBar--
		}
	default:
		g.board.point(tok.to).RemoveChecker()
		if tok.hit {
			g.board.point(tok.to).AddChecker(opp.Color)
			opp.CheckersOnBar--
		}
		g.board.point(tok.from).AddChecker(mover.Color)
	}
}

// consumeDice removes one instance of each used die value from the
// remaining moves.
func (g *Game) consumeDice(dice []int) {
	for _, d := range dice {
		for i, r := range g.remainingMoves {
			if r == d {
				g.remainingMoves = append(g.remainingMoves[:i], g.remainingMoves[i+1:]...)
				break
			}
		}
	}
}

// UndoLastMove pops the most recent move of the current turn and
// reverses it exactly, returning its die values to the remaining
// moves. Returns false if no move has been made this turn or the
// game is over. Only moves recorded by this engine are guaranteed
// reversible.
func (g *Game) UndoLastMove() bool {
	if g.phase != PhaseInProgress || len(g.currentTurnMoves) == 0 {
		return false
	}
	m := g.currentTurnMoves[len(g.currentTurnMoves)-1]
	g.currentTurnMoves = g.currentTurnMoves[:len(g.currentTurnMoves)-1]
	g.rollback(m.tokens)
	g.remainingMoves = append(g.remainingMoves, m.DiceUsed...)
	if g.currentTurn != nil {
		g.currentTurn.removeLastMove()
	}
	return true
}

// EndTurn abandons any unused dice, archives the turn record, and
// passes the turn to the opponent.
func (g *Game) EndTurn() error {
	if g.phase != PhaseInProgress {
		return fmt.Errorf("end turn in phase %s: %w", g.phase, ErrInvalidOperation)
	}
	if g.pendingDoubleFrom != NoColor {
		return fmt.Errorf("end turn with a double pending: %w", ErrInvalidOperation)
	}
	if g.currentTurn != nil {
		g.history = append(g.history, *g.currentTurn)
		g.currentTurn = nil
	}
	g.remainingMoves = nil
	g.currentTurnMoves = nil
	g.EndTurnTimer()
	g.currentPlayer = g.currentPlayer.Opponent()
	g.StartTurnTimer()
	return nil
}

// HasValidMoves reports whether the player on turn can play any of
// the remaining dice. A turn with no legal moves must be endable
// without further input; callers re-check after each ExecuteMove
// since consuming one die can make the other unusable.
func (g *Game) HasValidMoves() bool {
	return len(g.GetValidMoves(false)) > 0
}

// ForfeitGame concedes the game for the given color.
func (g *Game) ForfeitGame(c Color) error {
	if g.phase != PhaseInProgress {
		return fmt.Errorf("forfeit in phase %s: %w", g.phase, ErrInvalidOperation)
	}
	if c != White && c != Black {
		return fmt.Errorf("forfeit by %s: %w", c, ErrInvalidOperation)
	}
	// The resignation is recorded under the resigner, not the player on
	// turn; an open opposing turn record is archived first.
	if g.currentTurn != nil && g.currentTurn.Player != c {
		g.history = append(g.history, *g.currentTurn)
		g.currentTurn = nil
	}
	if g.currentTurn == nil {
		g.turnNumber++
		g.currentTurn = &TurnRecord{
			Number:    g.turnNumber,
			Player:    c,
			CubeValue: g.cube.Value(),
		}
	}
	g.currentTurn.Forfeited = true
	g.finishWith(c.Opponent(), WinNormal)
	return nil
}

// OfferDouble offers the cube from the player on turn. It fails if
// this is the Crawford game, if a roll is in progress, or if the
// cube rules forbid this player from doubling.
func (g *Game) OfferDouble() bool {
	if g.phase != PhaseInProgress || g.crawford {
		return false
	}
	if len(g.remainingMoves) > 0 || g.pendingDoubleFrom != NoColor {
		return false
	}
	if !g.cube.CanDouble(g.currentPlayer) {
		return false
	}
	g.pendingDoubleFrom = g.currentPlayer
	g.ensureTurn()
	g.currentTurn.CubeEvent = CubeDoubled
	return true
}

// AcceptDouble takes the pending double: the cube doubles and passes
// to the accepting side.
func (g *Game) AcceptDouble() bool {
	if g.pendingDoubleFrom == NoColor {
		return false
	}
	accepter := g.pendingDoubleFrom.Opponent()
	g.pendingDoubleFrom = NoColor
	g.cube.Take(accepter)
	g.currentTurn.CubeEvent = CubeTaken
	g.currentTurn.CubeValue = g.cube.Value()
	return true
}

// DeclineDouble drops the pending double: the offering side wins the
// game at the pre-double cube value.
func (g *Game) DeclineDouble() bool {
	if g.pendingDoubleFrom == NoColor {
		return false
	}
	offerer := g.pendingDoubleFrom
	g.pendingDoubleFrom = NoColor
	g.currentTurn.CubeEvent = CubeDropped
	g.finishWith(offerer, WinNormal)
	return true
}

// HasPendingDouble reports whether a cube offer awaits a response.
func (g *Game) HasPendingDouble() bool { return g.pendingDoubleFrom != NoColor }

// finishWith ends the game and freezes state.
func (g *Game) finishWith(winner Color, wt WinType) {
	g.phase = PhaseGameOver
	g.winner = winner
	g.winType = wt
	if g.currentTurn != nil {
		g.history = append(g.history, *g.currentTurn)
		g.currentTurn = nil
	}
	g.remainingMoves = nil
	g.EndTurnTimer()
}

// determineWinType classifies the win against the loser's position:
// normal if the loser has borne off at least one checker, backgammon
// if the loser still has a checker on the bar or in the winner's home
// board, gammon otherwise.
func (g *Game) determineWinType(winner Color) WinType {
	loser := g.players[winner.Opponent()]
	if loser.CheckersBornOff >= 1 {
		return WinNormal
	}
	if loser.CheckersOnBar > 0 {
		return WinBackgammon
	}
	lo, hi := homeRange(winner)
	for i := lo; i <= hi; i++ {
		p := g.board.point(i)
		if p.Count() > 0 && p.Color() == loser.Color {
			return WinBackgammon
		}
	}
	return WinGammon
}

// DetermineWinType reports how the game was won. It fails with
// ErrInvalidOperation while the game is still in progress.
func (g *Game) DetermineWinType() (WinType, error) {
	if g.phase != PhaseGameOver {
		return 0, fmt.Errorf("win type before game over: %w", ErrInvalidOperation)
	}
	return g.winType, nil
}

// GameResult returns the final outcome: win-type multiplier times the
// cube value. It fails with ErrInvalidOperation before the game ends.
func (g *Game) GameResult() (GameResult, error) {
	if g.phase != PhaseGameOver {
		return GameResult{}, fmt.Errorf("result before game over: %w", ErrInvalidOperation)
	}
	return GameResult{
		Winner:    g.winner,
		WinType:   g.winType,
		CubeValue: g.cube.Value(),
		Points:    g.winType.Multiplier() * g.cube.Value(),
	}, nil
}

// Time control hooks. The clock is a pure delta calculator; nothing
// here schedules.

// StartTurnTimer starts the current player's clock, if time control
// is active.
func (g *Game) StartTurnTimer() {
	if g.clock != nil && g.currentPlayer != NoColor {
		g.clock.StartTurn(colorSide(g.currentPlayer))
	}
}

// EndTurnTimer stops the current player's clock, deducting elapsed
// time beyond the grace delay from their reserve.
func (g *Game) EndTurnTimer() {
	if g.clock != nil && g.currentPlayer != NoColor {
		g.clock.EndTurn(colorSide(g.currentPlayer))
	}
}

// HasCurrentPlayerTimedOut reports whether the player on turn has
// exhausted their reserve.
func (g *Game) HasCurrentPlayerTimedOut() bool {
	if g.clock == nil || g.currentPlayer == NoColor {
		return false
	}
	return g.clock.TimedOut(colorSide(g.currentPlayer))
}

func colorSide(c Color) timecontrol.Side {
	if c == White {
		return timecontrol.SideWhite
	}
	return timecontrol.SideBlack
}
