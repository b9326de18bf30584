package api

import (
	"sync"

	"github.com/yourusername/gammon/pkg/game"
	"github.com/yourusername/gammon/pkg/match"
)

// Event is pushed to WebSocket and SSE subscribers whenever a
// session's state changes.
type Event struct {
	Type    string             `json:"type"` // "state", "game_over", "match_over"
	MatchID string             `json:"match_id"`
	State   *GameStateResponse `json:"state,omitempty"`
	Match   *match.Match       `json:"match,omitempty"`
}

// Session is one live match with its current game. All game access
// goes through Do so concurrent requests serialize on the session.
type Session struct {
	mu    sync.Mutex
	match *match.Match
	game  *game.Game

	subMu sync.Mutex
	subs  map[chan Event]struct{}
}

func newSession(m *match.Match, g *game.Game) *Session {
	return &Session{
		match: m,
		game:  g,
		subs:  make(map[chan Event]struct{}),
	}
}

// Do runs fn with exclusive access to the session's match and game.
func (s *Session) Do(fn func(m *match.Match, g *game.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.match, s.game)
}

// swapGame replaces the session's game with one built from its match,
// under the session lock.
func (s *Session) swapGame(fn func(m *match.Match) (*game.Game, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := fn(s.match)
	if err != nil {
		return err
	}
	s.game = g
	return nil
}

// Subscribe registers a listener for session events. Slow listeners
// miss events rather than block the game.
func (s *Session) Subscribe() chan Event {
	ch := make(chan Event, 16)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (s *Session) Unsubscribe(ch chan Event) {
	s.subMu.Lock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
	s.subMu.Unlock()
}

func (s *Session) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Registry holds the live sessions by match id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session under its match id.
func (r *Registry) Add(m *match.Match, g *game.Game) *Session {
	s := newSession(m, g)
	r.mu.Lock()
	r.sessions[m.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session for a match id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove drops a session, closing all its subscriptions.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	s.subMu.Lock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	s.subMu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
