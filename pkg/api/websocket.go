package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/yourusername/gammon/pkg/game"
	"github.com/yourusername/gammon/pkg/match"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a client-to-server WebSocket message.
type WSMessage struct {
	Type    string                 `json:"type"`     // "subscribe", "state", "opening_roll", "roll", "move", "end_turn", "undo", "cube", "ping"
	ID      string                 `json:"id"`       // Request ID for correlating responses
	MatchID string                 `json:"match_id"` // Target match (required for "subscribe")
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// WSResponse is a server-to-client WebSocket message.
type WSResponse struct {
	Type    string      `json:"type"`              // "result", "event", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse

	session *Session
	events  chan Event
	done    chan struct{}
}

// WebSocket handles WebSocket connections for playing and observing a
// match in real time.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &WSClient{
		conn:     conn,
		handlers: h,
		sendChan: make(chan WSResponse, 256),
		done:     make(chan struct{}),
	}
	go client.writePump()
	client.readPump()
}

// writePump drains sendChan onto the socket until the connection dies
// or done closes. sendChan is never closed: a forwarder racing the
// teardown at worst queues a message nobody reads.
func (c *WSClient) writePump() {
	defer c.conn.Close()
	for {
		select {
		case msg := <-c.sendChan:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() {
		close(c.done)
		if c.session != nil {
			c.session.Unsubscribe(c.events)
		}
		c.conn.Close()
	}()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

// forwardEvents relays one subscription's events to the socket until
// the subscription closes or the client goes away.
func (c *WSClient) forwardEvents(events chan Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			select {
			case c.sendChan <- WSResponse{Type: "event", Payload: ev}:
			case <-c.done:
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *WSClient) fail(id, msg string) {
	c.sendChan <- WSResponse{Type: "error", ID: id, Error: msg}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	if msg.Type == "ping" {
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
		return
	}
	if msg.Type == "subscribe" {
		c.handleSubscribe(msg)
		return
	}
	if c.session == nil {
		c.fail(msg.ID, "subscribe to a match first")
		return
	}

	switch msg.Type {
	case "state":
		_ = c.session.Do(func(m *match.Match, g *game.Game) error {
			c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: stateResponse(g)}
			return nil
		})
	case "opening_roll":
		c.handleOpeningRoll(msg)
	case "roll":
		c.handleRoll(msg)
	case "move":
		c.handleMove(msg)
	case "end_turn":
		c.handleEndTurn(msg)
	case "undo":
		c.handleUndo(msg)
	case "cube":
		c.handleCube(msg)
	default:
		c.fail(msg.ID, "unknown message type")
	}
}

// decodePayload maps the loosely typed JSON payload onto a request
// struct.
func decodePayload(payload map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(payload)
}

func (c *WSClient) handleSubscribe(msg WSMessage) {
	sess, ok := c.handlers.registry.Get(msg.MatchID)
	if !ok {
		c.fail(msg.ID, "no live match with id "+msg.MatchID)
		return
	}
	if c.session != nil {
		c.session.Unsubscribe(c.events)
	}
	c.session = sess
	c.events = sess.Subscribe()
	go c.forwardEvents(c.events)

	_ = sess.Do(func(m *match.Match, g *game.Game) error {
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: MatchResponse{Match: m, Game: stateResponse(g)}}
		return nil
	})
}

func (c *WSClient) handleOpeningRoll(msg WSMessage) {
	var req RollRequest
	if err := decodePayload(msg.Payload, &req); err != nil {
		c.fail(msg.ID, "invalid payload")
		return
	}
	col, ok := parseColor(req.Player)
	if !ok {
		c.fail(msg.ID, "player must be W or B")
		return
	}
	err := c.session.Do(func(m *match.Match, g *game.Game) error {
		die, err := g.RollOpening(col)
		if err != nil {
			return err
		}
		state := stateResponse(g)
		c.session.publish(Event{Type: "state", MatchID: m.ID, State: state})
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: RollResponse{Die1: die, State: state}}
		return nil
	})
	if err != nil {
		c.fail(msg.ID, err.Error())
	}
}

func (c *WSClient) handleRoll(msg WSMessage) {
	err := c.session.Do(func(m *match.Match, g *game.Game) error {
		d1, d2, err := g.RollDice()
		if err != nil {
			return err
		}
		state := stateResponse(g)
		c.session.publish(Event{Type: "state", MatchID: m.ID, State: state})
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: RollResponse{Die1: d1, Die2: d2, State: state}}
		return nil
	})
	if err != nil {
		c.fail(msg.ID, err.Error())
	}
}

func (c *WSClient) handleMove(msg WSMessage) {
	var req MoveRequest
	if err := decodePayload(msg.Payload, &req); err != nil || len(req.DiceUsed) == 0 {
		c.fail(msg.ID, "invalid payload")
		return
	}
	var mv game.Move
	if len(req.DiceUsed) == 1 {
		mv = game.NewMove(req.From, req.To, req.DiceUsed[0])
	} else {
		mv = game.NewCombinedMove(req.From, req.To, req.DiceUsed, nil)
	}
	_ = c.session.Do(func(m *match.Match, g *game.Game) error {
		if !g.ExecuteMove(mv) {
			c.fail(msg.ID, "move is not legal")
			return nil
		}
		c.handlers.afterPlayWS(c.session, m, g)
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: stateResponse(g)}
		return nil
	})
}

func (c *WSClient) handleEndTurn(msg WSMessage) {
	err := c.session.Do(func(m *match.Match, g *game.Game) error {
		if err := g.EndTurn(); err != nil {
			return err
		}
		state := stateResponse(g)
		c.session.publish(Event{Type: "state", MatchID: m.ID, State: state})
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: state}
		return nil
	})
	if err != nil {
		c.fail(msg.ID, err.Error())
	}
}

func (c *WSClient) handleUndo(msg WSMessage) {
	_ = c.session.Do(func(m *match.Match, g *game.Game) error {
		if !g.UndoLastMove() {
			c.fail(msg.ID, "nothing to undo")
			return nil
		}
		state := stateResponse(g)
		c.session.publish(Event{Type: "state", MatchID: m.ID, State: state})
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: state}
		return nil
	})
}

func (c *WSClient) handleCube(msg WSMessage) {
	var req CubeRequest
	if err := decodePayload(msg.Payload, &req); err != nil {
		c.fail(msg.ID, "invalid payload")
		return
	}
	_ = c.session.Do(func(m *match.Match, g *game.Game) error {
		var done bool
		switch req.Action {
		case "offer":
			done = g.OfferDouble()
		case "accept":
			done = g.AcceptDouble()
		case "decline":
			done = g.DeclineDouble()
		default:
			c.fail(msg.ID, "action must be offer, accept or decline")
			return nil
		}
		if !done {
			c.fail(msg.ID, "cube action not available")
			return nil
		}
		c.handlers.afterPlayWS(c.session, m, g)
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: stateResponse(g)}
		return nil
	})
}
