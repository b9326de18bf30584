package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gammon/internal/storage/memory"
	"github.com/yourusername/gammon/internal/testutil"
	"github.com/yourusername/gammon/internal/timecontrol"
)

func newWSServer(t *testing.T) (*Server, http.Handler, *httptest.Server) {
	t.Helper()
	srv := NewServer(memory.New(), testutil.NopLogger(), timecontrol.Config{}, DefaultServerConfig(), "test")
	router := srv.Router()
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return srv, router, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestWebSocketSubscribeAndPing(t *testing.T) {
	_, router, ts := newWSServer(t)
	m := createMatch(t, router)

	conn := dialWS(t, ts)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "ping", ID: "p1"}))
	var pong WSResponse
	require.NoError(t, conn.ReadJSON(&pong))
	require.Equal(t, "pong", pong.Type)
	require.Equal(t, "p1", pong.ID)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "subscribe", ID: "s1", MatchID: m.Match.ID}))
	var resp WSResponse
	require.NoError(t, conn.ReadJSON(&resp))
	require.Equal(t, "result", resp.Type)
	require.Equal(t, "s1", resp.ID)
}

func TestWebSocketRequiresSubscription(t *testing.T) {
	_, _, ts := newWSServer(t)

	conn := dialWS(t, ts)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "roll", ID: "r1"}))
	var resp WSResponse
	require.NoError(t, conn.ReadJSON(&resp))
	require.Equal(t, "error", resp.Type)
}

// A subscriber dropping its connection while the session is
// publishing must tear down cleanly; the event forwarder used to race
// the teardown and crash the server.
func TestWebSocketDisconnectDuringPublish(t *testing.T) {
	srv, router, ts := newWSServer(t)
	m := createMatch(t, router)

	sess, ok := srv.Handlers().registry.Get(m.Match.ID)
	require.True(t, ok)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				sess.publish(Event{Type: "state", MatchID: m.Match.ID})
			}
		}
	}()

	for i := 0; i < 50; i++ {
		conn := dialWS(t, ts)
		require.NoError(t, conn.WriteJSON(WSMessage{Type: "subscribe", ID: "s", MatchID: m.Match.ID}))
		// Wait until the subscription is live so events are in flight
		// when the connection drops.
		var resp WSResponse
		require.NoError(t, conn.ReadJSON(&resp))
		conn.Close()
	}
	close(stop)
	wg.Wait()

	// The server survived the churn.
	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
