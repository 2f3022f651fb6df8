package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// socketServer joins every connection to r and records viewer commands.
func socketServer(t *testing.T, r *Registry, commands chan<- Command) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		s := NewWebsocketSession(conn, nil)
		r.Join(s)
		defer r.Leave(s.ID())

		go s.WritePump()
		s.ReadPump(func(cmd Command) { commands <- cmd })
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestWebsocketSession_DeliversAndReadsCommands(t *testing.T) {
	r := NewRegistry(nil, nil)
	commands := make(chan Command, 4)
	srv := socketServer(t, r, commands)

	client := dial(t, srv)
	defer client.Close()
	require.Eventually(t, func() bool { return r.Count() == 1 }, time.Second, 5*time.Millisecond)

	payload, err := Encode(Deleted{ID: "f1"})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Snapshot()[0].Send(ctx, payload))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"deleted","id":"f1"}`, string(msg))

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"action":"leave"}`)))
	select {
	case cmd := <-commands:
		assert.Equal(t, ActionLeave, cmd.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("command not received")
	}
}

func TestWebsocketSession_DisconnectLeaves(t *testing.T) {
	r := NewRegistry(nil, nil)
	srv := socketServer(t, r, make(chan Command, 1))

	client := dial(t, srv)
	require.Eventually(t, func() bool { return r.Count() == 1 }, time.Second, 5*time.Millisecond)
	s := r.Snapshot()[0]

	_ = client.Close()
	require.Eventually(t, func() bool { return r.Count() == 0 }, 2*time.Second, 5*time.Millisecond)

	err := s.Send(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestWebsocketSession_SendTimesOutWhenOutboxFull(t *testing.T) {
	s := &WebsocketSession{
		id:     "s",
		outbox: make(chan []byte, 1),
		closed: make(chan struct{}),
	}
	s.outbox <- []byte("pending")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Send(ctx, []byte("next")), ErrDeliveryTimeout)
}
