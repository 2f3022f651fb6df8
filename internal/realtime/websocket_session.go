package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	outboxSize     = 32
)

// Command actions a viewer may send over its socket.
const (
	ActionJoin  = "join"
	ActionLeave = "leave"
)

type Command struct {
	Action string `json:"action"`
}

// WebsocketSession adapts a gorilla connection to Session. Send only queues;
// WritePump owns all writes to the connection.
type WebsocketSession struct {
	id     string
	conn   *websocket.Conn
	outbox chan []byte
	closed chan struct{}
	once   sync.Once
	log    *zap.SugaredLogger
}

func NewWebsocketSession(conn *websocket.Conn, log *zap.SugaredLogger) *WebsocketSession {
	id := uuid.NewString()
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &WebsocketSession{
		id:     id,
		conn:   conn,
		outbox: make(chan []byte, outboxSize),
		closed: make(chan struct{}),
		log:    log.With("session_id", id),
	}
}

func (s *WebsocketSession) ID() string { return s.id }

func (s *WebsocketSession) Send(ctx context.Context, payload []byte) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}

	select {
	case s.outbox <- payload:
		return nil
	case <-s.closed:
		return ErrSessionClosed
	case <-ctx.Done():
		return ErrDeliveryTimeout
	}
}

// Close is safe to call more than once.
func (s *WebsocketSession) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		err = s.conn.Close()
	})
	return err
}

// Done is closed once the session has been closed.
func (s *WebsocketSession) Done() <-chan struct{} { return s.closed }

// WritePump drains the outbox to the connection and keeps it alive with pings.
func (s *WebsocketSession) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case payload := <-s.outbox:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.log.Debugw("Write failed", "error", err)
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closed:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// ReadPump reads viewer commands until the connection drops. Unknown frames
// are ignored.
func (s *WebsocketSession) ReadPump(onCommand func(Command)) {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warnw("Unexpected socket close", "error", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			s.log.Debugw("Ignoring malformed frame", "error", err)
			continue
		}
		if cmd.Action == ActionJoin || cmd.Action == ActionLeave {
			onCommand(cmd)
		}
	}
}
