package api

import (
	"net/http"
	"net/url"
	"strings"

	"infinite-experiment/flightboard/internal/logging"
	"infinite-experiment/flightboard/internal/realtime"

	"github.com/gorilla/websocket"
)

// NewUpgrader accepts same-origin requests, requests without an Origin
// header, and any origin in allowed ("*" allows all).
func NewUpgrader(allowed []string) *websocket.Upgrader {
	allowAll := false
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[strings.TrimRight(strings.ToLower(o), "/")] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowAll {
				return true
			}
			if set[strings.ToLower(origin)] {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		},
	}
}

// BoardSocketHandler handles GET /ws/flights. The connection joins the board
// on connect and leaves it when the socket drops.
func BoardSocketHandler(hub SessionHub, upgrader *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error
			logging.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		session := realtime.NewWebsocketSession(conn, logging.Named("board_socket"))
		logging.Debug("Websocket connected", "session_id", session.ID(), "remote", r.RemoteAddr)
		hub.OnSessionJoin(session)
		defer hub.OnSessionLeave(session.ID())

		go session.WritePump()
		session.ReadPump(func(cmd realtime.Command) {
			switch cmd.Action {
			case realtime.ActionJoin:
				hub.OnSessionJoin(session)
			case realtime.ActionLeave:
				hub.OnSessionLeave(session.ID())
			}
		})
	}
}
