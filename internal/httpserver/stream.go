// internal/httpserver/stream.go
//
// Websocket stream for a live game: GET /game/{id}/stream.
// Responsibilities:
//   - Push every engine snapshot to the client as {"type":"snapshot",...}.
//   - Accept {"type":"select","index":n} and {"type":"restart"} commands.
//   - Keep the connection alive with pings; drop it when the game ends.
//
// Notes:
//   - Only writePump writes to the connection; readPump hands replies to it.
//   - Snapshot delivery is latest-wins: a slow client skips stale states.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/acciojob/memory-game-faizvk/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 512
)

// streamIn is a client command.
type streamIn struct {
	Type  string `json:"type"` // select|restart
	Index *int   `json:"index,omitempty"`
}

// streamOut is a server message.
type streamOut struct {
	Type     string         `json:"type"` // snapshot|ack|error
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Accepted *bool          `json:"accepted,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == s.cfg.ClientOrigin
		},
	}
}

// handleStream upgrades the request and runs the pumps until either side quits.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	ws, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		log.Debug().Err(err).Msg("ws upgrade")
		return
	}

	snaps, cancel := e.Subscribe()
	replies := make(chan streamOut, 8)
	done := make(chan struct{})

	go func() {
		defer close(done)
		writePump(ws, snaps, replies)
	}()
	s.readPump(ws, e, replies)

	cancel()
	<-done
	log.Debug().Str("gameId", e.ID()).Msg("stream closed")
}

// readPump applies client commands until the connection fails.
func (s *Server) readPump(ws *websocket.Conn, e *game.Engine, replies chan<- streamOut) {
	ws.SetReadLimit(maxMsgSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in streamIn
		if err := ws.ReadJSON(&in); err != nil {
			return
		}
		var out streamOut
		switch in.Type {
		case "select":
			if in.Index == nil {
				out = streamOut{Type: "error", Error: "missing_index"}
				break
			}
			accepted := e.SelectTile(*in.Index)
			out = streamOut{Type: "ack", Accepted: &accepted}
		case "restart":
			if m := s.metaFor(e.ID()); m != nil && m.Daily {
				out = streamOut{Type: "error", Error: "daily_restart_not_allowed"}
				break
			}
			if err := e.Restart(); err != nil {
				out = streamOut{Type: "error", Error: "restart_failed"}
				break
			}
			accepted := true
			out = streamOut{Type: "ack", Accepted: &accepted}
		default:
			out = streamOut{Type: "error", Error: "unknown_type"}
		}
		select {
		case replies <- out:
		default: // client is not reading; drop the reply
		}
	}
}

// writePump owns all writes: snapshots, replies and pings. It returns when the
// snapshot stream ends (unsubscribe or engine closed) or a write fails.
func writePump(ws *websocket.Conn, snaps <-chan game.Snapshot, replies <-chan streamOut) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case snap, ok := <-snaps:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game closed"))
				return
			}
			if err := ws.WriteJSON(streamOut{Type: "snapshot", Snapshot: &snap}); err != nil {
				return
			}
		case out := <-replies:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(out); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
