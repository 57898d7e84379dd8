package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"quoridor/internal/platform/timeouts"
)

// handleStream serves Server-Sent Events for one room. Every version change
// is sent as a "state" event; a "closed" event marks an expired room.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	applyAPISecurityHeaders(w.Header())
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	updates, err := s.rooms.Watch(r.Context(), r.URL.Query().Get("roomId"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		s.writeRoomError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return
	}

	for rec := range updates {
		if err := writeSSE(w, rc, "", stateEvent(rec)); err != nil {
			return
		}
	}
	if r.Context().Err() == nil {
		_ = writeSSE(w, rc, "closed", streamEvent{Type: "closed"})
	}
}

func writeSSE(w http.ResponseWriter, rc *http.ResponseController, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = rc.SetWriteDeadline(time.Now().Add(timeouts.StreamWrite))
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return rc.Flush()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin admits non-browser clients (no Origin) and pages served from
// the same host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// handleWebSocket pushes the same envelopes as handleStream and accepts
// actions as text frames in the PUT /api/room body shape. Each action gets
// a "result" envelope; accepted ones also show up as the next "state".
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("roomId")
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, err := s.rooms.Watch(ctx, code)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		s.writeRoomError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxJSONBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(timeouts.WebSocketPong))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeouts.WebSocketPong))
	})

	replies := make(chan streamEvent, 4)
	go s.readActions(ctx, cancel, conn, r, code, replies)

	ticker := time.NewTicker(timeouts.WebSocketPing)
	defer ticker.Stop()

	for {
		var (
			msg  streamEvent
			ping bool
		)
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-updates:
			if !ok {
				_ = writeWS(conn, streamEvent{Type: "closed"})
				return
			}
			msg = stateEvent(rec)
		case msg = <-replies:
		case <-ticker.C:
			ping = true
		}

		if ping {
			_ = conn.SetWriteDeadline(time.Now().Add(timeouts.StreamWrite))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}
		if err := writeWS(conn, msg); err != nil {
			return
		}
	}
}

// readActions is the connection's only reader. It stops the connection by
// cancelling ctx when the client goes away.
func (s *Server) readActions(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, r *http.Request, code string, replies chan<- streamEvent) {
	defer cancel()
	for {
		var body actionBody
		if err := conn.ReadJSON(&body); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read %s: %v", code, err)
			}
			return
		}

		reply := s.wsAct(ctx, r, code, body)
		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) wsAct(ctx context.Context, r *http.Request, code string, body actionBody) streamEvent {
	action, ok := body.action()
	if !ok {
		return streamEvent{Type: "error", Error: "invalid action type"}
	}
	out, err := s.rooms.Act(ctx, code, body.PlayerID, action)
	if err != nil {
		if _, key, known := roomErrorStatus(err); known {
			return streamEvent{Type: "error", Error: localize(r, key)}
		}
		log.Printf("websocket act %s: %v", code, err)
		return streamEvent{Type: "error", Error: "internal error"}
	}
	resp := s.actResponse(r, out)
	accepted := resp.Accepted
	return streamEvent{
		Type:         "result",
		roomResponse: &resp.roomResponse,
		Accepted:     &accepted,
		Reason:       resp.Reason,
		Error:        resp.Error,
	}
}

func writeWS(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(timeouts.StreamWrite))
	return conn.WriteJSON(v)
}
