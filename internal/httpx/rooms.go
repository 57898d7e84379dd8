package httpx

import (
	"log"
	"net/http"
	"strings"

	"quoridor/internal/game"
	"quoridor/internal/room"
)

// handleRoom serves /api/room:
//
//	POST               create a room
//	POST ?action=join  join a room
//	GET  ?id=CODE      read a room
//	PUT  ?id=CODE      submit a move or wall
func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if r.URL.Query().Get("action") == "join" {
			s.handleJoin(w, r)
			return
		}
		s.handleCreate(w, r)
	case http.MethodGet:
		s.handleGet(w, r)
	case http.MethodPut:
		s.handleAct(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type createBody struct {
	Name string `json:"name"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body createBody
	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		if !decodeBody(w, r, &body) {
			return
		}
	}
	seat, err := s.rooms.Create(r.Context(), body.Name)
	if err != nil {
		s.writeRoomError(w, r, err)
		return
	}
	writeStatusJSON(w, http.StatusCreated, seatResponse{
		roomResponse: newRoomResponse(seat.Record),
		PlayerID:     seat.PlayerID,
		Side:         seat.Side,
	})
}

type joinBody struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var body joinBody
	if !decodeBody(w, r, &body) {
		return
	}
	seat, err := s.rooms.Join(r.Context(), body.RoomID, body.Name)
	if err != nil {
		s.writeRoomError(w, r, err)
		return
	}
	writeJSON(w, seatResponse{
		roomResponse: newRoomResponse(seat.Record),
		PlayerID:     seat.PlayerID,
		Side:         seat.Side,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.rooms.Get(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		s.writeRoomError(w, r, err)
		return
	}
	writeJSON(w, newRoomResponse(rec))
}

// actionBody is the wire form of a turn. The acting side is never read
// from the client; it comes from the seat behind PlayerID.
type actionBody struct {
	Type     string         `json:"type"`
	PlayerID string         `json:"playerId"`
	To       *game.Position `json:"to,omitempty"`
	Wall     *game.Wall     `json:"wall,omitempty"`
}

func (b actionBody) action() (game.Action, bool) {
	switch game.ActionKind(strings.ToLower(strings.TrimSpace(b.Type))) {
	case game.ActionMove:
		return game.Action{Type: game.ActionMove, To: b.To}, true
	case game.ActionWall:
		return game.Action{Type: game.ActionWall, Wall: b.Wall}, true
	default:
		return game.Action{}, false
	}
}

func (s *Server) handleAct(w http.ResponseWriter, r *http.Request) {
	var body actionBody
	if !decodeBody(w, r, &body) {
		return
	}
	action, ok := body.action()
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid action type")
		return
	}
	if strings.TrimSpace(body.PlayerID) == "" {
		writeError(w, http.StatusBadRequest, "missing playerId")
		return
	}

	out, err := s.rooms.Act(r.Context(), r.URL.Query().Get("id"), body.PlayerID, action)
	if err != nil {
		s.writeRoomError(w, r, err)
		return
	}
	resp := s.actResponse(r, out)
	if !resp.Accepted {
		writeStatusJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) actResponse(r *http.Request, out room.Outcome) actResponse {
	resp := actResponse{
		roomResponse: newRoomResponse(out.Record),
		Accepted:     out.Result.Accepted(),
	}
	if !resp.Accepted {
		resp.Reason, resp.Error = rejectionMessage(r, out.Result.Err)
	}
	return resp
}

func (s *Server) writeRoomError(w http.ResponseWriter, r *http.Request, err error) {
	status, key, known := roomErrorStatus(err)
	if !known {
		if r.Context().Err() == nil {
			log.Printf("room request %s %s: %v", r.Method, r.URL.Path, err)
		}
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, localize(r, key))
}
