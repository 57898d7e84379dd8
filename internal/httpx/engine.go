package httpx

import (
	"net/http"

	"quoridor/internal/game"
)

type movesBody struct {
	Game game.State `json:"game"`
	Side game.Side  `json:"side"`
}

// handleEngineMoves lists the destinations open to side in the posted state.
func (s *Server) handleEngineMoves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body movesBody
	if !decodeBody(w, r, &body) {
		return
	}
	moves := game.LegalMoves(body.Game, body.Side)
	if moves == nil {
		moves = []game.Position{}
	}
	writeJSON(w, map[string]any{"moves": moves})
}

type applyBody struct {
	Game   game.State  `json:"game"`
	Action game.Action `json:"action"`
}

type applyResponse struct {
	Game     game.State  `json:"game"`
	Accepted bool        `json:"accepted"`
	Reason   game.Reason `json:"reason,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// handleEngineApply runs one action against the posted state without
// touching any room.
func (s *Server) handleEngineApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body applyBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Game.Walls == nil {
		body.Game.Walls = []game.Wall{}
	}

	res := game.Apply(body.Game, body.Action)
	resp := applyResponse{Game: res.State, Accepted: res.Accepted()}
	if !resp.Accepted {
		resp.Reason, resp.Error = rejectionMessage(r, res.Err)
		writeStatusJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, resp)
}
