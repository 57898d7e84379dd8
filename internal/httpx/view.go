package httpx

import (
	"quoridor/internal/game"
	"quoridor/internal/room"
)

// playerView is a seat as other clients see it; identity tokens never leave
// the server except in the create/join reply to their owner.
type playerView struct {
	Name   string        `json:"name"`
	Pos    game.Position `json:"pos"`
	Walls  int           `json:"walls"`
	Seated bool          `json:"seated"`
}

type gameView struct {
	Status  game.Status `json:"status"`
	Turn    game.Side   `json:"turn"`
	Winner  *game.Side  `json:"winner"`
	Players struct {
		First  playerView `json:"first"`
		Second playerView `json:"second"`
	} `json:"players"`
	Walls []game.Wall `json:"walls"`
}

func newPlayerView(ps game.PlayerState) playerView {
	return playerView{Name: ps.Name, Pos: ps.Pos, Walls: ps.Walls, Seated: ps.ID != ""}
}

func newGameView(s game.State) gameView {
	v := gameView{
		Status: s.Status,
		Turn:   s.Turn,
		Winner: s.Winner,
		Walls:  s.Walls,
	}
	if v.Walls == nil {
		v.Walls = []game.Wall{}
	}
	v.Players.First = newPlayerView(s.Players.First)
	v.Players.Second = newPlayerView(s.Players.Second)
	return v
}

type roomResponse struct {
	RoomID  string   `json:"roomId"`
	Version int64    `json:"version"`
	Moves   int      `json:"moves"`
	Game    gameView `json:"game"`
}

func newRoomResponse(rec room.Record) roomResponse {
	return roomResponse{
		RoomID:  rec.Code,
		Version: rec.Version,
		Moves:   len(rec.Log),
		Game:    newGameView(rec.State),
	}
}

type seatResponse struct {
	roomResponse
	PlayerID string    `json:"playerId"`
	Side     game.Side `json:"side"`
}

type actResponse struct {
	roomResponse
	Accepted bool        `json:"accepted"`
	Reason   game.Reason `json:"reason,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// streamEvent is the envelope pushed over SSE and websocket connections.
type streamEvent struct {
	Type string `json:"type"`
	*roomResponse
	Accepted *bool       `json:"accepted,omitempty"`
	Reason   game.Reason `json:"reason,omitempty"`
	Error    string      `json:"error,omitempty"`
}

func stateEvent(rec room.Record) streamEvent {
	resp := newRoomResponse(rec)
	return streamEvent{Type: "state", roomResponse: &resp}
}
