package room

import (
	"errors"

	"quoridor/internal/storage"
)

var (
	// ErrNotFound is returned for unknown and expired rooms.
	ErrNotFound = storage.ErrNotFound
	// ErrRoomFull is returned when a second guest tries to join.
	ErrRoomFull = errors.New("room is full")
	// ErrUnknownPlayer is returned when an identity token holds no seat.
	ErrUnknownPlayer = errors.New("player is not seated in this room")
	// ErrConflict is returned when concurrent writers kept winning the
	// version race for every retry.
	ErrConflict = errors.New("room changed too often, try again")
	// ErrInvalidCode is returned for malformed room codes.
	ErrInvalidCode = errors.New("invalid room code")
)
