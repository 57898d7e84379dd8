// Package storage defines persistence contracts for online rooms.
package storage

import (
	"context"
	"errors"
	"time"

	"quoridor/internal/game"
)

var (
	// ErrNotFound indicates a requested room is missing.
	ErrNotFound = errors.New("room not found")
	// ErrAlreadyExists indicates a room code is already taken.
	ErrAlreadyExists = errors.New("room already exists")
	// ErrVersionConflict indicates the stored room moved past the version the
	// caller read; the caller must reload and retry.
	ErrVersionConflict = errors.New("room version conflict")
)

// RoomRecord is one persisted room: the latest game snapshot plus the log
// of accepted actions that produced it.
type RoomRecord struct {
	Code      string
	State     game.State
	Log       []game.Action
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the record is past its time to live at now.
func (r RoomRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Clone returns a copy sharing no slices with r.
func (r RoomRecord) Clone() RoomRecord {
	out := r
	out.State = r.State.Clone()
	out.Log = make([]game.Action, len(r.Log))
	copy(out.Log, r.Log)
	return out
}

// RoomStore persists rooms with optimistic concurrency on Version.
type RoomStore interface {
	// CreateRoom inserts a new room at version 1.
	CreateRoom(ctx context.Context, rec RoomRecord) error
	// GetRoom returns the room as stored, expired or not.
	GetRoom(ctx context.Context, code string) (RoomRecord, error)
	// UpdateRoom writes rec only if the stored version still equals
	// rec.Version and returns the new version.
	UpdateRoom(ctx context.Context, rec RoomRecord) (int64, error)
	// DeleteExpired removes rooms whose ExpiresAt is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
