// Package memory provides an in-process room store for tests and
// single-instance deployments.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"quoridor/internal/storage"
)

// Store keeps rooms in a mutex-guarded map. Records are copied on the way
// in and out so callers never share slices with the store.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]storage.RoomRecord
}

func New() *Store {
	return &Store{rooms: make(map[string]storage.RoomRecord)}
}

func (s *Store) CreateRoom(ctx context.Context, rec storage.RoomRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	code := strings.TrimSpace(rec.Code)
	if code == "" {
		return fmt.Errorf("room code is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; ok {
		return storage.ErrAlreadyExists
	}
	rec = rec.Clone()
	rec.Code = code
	rec.Version = 1
	s.rooms[code] = rec
	return nil
}

func (s *Store) GetRoom(ctx context.Context, code string) (storage.RoomRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RoomRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rooms[strings.TrimSpace(code)]
	if !ok {
		return storage.RoomRecord{}, storage.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *Store) UpdateRoom(ctx context.Context, rec storage.RoomRecord) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rooms[rec.Code]
	if !ok {
		return 0, storage.ErrNotFound
	}
	if cur.Version != rec.Version {
		return 0, storage.ErrVersionConflict
	}
	next := rec.Clone()
	next.CreatedAt = cur.CreatedAt
	next.Version = cur.Version + 1
	s.rooms[rec.Code] = next
	return next.Version, nil
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for code, rec := range s.rooms {
		if rec.Expired(now) {
			delete(s.rooms, code)
			n++
		}
	}
	return n, nil
}

var _ storage.RoomStore = (*Store)(nil)
