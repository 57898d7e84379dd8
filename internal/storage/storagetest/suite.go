// Package storagetest holds behaviour checks every storage.RoomStore must pass.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoridor/internal/game"
	"quoridor/internal/storage"
)

// RunRoomStore exercises the RoomStore contract against stores built by open.
// open is called once per subtest.
func RunRoomStore(t *testing.T, open func(t *testing.T) storage.RoomStore) {
	t.Helper()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	newRecord := func(code string) storage.RoomRecord {
		return storage.RoomRecord{
			Code:      code,
			State:     game.NewState("host-1", "Ana", "", "", game.Waiting),
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(30 * time.Minute),
		}
	}

	t.Run("create and get", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		require.NoError(t, store.CreateRoom(ctx, newRecord("ABCD23")))

		got, err := store.GetRoom(ctx, "ABCD23")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Version)
		assert.Equal(t, "Ana", got.State.Players.First.Name)
		assert.Equal(t, game.Waiting, got.State.Status)
		assert.True(t, got.ExpiresAt.Equal(now.Add(30*time.Minute)))
		assert.Empty(t, got.Log)
	})

	t.Run("duplicate code", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		require.NoError(t, store.CreateRoom(ctx, newRecord("DUPE22")))
		assert.ErrorIs(t, store.CreateRoom(ctx, newRecord("DUPE22")), storage.ErrAlreadyExists)
	})

	t.Run("missing room", func(t *testing.T) {
		store := open(t)
		_, err := store.GetRoom(context.Background(), "NOPE99")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = store.UpdateRoom(context.Background(), storage.RoomRecord{Code: "NOPE99", Version: 1})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("update bumps version and keeps log", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		require.NoError(t, store.CreateRoom(ctx, newRecord("MOVE22")))

		rec, err := store.GetRoom(ctx, "MOVE22")
		require.NoError(t, err)
		rec.State.Status = game.Playing
		rec.State.Players.Second.ID = "guest-1"
		res := game.ApplyMove(rec.State, game.First, game.Position{Row: 1, Col: 4})
		require.NoError(t, res.Err)
		rec.State = res.State
		rec.Log = append(rec.Log, game.MoveAction(game.First, game.Position{Row: 1, Col: 4}))
		rec.UpdatedAt = now.Add(time.Minute)

		version, err := store.UpdateRoom(ctx, rec)
		require.NoError(t, err)
		assert.Equal(t, int64(2), version)

		got, err := store.GetRoom(ctx, "MOVE22")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
		assert.True(t, got.State.Equal(res.State))
		require.Len(t, got.Log, 1)
		assert.Equal(t, game.ActionMove, got.Log[0].Type)
		assert.Equal(t, game.Position{Row: 1, Col: 4}, *got.Log[0].To)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		require.NoError(t, store.CreateRoom(ctx, newRecord("RACE22")))

		first, err := store.GetRoom(ctx, "RACE22")
		require.NoError(t, err)
		second := first.Clone()

		_, err = store.UpdateRoom(ctx, first)
		require.NoError(t, err)
		_, err = store.UpdateRoom(ctx, second)
		assert.ErrorIs(t, err, storage.ErrVersionConflict)
	})

	t.Run("concurrent writers see exactly one winner per version", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		require.NoError(t, store.CreateRoom(ctx, newRecord("MANY22")))
		base, err := store.GetRoom(ctx, "MANY22")
		require.NoError(t, err)

		const writers = 16
		errs := make(chan error, writers)
		var wg sync.WaitGroup
		for range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.UpdateRoom(ctx, base.Clone())
				if err == nil {
					_, err = store.GetRoom(ctx, "MANY22")
				}
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		wins := 0
		for err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, storage.ErrVersionConflict)
		}
		assert.Equal(t, 1, wins)

		got, err := store.GetRoom(ctx, "MANY22")
		require.NoError(t, err)
		assert.Equal(t, base.Version+1, got.Version)
	})

	t.Run("mid-game snapshot round trips", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()

		state := game.NewState("host-1", "Ana", "guest-1", "Bia", game.Playing)
		log := []game.Action{
			game.MoveAction(game.First, game.Position{Row: 1, Col: 4}),
			game.WallAction(game.Second, game.Wall{Row: 3, Col: 3, Dir: game.Horizontal}),
			game.WallAction(game.First, game.Wall{Row: 5, Col: 5, Dir: game.Vertical}),
			game.MoveAction(game.Second, game.Position{Row: 7, Col: 4}),
			game.WallAction(game.First, game.Wall{Row: 6, Col: 0, Dir: game.Horizontal}),
		}
		for _, a := range log {
			res := game.Apply(state, a)
			require.NoError(t, res.Err, "apply %s", a)
			state = res.State
		}
		require.Equal(t, game.Second, state.Turn)

		rec := newRecord("SNAP22")
		rec.State = state
		rec.Log = log
		require.NoError(t, store.CreateRoom(ctx, rec))

		got, err := store.GetRoom(ctx, "SNAP22")
		require.NoError(t, err)
		assert.True(t, got.State.Equal(state), "got %+v", got.State)
		assert.Equal(t, []game.Wall{
			{Row: 3, Col: 3, Dir: game.Horizontal},
			{Row: 5, Col: 5, Dir: game.Vertical},
			{Row: 6, Col: 0, Dir: game.Horizontal},
		}, got.State.Walls)
		assert.Equal(t, 8, got.State.Players.First.Walls)
		assert.Equal(t, 9, got.State.Players.Second.Walls)
		assert.Equal(t, game.Position{Row: 1, Col: 4}, got.State.Players.First.Pos)
		assert.Equal(t, game.Position{Row: 7, Col: 4}, got.State.Players.Second.Pos)
		assert.Equal(t, "guest-1", got.State.Players.Second.ID)
		assert.Nil(t, got.State.Winner)
		assert.Equal(t, log, got.Log)
	})

	t.Run("delete expired", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		old := newRecord("OLD222")
		old.ExpiresAt = now.Add(-time.Second)
		require.NoError(t, store.CreateRoom(ctx, old))
		require.NoError(t, store.CreateRoom(ctx, newRecord("NEW222")))

		n, err := store.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = store.GetRoom(ctx, "OLD222")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetRoom(ctx, "NEW222")
		assert.NoError(t, err)
	})

	t.Run("zero expiry never expires", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		rec := newRecord("KEEP33")
		rec.ExpiresAt = time.Time{}
		require.NoError(t, store.CreateRoom(ctx, rec))

		n, err := store.DeleteExpired(ctx, now.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		got, err := store.GetRoom(ctx, "KEEP33")
		require.NoError(t, err)
		assert.True(t, got.ExpiresAt.IsZero())
		assert.False(t, got.Expired(now.Add(24*time.Hour)))
	})

	t.Run("cancelled context", func(t *testing.T) {
		store := open(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.GetRoom(ctx, "ANY222")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
