package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoridor/internal/game"
	"quoridor/internal/storage"
	"quoridor/internal/storage/storagetest"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestRoomStoreContract(t *testing.T) {
	storagetest.RunRoomStore(t, func(t *testing.T) storage.RoomStore {
		return openTempStore(t)
	})
}

func TestOpenTwiceKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "rooms.db")
	store, err := Open(path)
	require.NoError(t, err)
	rec := storage.RoomRecord{
		Code:      "KEEP22",
		State:     game.NewState("a", "", "", "", game.Waiting),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.CreateRoom(context.Background(), rec))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.GetRoom(context.Background(), "KEEP22")
	require.NoError(t, err)
	assert.Equal(t, "Red", got.State.Players.First.Name)
	assert.NotNil(t, got.State.Walls)
}

func TestWinnerSurvivesRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	state := game.NewState("a", "", "b", "", game.Finished)
	winner := game.Second
	state.Winner = &winner
	require.NoError(t, store.CreateRoom(ctx, storage.RoomRecord{
		Code:      "DONE22",
		State:     state,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	got, err := store.GetRoom(ctx, "DONE22")
	require.NoError(t, err)
	require.NotNil(t, got.State.Winner)
	assert.Equal(t, game.Second, *got.State.Winner)
	assert.Equal(t, game.Finished, got.State.Status)
}

func TestUpSection(t *testing.T) {
	t.Parallel()

	content := "-- +migrate Up\nCREATE TABLE x (id INTEGER);\n-- +migrate Down\nDROP TABLE x;\n"
	up := upSection(content)
	assert.Contains(t, up, "CREATE TABLE x")
	assert.NotContains(t, up, "DROP TABLE")
	assert.Equal(t, "SELECT 1;", upSection("SELECT 1;"))
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	t.Parallel()

	var store *Store
	_, err := store.GetRoom(context.Background(), "X")
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rooms.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
