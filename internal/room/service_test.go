package room

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"quoridor/internal/game"
	"quoridor/internal/storage"
	"quoridor/internal/storage/memory"
	"quoridor/internal/storage/sqlite"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T, store storage.RoomStore, opts ...Option) (*Service, *fakeClock) {
	t.Helper()
	if store == nil {
		store = memory.New()
	}
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now), WithPollInterval(5 * time.Millisecond)}, opts...)
	return NewService(store, opts...), clock
}

// startMatch creates a room and seats a guest, returning both seats.
func startMatch(t *testing.T, svc *Service) (Seat, Seat) {
	t.Helper()
	ctx := context.Background()
	host, err := svc.Create(ctx, "Ana")
	require.NoError(t, err)
	guest, err := svc.Join(ctx, host.Record.Code, "Bia")
	require.NoError(t, err)
	return host, guest
}

func TestCreateAndJoin(t *testing.T) {
	svc, clock := newTestService(t, nil)
	ctx := context.Background()

	host, err := svc.Create(ctx, "  Ana  ")
	require.NoError(t, err)
	assert.Len(t, host.Record.Code, codeLength)
	assert.Equal(t, game.First, host.Side)
	assert.NotEmpty(t, host.PlayerID)
	assert.Equal(t, game.Waiting, host.Record.State.Status)
	assert.Equal(t, "Ana", host.Record.State.Players.First.Name)
	assert.Empty(t, host.Record.State.Players.Second.ID)
	assert.Equal(t, clock.Now().Add(DefaultTTL), host.Record.ExpiresAt)

	guest, err := svc.Join(ctx, host.Record.Code, "")
	require.NoError(t, err)
	assert.Equal(t, game.Second, guest.Side)
	assert.NotEqual(t, host.PlayerID, guest.PlayerID)
	assert.Equal(t, game.Playing, guest.Record.State.Status)
	assert.Equal(t, "Green", guest.Record.State.Players.Second.Name)
	assert.Equal(t, int64(2), guest.Record.Version)

	got, err := svc.Get(ctx, " "+strings.ToLower(host.Record.Code)+" ")
	require.NoError(t, err)
	assert.Equal(t, guest.PlayerID, got.State.Players.Second.ID)
}

func TestJoinFullRoom(t *testing.T) {
	svc, _ := newTestService(t, nil)
	host, _ := startMatch(t, svc)

	_, err := svc.Join(context.Background(), host.Record.Code, "Caio")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Join(context.Background(), "ZZZZZZ", "Bia")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Join(context.Background(), "bad", "Bia")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestActAcceptedPersistsAndRefreshesTTL(t *testing.T) {
	svc, clock := newTestService(t, nil)
	host, _ := startMatch(t, svc)
	ctx := context.Background()

	clock.Advance(10 * time.Minute)
	out, err := svc.Act(ctx, host.Record.Code, host.PlayerID, game.MoveAction(game.First, game.Position{Row: 1, Col: 4}))
	require.NoError(t, err)
	require.True(t, out.Result.Accepted())
	assert.Equal(t, int64(3), out.Record.Version)
	assert.Equal(t, clock.Now().Add(DefaultTTL), out.Record.ExpiresAt)

	stored, err := svc.Get(ctx, host.Record.Code)
	require.NoError(t, err)
	assert.Equal(t, game.Position{Row: 1, Col: 4}, stored.State.Players.First.Pos)
	assert.Equal(t, game.Second, stored.State.Turn)
	require.Len(t, stored.Log, 1)
	assert.Equal(t, game.First, stored.Log[0].Side)
}

func TestActRejectionIsNotPersisted(t *testing.T) {
	svc, _ := newTestService(t, nil)
	host, guest := startMatch(t, svc)
	ctx := context.Background()

	out, err := svc.Act(ctx, host.Record.Code, guest.PlayerID, game.MoveAction(game.Second, game.Position{Row: 7, Col: 4}))
	require.NoError(t, err)
	assert.ErrorIs(t, out.Result.Err, game.ErrNotYourTurn)
	assert.Equal(t, guest.Record.Version, out.Record.Version)

	stored, err := svc.Get(ctx, host.Record.Code)
	require.NoError(t, err)
	assert.Equal(t, guest.Record.Version, stored.Version)
	assert.True(t, stored.State.Equal(guest.Record.State))
}

func TestActTakesSideFromSeat(t *testing.T) {
	svc, _ := newTestService(t, nil)
	host, guest := startMatch(t, svc)

	// The guest claims to be First; the seat says Second, whose turn it is not.
	out, err := svc.Act(context.Background(), host.Record.Code, guest.PlayerID, game.MoveAction(game.First, game.Position{Row: 1, Col: 4}))
	require.NoError(t, err)
	assert.ErrorIs(t, out.Result.Err, game.ErrNotYourTurn)
}

func TestActUnknownPlayer(t *testing.T) {
	svc, _ := newTestService(t, nil)
	host, _ := startMatch(t, svc)

	_, err := svc.Act(context.Background(), host.Record.Code, "stranger", game.MoveAction(game.First, game.Position{Row: 1, Col: 4}))
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestActBeforeGuestJoins(t *testing.T) {
	svc, _ := newTestService(t, nil)
	host, err := svc.Create(context.Background(), "Ana")
	require.NoError(t, err)

	out, err := svc.Act(context.Background(), host.Record.Code, host.PlayerID, game.MoveAction(game.First, game.Position{Row: 1, Col: 4}))
	require.NoError(t, err)
	assert.ErrorIs(t, out.Result.Err, game.ErrGameNotPlaying)
}

func TestExpiredRoomsAreGone(t *testing.T) {
	store := memory.New()
	svc, clock := newTestService(t, store, WithTTL(time.Minute))
	host, err := svc.Create(context.Background(), "Ana")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = svc.Get(context.Background(), host.Record.Code)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Join(context.Background(), host.Record.Code, "Bia")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = store.GetRoom(context.Background(), host.Record.Code)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// racingStore lets another writer land between a reader's load and its
// write, once.
type racingStore struct {
	*memory.Store
	once  sync.Once
	race  func(ctx context.Context)
	calls int
}

func (r *racingStore) UpdateRoom(ctx context.Context, rec storage.RoomRecord) (int64, error) {
	if r.race != nil {
		r.calls++
		r.once.Do(func() { r.race(ctx) })
	}
	return r.Store.UpdateRoom(ctx, rec)
}

func TestActRetriesAgainstNewSnapshot(t *testing.T) {
	store := &racingStore{Store: memory.New()}
	svc, _ := newTestService(t, store)
	host, err := svc.Create(context.Background(), "Ana")
	require.NoError(t, err)

	// The join itself goes through UpdateRoom; arm the race afterwards.
	guest, err := svc.Join(context.Background(), host.Record.Code, "Bia")
	require.NoError(t, err)

	store.race = func(ctx context.Context) {
		rec, err := store.Store.GetRoom(ctx, host.Record.Code)
		require.NoError(t, err)
		res := game.ApplyMove(rec.State, game.First, game.Position{Row: 0, Col: 3})
		require.NoError(t, res.Err)
		rec.State = res.State
		_, err = store.Store.UpdateRoom(ctx, rec)
		require.NoError(t, err)
	}

	out, err := svc.Act(context.Background(), host.Record.Code, host.PlayerID, game.MoveAction(game.First, game.Position{Row: 1, Col: 4}))
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
	assert.ErrorIs(t, out.Result.Err, game.ErrNotYourTurn)
	assert.Equal(t, guest.Record.Version+1, out.Record.Version)
	assert.Equal(t, game.Position{Row: 0, Col: 3}, out.Record.State.Players.First.Pos)
}

type conflictStore struct {
	*memory.Store
}

func (conflictStore) UpdateRoom(context.Context, storage.RoomRecord) (int64, error) {
	return 0, storage.ErrVersionConflict
}

func TestActGivesUpAfterMaxRetries(t *testing.T) {
	inner := memory.New()
	setup, _ := newTestService(t, inner)
	host, guest := startMatch(t, setup)
	require.Equal(t, game.Playing, guest.Record.State.Status)

	svc, _ := newTestService(t, conflictStore{inner}, WithMaxRetries(2))
	_, err := svc.Act(context.Background(), host.Record.Code, host.PlayerID, game.MoveAction(game.First, game.Position{Row: 1, Col: 4}))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestConcurrentActsAcceptOnePerVersion(t *testing.T) {
	stores := map[string]func(t *testing.T) storage.RoomStore{
		"memory": func(*testing.T) storage.RoomStore { return memory.New() },
		"sqlite": func(t *testing.T) storage.RoomStore {
			store, err := sqlite.Open(filepath.Join(t.TempDir(), "rooms.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			svc, _ := newTestService(t, open(t))
			host, guest := startMatch(t, svc)
			ctx := context.Background()

			const racers = 12
			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				accepted int
				rejected int
			)
			for range racers {
				wg.Add(2)
				go func() {
					defer wg.Done()
					out, err := svc.Act(ctx, host.Record.Code, host.PlayerID, game.MoveAction(game.First, game.Position{Row: 1, Col: 4}))
					mu.Lock()
					defer mu.Unlock()
					switch {
					case errors.Is(err, ErrConflict):
						rejected++
					case err != nil:
						t.Errorf("act: %v", err)
					case out.Result.Accepted():
						accepted++
					default:
						rejected++
					}
				}()
				go func() {
					defer wg.Done()
					if _, err := svc.Get(ctx, host.Record.Code); err != nil {
						t.Errorf("get: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, accepted)
			assert.Equal(t, racers-1, rejected)
			stored, err := svc.Get(ctx, host.Record.Code)
			require.NoError(t, err)
			assert.Equal(t, guest.Record.Version+1, stored.Version)
			assert.Len(t, stored.Log, 1)
		})
	}
}

func TestCreateRetriesCodeCollisions(t *testing.T) {
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	var mu sync.Mutex
	gen := func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}
	svc, _ := newTestService(t, nil, WithCodeGenerator(gen))

	first, err := svc.Create(context.Background(), "Ana")
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "Bia")
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.Record.Code)
	assert.Equal(t, "BBBBBB", second.Record.Code)
}

func TestWatchEmitsOnVersionChange(t *testing.T) {
	svc, _ := newTestService(t, nil)
	host, guest := startMatch(t, svc)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := svc.Watch(ctx, host.Record.Code)
	require.NoError(t, err)

	first := <-updates
	assert.Equal(t, guest.Record.Version, first.Version)

	_, err = svc.Act(context.Background(), host.Record.Code, host.PlayerID, game.MoveAction(game.First, game.Position{Row: 1, Col: 4}))
	require.NoError(t, err)

	select {
	case rec := <-updates:
		assert.Equal(t, first.Version+1, rec.Version)
		assert.Equal(t, game.Second, rec.State.Turn)
	case <-time.After(2 * time.Second):
		t.Fatal("no update after act")
	}

	cancel()
	for range updates {
	}
}

func TestWatchClosesWhenRoomExpires(t *testing.T) {
	svc, clock := newTestService(t, nil, WithTTL(time.Minute))
	host, err := svc.Create(context.Background(), "Ana")
	require.NoError(t, err)

	updates, err := svc.Watch(context.Background(), host.Record.Code)
	require.NoError(t, err)
	<-updates
	clock.Advance(2 * time.Minute)

	select {
	case _, ok := <-updates:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not close after expiry")
	}
}

// flakyStore fails one GetRoom call once armed.
type flakyStore struct {
	storage.RoomStore
	mu    sync.Mutex
	armed bool
	fails int
}

func (f *flakyStore) arm() {
	f.mu.Lock()
	f.armed = true
	f.mu.Unlock()
}

func (f *flakyStore) GetRoom(ctx context.Context, code string) (storage.RoomRecord, error) {
	f.mu.Lock()
	fail := f.armed
	if fail {
		f.armed = false
		f.fails++
	}
	f.mu.Unlock()
	if fail {
		return storage.RoomRecord{}, errors.New("disk hiccup")
	}
	return f.RoomStore.GetRoom(ctx, code)
}

func TestWatchSurvivesTransientStoreErrors(t *testing.T) {
	store := &flakyStore{RoomStore: memory.New()}
	svc, _ := newTestService(t, store)
	host, guest := startMatch(t, svc)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := svc.Watch(ctx, host.Record.Code)
	require.NoError(t, err)
	<-updates

	store.arm()
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.fails == 1
	}, 2*time.Second, 5*time.Millisecond)

	_, err = svc.Act(context.Background(), host.Record.Code, host.PlayerID, game.MoveAction(game.First, game.Position{Row: 1, Col: 4}))
	require.NoError(t, err)

	select {
	case rec, ok := <-updates:
		require.True(t, ok, "watch closed while the room still exists")
		assert.Equal(t, guest.Record.Version+1, rec.Version)
	case <-time.After(2 * time.Second):
		t.Fatal("no update after a transient store error")
	}
}

func TestWatchUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Watch(context.Background(), "ZZZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	svc, _ := newTestService(t, nil, WithTracerProvider(tp))
	host, guest := startMatch(t, svc)

	_, err := svc.Act(context.Background(), host.Record.Code, guest.PlayerID, game.MoveAction(game.Second, game.Position{Row: 7, Col: 4}))
	require.NoError(t, err)

	var found bool
	for _, span := range recorder.Ended() {
		if span.Name() != "room.Act" {
			continue
		}
		found = true
		attrs := map[string]string{}
		for _, kv := range span.Attributes() {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
		assert.Equal(t, host.Record.Code, attrs["room.code"])
		assert.Equal(t, "second", attrs["action.side"])
		assert.Equal(t, string(game.ReasonNotYourTurn), attrs["action.reason"])
	}
	assert.True(t, found, "room.Act span not recorded")
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{in: "abcdef", want: "ABCDEF"},
		{in: " K7M2PQ ", want: "K7M2PQ"},
		{in: "ABCDE", err: true},
		{in: "ABCDEI", err: true},
		{in: "ABCDE0", err: true},
		{in: "", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeCode(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateCodeAlphabet(t *testing.T) {
	for range 50 {
		code, err := generateCode()
		require.NoError(t, err)
		_, err = NormalizeCode(code)
		require.NoError(t, err, code)
	}
}

