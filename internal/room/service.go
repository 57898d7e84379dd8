// Package room runs online matches on top of the rules engine. Each room is
// a stored snapshot guarded by a version number; writers apply the engine to
// the latest snapshot and persist with compare-and-swap, so at most one
// action is accepted per version.
package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"quoridor/internal/game"
	"quoridor/internal/storage"
)

// Record is a stored room.
type Record = storage.RoomRecord

const (
	DefaultTTL          = 30 * time.Minute
	DefaultPollInterval = 400 * time.Millisecond
	DefaultMaxRetries   = 3

	createAttempts = 8
)

// Seat is what a player receives on create or join: the room and the
// identity token that authorizes their actions.
type Seat struct {
	Record   Record
	PlayerID string
	Side     game.Side
}

// Outcome is the result of Act. Result.Err carries an engine rejection, in
// which case Record is the unchanged snapshot the action was checked against.
type Outcome struct {
	Record Record
	Result game.Result
}

type Service struct {
	store        storage.RoomStore
	now          func() time.Time
	ttl          time.Duration
	pollInterval time.Duration
	maxRetries   int
	newCode      func() (string, error)
	newID        func() string
	tracer       trace.Tracer
}

type Option func(*Service)

// WithClock replaces time.Now for expiry bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithMaxRetries bounds how many times Act reloads after losing a version race.
func WithMaxRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithCodeGenerator swaps the random room code source.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		if gen != nil {
			s.newCode = gen
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer("quoridor/room")
		}
	}
}

func NewService(store storage.RoomStore, opts ...Option) *Service {
	s := &Service{
		store:        store,
		now:          time.Now,
		ttl:          DefaultTTL,
		pollInterval: DefaultPollInterval,
		maxRetries:   DefaultMaxRetries,
		newCode:      generateCode,
		newID:        func() string { return uuid.NewString() },
		tracer:       otel.Tracer("quoridor/room"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) PollInterval() time.Duration { return s.pollInterval }

// Create opens a room with the host seated as First and waits for a guest.
func (s *Service) Create(ctx context.Context, hostName string) (seat Seat, err error) {
	ctx, span := s.tracer.Start(ctx, "room.Create")
	defer func() { endSpan(span, err) }()

	hostID := s.newID()
	now := s.now()
	for range createAttempts {
		code, err := s.newCode()
		if err != nil {
			return Seat{}, err
		}
		rec := Record{
			Code:      code,
			State:     game.NewState(hostID, cleanName(hostName), "", "", game.Waiting),
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(s.ttl),
		}
		err = s.store.CreateRoom(ctx, rec)
		if errors.Is(err, storage.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return Seat{}, fmt.Errorf("create room: %w", err)
		}
		rec.Version = 1
		span.SetAttributes(attribute.String("room.code", code))
		return Seat{Record: rec, PlayerID: hostID, Side: game.First}, nil
	}
	return Seat{}, fmt.Errorf("create room: no free code after %d attempts", createAttempts)
}

// Join seats a guest as Second and starts the match.
func (s *Service) Join(ctx context.Context, code, guestName string) (seat Seat, err error) {
	ctx, span := s.tracer.Start(ctx, "room.Join", trace.WithAttributes(attribute.String("room.code", code)))
	defer func() { endSpan(span, err) }()

	guestID := s.newID()
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		rec, err := s.load(ctx, code)
		if err != nil {
			return Seat{}, err
		}
		if rec.State.Status != game.Waiting || rec.State.Players.Second.ID != "" {
			return Seat{}, ErrRoomFull
		}

		next := rec.Clone()
		next.State.Players.Second.ID = guestID
		if name := cleanName(guestName); name != "" {
			next.State.Players.Second.Name = name
		}
		next.State.Status = game.Playing
		s.touch(&next)

		version, err := s.store.UpdateRoom(ctx, next)
		if errors.Is(err, storage.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return Seat{}, fmt.Errorf("join room: %w", err)
		}
		next.Version = version
		return Seat{Record: next, PlayerID: guestID, Side: game.Second}, nil
	}
	return Seat{}, ErrConflict
}

// Get returns the current snapshot. Expired rooms are reported as missing.
func (s *Service) Get(ctx context.Context, code string) (rec Record, err error) {
	ctx, span := s.tracer.Start(ctx, "room.Get", trace.WithAttributes(attribute.String("room.code", code)))
	defer func() { endSpan(span, err) }()
	return s.load(ctx, code)
}

// Act applies action on behalf of playerID. The action's side is taken from
// the seat, never from the caller. Engine rejections come back in
// Outcome.Result with a nil error; the error return is for everything else.
func (s *Service) Act(ctx context.Context, code, playerID string, action game.Action) (out Outcome, err error) {
	ctx, span := s.tracer.Start(ctx, "room.Act", trace.WithAttributes(
		attribute.String("room.code", code),
		attribute.String("action.type", string(action.Type)),
	))
	defer func() { endSpan(span, err) }()

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		rec, err := s.load(ctx, code)
		if err != nil {
			return Outcome{}, err
		}
		side, ok := rec.State.SideOf(playerID)
		if !ok {
			return Outcome{}, ErrUnknownPlayer
		}
		action.Side = side
		span.SetAttributes(attribute.String("action.side", side.String()), attribute.Int("attempt", attempt))

		res := game.Apply(rec.State, action)
		if !res.Accepted() {
			if reason, ok := game.ReasonOf(res.Err); ok {
				span.SetAttributes(attribute.String("action.reason", string(reason)))
			}
			return Outcome{Record: rec, Result: res}, nil
		}

		next := rec.Clone()
		next.State = res.State
		next.Log = append(next.Log, action)
		s.touch(&next)

		version, err := s.store.UpdateRoom(ctx, next)
		if errors.Is(err, storage.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return Outcome{}, fmt.Errorf("act on room: %w", err)
		}
		next.Version = version
		return Outcome{Record: next, Result: game.Result{State: next.State}}, nil
	}
	return Outcome{}, ErrConflict
}

func (s *Service) load(ctx context.Context, code string) (Record, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return Record{}, err
	}
	rec, err := s.store.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load room: %w", err)
	}
	if rec.Expired(s.now()) {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// touch stamps a write and extends the room's lifetime.
func (s *Service) touch(rec *Record) {
	now := s.now()
	rec.UpdatedAt = now
	rec.ExpiresAt = now.Add(s.ttl)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
