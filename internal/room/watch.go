package room

import (
	"context"
	"errors"
	"log"
	"time"

	"quoridor/internal/platform/timeouts"
)

// Watch streams the room: the current snapshot first, then every snapshot
// whose version differs from the last one sent. The store is polled at the
// service's poll interval. The channel closes when ctx ends or the room
// disappears or expires; other store errors are logged and polling goes on.
func (s *Service) Watch(ctx context.Context, code string) (<-chan Record, error) {
	first, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	out := make(chan Record, 1)
	out <- first
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		last := first.Version
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			rec, err := s.load(ctx, first.Code)
			if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Printf("watch room %s: %v", first.Code, err)
				continue
			}
			if rec.Version == last {
				continue
			}
			last = rec.Version
			select {
			case out <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Sweep deletes rooms that expired before now.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "room.Sweep")
	n, err := s.store.DeleteExpired(ctx, s.now())
	endSpan(span, err)
	return n, err
}

// RunJanitor sweeps expired rooms every interval until ctx ends.
func (s *Service) RunJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, timeouts.Janitor)
			n, err := s.Sweep(sweepCtx)
			cancel()
			if err != nil {
				log.Printf("janitor: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("janitor: removed %d expired rooms", n)
			}
		}
	}
}
