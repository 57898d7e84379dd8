// Package server parses room server configuration and runs the process.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"quoridor/internal/httpx"
	"quoridor/internal/platform/config"
	"quoridor/internal/platform/otel"
	"quoridor/internal/platform/timeouts"
	"quoridor/internal/room"
	"quoridor/internal/storage"
	"quoridor/internal/storage/memory"
	"quoridor/internal/storage/sqlite"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"

	serviceName = "quoridor"
)

// Config holds server command configuration.
type Config struct {
	Addr            string        `env:"QUORIDOR_ADDR" envDefault:":8080"`
	Store           string        `env:"QUORIDOR_STORE" envDefault:"memory"`
	DBPath          string        `env:"QUORIDOR_DB_PATH" envDefault:"data/quoridor.db"`
	RoomTTL         time.Duration `env:"QUORIDOR_ROOM_TTL" envDefault:"30m"`
	PollInterval    time.Duration `env:"QUORIDOR_POLL_INTERVAL" envDefault:"400ms"`
	JanitorInterval time.Duration `env:"QUORIDOR_JANITOR_INTERVAL" envDefault:"1m"`
}

// ParseConfig reads the environment, then lets flags override it.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "room store: memory or sqlite")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path")
	fs.DurationVar(&cfg.RoomTTL, "room-ttl", cfg.RoomTTL, "idle time before a room expires")
	fs.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "stream polling interval")
	fs.DurationVar(&cfg.JanitorInterval, "janitor", cfg.JanitorInterval, "expired room sweep interval")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case StoreMemory, StoreSQLite:
	default:
		return Config{}, fmt.Errorf("unknown store %q (want %s or %s)", cfg.Store, StoreMemory, StoreSQLite)
	}
	if cfg.RoomTTL <= 0 || cfg.PollInterval <= 0 || cfg.JanitorInterval <= 0 {
		return Config{}, errors.New("durations must be positive")
	}
	return cfg, nil
}

// OpenStore builds the configured room store and its closer.
func OpenStore(cfg Config) (storage.RoomStore, func() error, error) {
	switch cfg.Store {
	case StoreSQLite:
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, store.Close, nil
	default:
		return memory.New(), func() error { return nil }, nil
	}
}

// Run serves until ctx ends, then shuts down gracefully.
func Run(ctx context.Context, cfg Config) error {
	shutdownTracing, err := otel.Setup(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	store, closeStore, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()
	log.Printf("room store: %s", cfg.Store)

	svc := room.NewService(store,
		room.WithTTL(cfg.RoomTTL),
		room.WithPollInterval(cfg.PollInterval),
	)
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go svc.RunJanitor(janitorCtx, cfg.JanitorInterval)

	srv := httpx.NewServer(svc)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(cfg.Addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := srv.Close(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
