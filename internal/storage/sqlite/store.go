// Package sqlite provides a SQLite-backed room store so that several server
// processes can share rooms through one database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"quoridor/internal/game"
	"quoridor/internal/storage"
	"quoridor/internal/storage/sqlite/migrations"
)

// Store persists rooms in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Zero expiry means the room never expires and is stored as 0.
func expiryMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return toMillis(value)
}

func fromExpiryMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return fromMillis(value)
}

// Open opens (creating if needed) the database at path and applies the
// embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer per process; busy_timeout covers other processes.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) CreateRoom(ctx context.Context, rec storage.RoomRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	code := strings.TrimSpace(rec.Code)
	if code == "" {
		return fmt.Errorf("room code is required")
	}
	stateJSON, logJSON, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO rooms (
		   code,
		   status,
		   state_json,
		   log_json,
		   version,
		   created_at,
		   updated_at,
		   expires_at
		 ) VALUES (?, ?, ?, ?, 1, ?, ?, ?)`,
		code,
		rec.State.Status.String(),
		stateJSON,
		logJSON,
		toMillis(createdAt),
		toMillis(updatedAt),
		expiryMillis(rec.ExpiresAt),
	)
	if err != nil {
		if isRoomUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, code string) (storage.RoomRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.RoomRecord{}, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return storage.RoomRecord{}, fmt.Errorf("room code is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT state_json, log_json, version, created_at, updated_at, expires_at
		 FROM rooms
		 WHERE code = ?`,
		code,
	)
	var (
		stateJSON, logJSON             string
		version                        int64
		createdAt, updatedAt, expireAt int64
	)
	if err := row.Scan(&stateJSON, &logJSON, &version, &createdAt, &updatedAt, &expireAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RoomRecord{}, storage.ErrNotFound
		}
		return storage.RoomRecord{}, fmt.Errorf("get room: %w", err)
	}

	rec := storage.RoomRecord{
		Code:      code,
		Version:   version,
		CreatedAt: fromMillis(createdAt),
		UpdatedAt: fromMillis(updatedAt),
		ExpiresAt: fromExpiryMillis(expireAt),
	}
	if err := json.Unmarshal([]byte(stateJSON), &rec.State); err != nil {
		return storage.RoomRecord{}, fmt.Errorf("decode room state: %w", err)
	}
	if err := json.Unmarshal([]byte(logJSON), &rec.Log); err != nil {
		return storage.RoomRecord{}, fmt.Errorf("decode room log: %w", err)
	}
	if rec.State.Walls == nil {
		rec.State.Walls = []game.Wall{}
	}
	return rec, nil
}

func (s *Store) UpdateRoom(ctx context.Context, rec storage.RoomRecord) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	stateJSON, logJSON, err := encodeRecord(rec)
	if err != nil {
		return 0, err
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE rooms SET
		   status = ?,
		   state_json = ?,
		   log_json = ?,
		   version = version + 1,
		   updated_at = ?,
		   expires_at = ?
		 WHERE code = ? AND version = ?`,
		rec.State.Status.String(),
		stateJSON,
		logJSON,
		toMillis(updatedAt),
		expiryMillis(rec.ExpiresAt),
		rec.Code,
		rec.Version,
	)
	if err != nil {
		return 0, fmt.Errorf("update room: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update room rows affected: %w", err)
	}
	if n == 1 {
		return rec.Version + 1, nil
	}

	// Nothing matched: either the room is gone or someone else wrote first.
	var found int
	err = s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE code = ?`, rec.Code).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update room lookup: %w", err)
	}
	return 0, storage.ErrVersionConflict
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM rooms WHERE expires_at <> 0 AND expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired rooms: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired rows affected: %w", err)
	}
	return int(n), nil
}

func encodeRecord(rec storage.RoomRecord) (string, string, error) {
	stateJSON, err := json.Marshal(rec.State)
	if err != nil {
		return "", "", fmt.Errorf("encode room state: %w", err)
	}
	log := rec.Log
	if log == nil {
		log = []game.Action{}
	}
	logJSON, err := json.Marshal(log)
	if err != nil {
		return "", "", fmt.Errorf("encode room log: %w", err)
	}
	return string(stateJSON), string(logJSON), nil
}

func isRoomUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "rooms.code")
}

var _ storage.RoomStore = (*Store)(nil)
