// Package prefs persists user preferences as key/value pairs in SQLite.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/lumen/internal/apperr"
)

// Known keys.
const (
	KeyDriveFolderID       = "drive_folder_id"
	KeyAutoSync            = "auto_sync"
	KeySyncIntervalMinutes = "sync_interval_minutes"
)

// DefaultSyncInterval applies when no interval preference is stored.
const DefaultSyncInterval = 15 * time.Minute

const schemaSQL = `
CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Entry is one stored preference.
type Entry struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Store is a SQLite-backed preference store.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens (or creates) the database at dsn and applies the schema.
// Use ":memory:" for an ephemeral store.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("prefs: open db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("prefs: apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key or apperr.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.GetContext(ctx, &v, `SELECT value FROM preferences WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("prefs: %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("prefs: get %s: %w", key, err)
	}
	return v, nil
}

// Set upserts key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, s.now().UTC())
	if err != nil {
		return fmt.Errorf("prefs: set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key returns apperr.ErrNotFound.
func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("prefs: delete %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("prefs: %s: %w", key, apperr.ErrNotFound)
	}
	return nil
}

// All returns every stored preference ordered by key.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	out := []Entry{}
	if err := s.db.SelectContext(ctx, &out, `SELECT key, value, updated_at FROM preferences ORDER BY key`); err != nil {
		return nil, fmt.Errorf("prefs: list: %w", err)
	}
	return out, nil
}

// AutoSync reports the auto_sync preference, falling back to def when it
// is unset or unparseable.
func (s *Store) AutoSync(ctx context.Context, def bool) bool {
	v, err := s.Get(ctx, KeyAutoSync)
	if err != nil {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// SyncInterval reads sync_interval_minutes. Missing, unparseable or
// non-positive values yield def, or DefaultSyncInterval when def is zero.
func (s *Store) SyncInterval(ctx context.Context, def time.Duration) time.Duration {
	if def <= 0 {
		def = DefaultSyncInterval
	}
	v, err := s.Get(ctx, KeySyncIntervalMinutes)
	if err != nil {
		return def
	}
	m, err := strconv.Atoi(v)
	if err != nil || m <= 0 {
		return def
	}
	return time.Duration(m) * time.Minute
}
