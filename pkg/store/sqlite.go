package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"campusnav/pkg/db"
)

// SQLiteStore implements StateStore on the application database.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetState returns the stored value for key, and whether it exists.
func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("state read failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

// SetState upserts the value for key.
func (s *SQLiteStore) SetState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

// DeleteState removes the value for key. Missing keys are not an error.
func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE key = ?`, key)
	return err
}
