package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mindtide/moodsync/internal/dbx"
)

// SQLiteStore implements Store over a snapshots table using a DBTX
// (either *sql.DB or *sql.Tx).
type SQLiteStore struct {
	db dbx.DBTX
}

// NewSQLiteStore returns a new SQLiteStore bound to the given DBTX.
func NewSQLiteStore(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Read returns the blob stored under key, or (nil, nil) if the key is absent.
func (s *SQLiteStore) Read(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot[%s]: %w", key, err)
	}
	return value, nil
}

// Write upserts the blob stored under key.
func (s *SQLiteStore) Write(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write snapshot[%s]: %w", key, err)
	}
	return nil
}

// WriteAll upserts several blobs in a single transaction when backed by a
// *sql.DB, so related keys (e.g. session token and profile) change together.
func (s *SQLiteStore) WriteAll(ctx context.Context, values map[string][]byte) error {
	if db, ok := s.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			txStore := NewSQLiteStore(tx)
			for k, v := range values {
				if err := txStore.Write(ctx, k, v); err != nil {
					return err
				}
			}
			return nil
		})
	}

	for k, v := range values {
		if err := s.Write(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the blob stored under key. Deleting an absent key is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot[%s]: %w", key, err)
	}
	return nil
}

// Clear removes every stored blob.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots`)
	if err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}
