// Package sqlitestore keeps session values in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/go-subscription-client/storage"
	_ "modernc.org/sqlite"
)

var _ storage.Store = (*Store)(nil)

const schema = `CREATE TABLE IF NOT EXISTS session_values (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

const queryTimeout = 5 * time.Second

type Store struct {
	db *sql.DB
}

// Open creates the database file and schema if needed. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("sqlitestore mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_values WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlitestore get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Put(values map[string]string) error {
	return s.inTx(func(ctx context.Context, tx *sql.Tx) error {
		now := time.Now().Unix()
		for k, v := range values {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO session_values (key, value, updated_at) VALUES (?, ?, ?)
				 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				k, v, now); err != nil {
				return fmt.Errorf("sqlitestore put %s: %w", k, err)
			}
		}
		return nil
	})
}

func (s *Store) Delete(keys ...string) error {
	return s.inTx(func(ctx context.Context, tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM session_values WHERE key = ?`, k); err != nil {
				return fmt.Errorf("sqlitestore delete %s: %w", k, err)
			}
		}
		return nil
	})
}

func (s *Store) inTx(fn func(context.Context, *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore begin: %w", err)
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitestore commit: %w", err)
	}
	return nil
}
