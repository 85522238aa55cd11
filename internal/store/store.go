package store

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

	_ "modernc.org/sqlite" // SQLite driver
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Store is a durable JSON key-value store backed by SQLite
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the store at path, creating parent directories as needed
func Open(path string) (*Store, error) {
	dsn := MemoryPath

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil { //nolint:mnd
			return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
		}

		dsn = path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	// SQLite only supports one writer; a single connection also keeps an
	// in-memory database alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()

	if path != MemoryPath {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: enable WAL: %v", ErrOpenFailed, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrOpenFailed, err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location
func (s *Store) Path() string {
	return s.path
}

// Get decodes the value stored at key into dest, reporting whether it existed
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	var raw string

	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("%w: get %s: %v", ErrQueryFailed, key, err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}

	return true, nil
}

// Set stores value at key as JSON, replacing any previous value
func (s *Store) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrQueryFailed, key, err)
	}

	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrQueryFailed, key, err)
	}

	return nil
}

// Keys lists stored keys beginning with prefix in lexical order
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("%w: keys: %v", ErrQueryFailed, err)
	}
	defer rows.Close() //nolint:errcheck

	var keys []string

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: keys: %v", ErrQueryFailed, err)
		}

		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: keys: %v", ErrQueryFailed, err)
	}

	return keys, nil
}

func likePrefix(prefix string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)

	return escaped + "%"
}
