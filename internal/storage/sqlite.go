package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps values in a single key-value table. Compare-and-swap is
// a conditional UPDATE, so several processes can share one database file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

// OpenSQLite opens or creates the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store requires a database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// busy_timeout goes in the DSN so every pooled connection gets it.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(kvSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.path
}

// Get returns the value stored under key
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	if err := s.check(key); err != nil {
		return "", false, err
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

// Set replaces the value stored under key
func (s *SQLiteStore) Set(key, value string) error {
	if err := s.check(key); err != nil {
		return err
	}

	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// CompareAndSwap replaces the value only if the row still holds old
func (s *SQLiteStore) CompareAndSwap(key, old string, existed bool, value string) (bool, error) {
	if err := s.check(key); err != nil {
		return false, err
	}

	var (
		res sql.Result
		err error
	)
	if existed {
		res, err = s.db.Exec(
			`UPDATE kv SET value = ?, updated_at = ? WHERE key = ? AND value = ?`,
			value, now(), key, old,
		)
	} else {
		res, err = s.db.Exec(
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO NOTHING`,
			key, value, now(),
		)
	}
	if err != nil {
		return false, fmt.Errorf("swap %s: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("swap %s: %w", key, err)
	}
	return n == 1, nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil || s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) check(key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return validateKey(key)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
