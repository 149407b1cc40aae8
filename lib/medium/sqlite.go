package medium

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// InMemoryPath opens a private, non-persistent sqlite database
const InMemoryPath = ":memory:"

const schema = `
	CREATE TABLE IF NOT EXISTS entries (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
`

// sqliteImpl stores every entry as one row of the entries table
type sqliteImpl struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// NewSQLiteMedium opens (or creates) the sqlite database at path.
// The schema is created if it doesn't exist and parent directories are created if needed.
//
// Thread-safety: the medium uses a single connection, so all calls are serialized.
func NewSQLiteMedium(path string) (IMedium, error) {
	if path != InMemoryPath {
		// Ensure parent directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// an in-memory database only lives as long as its connection
	db.SetMaxOpenConns(1)

	if path != InMemoryPath {
		// Enable WAL mode for better crash behaviour
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	Logger.Debugf("sqlite medium opened at %s", path)

	return &sqliteImpl{
		db:   db,
		path: path,
	}, nil
}

// SQLiteFactory returns a Factory opening the database at path
func SQLiteFactory(path string) Factory {
	return func() (IMedium, error) {
		return NewSQLiteMedium(path)
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see medium.IMedium)
// --------------------------------------------------------------------------

func (s *sqliteImpl) SetRaw(key string, value string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	_, err := s.db.Exec(`
		INSERT INTO entries (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	return nil
}

func (s *sqliteImpl) RemoveRaw(key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if _, err := s.db.Exec(`DELETE FROM entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting key %q: %w", key, err)
	}
	return nil
}

func (s *sqliteImpl) ClearAll() error {
	if s.closed.Load() {
		return ErrClosed
	}
	if _, err := s.db.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	return nil
}

func (s *sqliteImpl) GetRaw(key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading key %q: %w", key, err)
	}
	return value, true, nil
}

func (s *sqliteImpl) Keys() ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.Query(`SELECT key FROM entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *sqliteImpl) Count() (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

func (s *sqliteImpl) Info() Info {
	return Info{
		Type:       ImplSQLite,
		Persistent: s.path != InMemoryPath,
		Location:   s.path,
	}
}

func (s *sqliteImpl) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
