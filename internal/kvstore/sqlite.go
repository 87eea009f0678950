package kvstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/five82/leaddesk/internal/crmerr"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`

var errClosed = errors.New("store is closed")

// SQLite is a KV persisted in a single SQLite table.
type SQLite struct {
	mu  sync.RWMutex
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path. Use ":memory:"
// for a throwaway store.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, crmerr.Storage("create state dir", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, crmerr.Storage("open state db", err)
	}
	// An in-memory database lives per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, crmerr.Storage("create kv schema", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return "", false, crmerr.Storage(fmt.Sprintf("get %q", key), errClosed)
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, crmerr.Storage(fmt.Sprintf("get %q", key), err)
	}
	return value, true, nil
}

func (s *SQLite) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return crmerr.Storage(fmt.Sprintf("set %q", key), errClosed)
	}
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, s.now().UnixMilli())
	if err != nil {
		return crmerr.Storage(fmt.Sprintf("set %q", key), err)
	}
	return nil
}

func (s *SQLite) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return crmerr.Storage(fmt.Sprintf("delete %q", key), errClosed)
	}
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return crmerr.Storage(fmt.Sprintf("delete %q", key), err)
	}
	return nil
}

func (s *SQLite) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, crmerr.Storage("list keys", errClosed)
	}
	rows, err := s.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, crmerr.Storage("list keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, crmerr.Storage("scan key", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, crmerr.Storage("list keys", err)
	}
	return keys, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
