package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/profiled/internal/bus"
	"github.com/roach88/profiled/internal/settings"
)

//go:embed schema.sql
var schemaSQL string

// Store is the SQLite-backed settings.Store and settings.Prefs
// implementation. b may be nil to disable change notifications.
type Store struct {
	db  *sql.DB
	bus *bus.Bus
}

var (
	_ settings.Store = (*Store)(nil)
	_ settings.Prefs = (*Store)(nil)
)

// Open creates or opens the SQLite database at the given path. Applies
// required pragmas and the schema automatically; safe to call on an
// existing database.
func Open(path string, b *bus.Bus) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, bus: b}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) notify(key string, scope settings.Scope) {
	if s.bus != nil {
		s.bus.Publish(bus.SettingTopic(string(scope), key))
	}
}

// GetString returns the value for (key, scope), ok=false when absent.
func (s *Store) GetString(key string, scope settings.Scope) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM settings WHERE scope = ? AND key = ?`,
		string(scope), key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s/%s: %w", scope, key, err)
	}
	return value, true, nil
}

// PutString upserts the value and publishes the key's change topic.
func (s *Store) PutString(key, value string, scope settings.Scope) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (scope, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value`,
		string(scope), key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %s/%s: %w", scope, key, err)
	}
	s.notify(key, scope)
	return nil
}

// GetInt returns the int value for (key, scope), or def when the key is
// absent or its value does not parse as an int.
func (s *Store) GetInt(key string, def int, scope settings.Scope) (int, error) {
	raw, ok, err := s.GetString(key, scope)
	if err != nil || !ok {
		return def, err
	}
	n, perr := strconv.Atoi(raw)
	if perr != nil {
		return def, nil
	}
	return n, nil
}

// PutInt upserts the int value and publishes the key's change topic.
func (s *Store) PutInt(key string, value int, scope settings.Scope) error {
	return s.PutString(key, strconv.Itoa(value), scope)
}

// Delete removes the key; deleting an absent key is a no-op and publishes
// nothing.
func (s *Store) Delete(key string, scope settings.Scope) error {
	res, err := s.db.Exec(
		`DELETE FROM settings WHERE scope = ? AND key = ?`, string(scope), key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s/%s: %w", scope, key, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.notify(key, scope)
	}
	return nil
}

// Get returns the pref value, ok=false when absent.
func (s *Store) Get(namespace, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM prefs WHERE namespace = ? AND key = ?`,
		namespace, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read pref %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

// Put upserts a pref value.
func (s *Store) Put(namespace, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO prefs (namespace, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value`,
		namespace, key, value)
	if err != nil {
		return fmt.Errorf("failed to write pref %s/%s: %w", namespace, key, err)
	}
	return nil
}

// DeletePref removes a pref key; absent keys are a no-op.
func (s *Store) DeletePref(namespace, key string) error {
	_, err := s.db.Exec(
		`DELETE FROM prefs WHERE namespace = ? AND key = ?`, namespace, key)
	if err != nil {
		return fmt.Errorf("failed to delete pref %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Keys returns all pref keys in the namespace.
func (s *Store) Keys(namespace string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT key FROM prefs WHERE namespace = ? ORDER BY key`, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list prefs in %s: %w", namespace, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan pref key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
