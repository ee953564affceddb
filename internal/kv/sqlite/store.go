package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/homebase/internal/errors"
	"github.com/julianstephens/homebase/internal/logger"
	"github.com/julianstephens/homebase/internal/migration"
	"github.com/julianstephens/homebase/migrations"
)

// Store is the default kv.Provider: a single kv table in a local SQLite file.
type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		db, err := sql.Open("sqlite", s.path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		s.db = db
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'homebase init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return s.validateSchemaVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite), nil
}

func (s *Store) runMigrations() error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	_, err = r.Apply(func(msg string) {
		logger.Info(msg, "store", s.path)
	})
	return err
}

func (s *Store) validateSchemaVersion() error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	return r.Validate()
}

// Migrations exposes the schema runner for diagnostics.
func (s *Store) Migrations() (*migration.Runner, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	return s.runner()
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection, nil before Init/Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if s.db == nil {
		return nil, false, &errors.PersistenceError{Op: "get", Key: key, Err: fmt.Errorf("storage not loaded")}
	}

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &errors.PersistenceError{Op: "get", Key: key, Err: err}
	}
	return json.RawMessage(value), true, nil
}

func (s *Store) Set(ctx context.Context, key string, value json.RawMessage) error {
	if s.db == nil {
		return &errors.PersistenceError{Op: "set", Key: key, Err: fmt.Errorf("storage not loaded")}
	}
	if !json.Valid(value) {
		return &errors.PersistenceError{Op: "set", Key: key, Err: fmt.Errorf("value is not valid JSON")}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		key, string(value), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &errors.PersistenceError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if s.db == nil {
		return &errors.PersistenceError{Op: "remove", Key: key, Err: fmt.Errorf("storage not loaded")}
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return &errors.PersistenceError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

func (s *Store) Enumerate(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	if s.db == nil {
		return nil, &errors.PersistenceError{Op: "enumerate", Key: prefix, Err: fmt.Errorf("storage not loaded")}
	}

	// substr keeps '_' and '%' in prefixes literal, unlike LIKE. Both sides
	// count characters, not bytes.
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM kv WHERE substr(key, 1, length(?1)) = ?1",
		prefix,
	)
	if err != nil {
		return nil, &errors.PersistenceError{Op: "enumerate", Key: prefix, Err: err}
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, &errors.PersistenceError{Op: "enumerate", Key: prefix, Err: err}
		}
		out[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.PersistenceError{Op: "enumerate", Key: prefix, Err: err}
	}
	return out, nil
}
