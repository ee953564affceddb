package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/errors"
	"github.com/julianstephens/homebase/internal/logger"
	"github.com/julianstephens/homebase/internal/migration"
	"github.com/julianstephens/homebase/migrations"
)

const table = constants.AppName + ".kv"

var (
	ErrInvalidConnectionString = goerrors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = goerrors.New("connection string must not contain a password")
)

// Store is a kv.Provider over a single JSONB table in PostgreSQL.
type Store struct {
	connStr string
	db      *sql.DB
}

func New(connStr string) *Store {
	s := &Store{
		connStr: connStr,
	}
	s.ensureSearchPath()
	return s
}

// IsConnString reports whether s looks like a PostgreSQL URI or DSN.
func IsConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") ||
		strings.HasPrefix(s, "postgresql://") ||
		strings.Contains(s, "host=")
}

func (s *Store) ensureSearchPath() {
	if strings.HasPrefix(s.connStr, "postgres://") || strings.HasPrefix(s.connStr, "postgresql://") {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
		return
	}
	if !hasParam(s.connStr, "search_path") {
		s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
	}
}

// hasParam reports whether a DSN or URL connection string sets key (case-insensitive).
func hasParam(connStr, key string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for k := range u.Query() {
			if strings.EqualFold(k, key) {
				return true
			}
		}
	}
	for _, part := range strings.Fields(connStr) {
		k, _, found := strings.Cut(part, "=")
		if found && strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// ValidateConnString checks that connStr parses as a PostgreSQL URI or DSN and
// carries no password. Passwords belong in the keyring, env or .pgpass.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := u.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}
		return true, nil
	}

	for _, pair := range strings.Fields(connStr) {
		k, _, found := strings.Cut(pair, "=")
		if found && strings.EqualFold(strings.TrimSpace(k), "password") {
			return false, ErrEmbeddedCredentials
		}
	}
	return true, nil
}

// HasEmbeddedCredentials reports whether connStr carries a password.
func HasEmbeddedCredentials(connStr string) bool {
	_, err := ValidateConnString(connStr)
	return goerrors.Is(err, ErrEmbeddedCredentials)
}

func (s *Store) open() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasParam(s.connStr, "sslmode") {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	r, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := r.Apply(func(msg string) { logger.Info(msg, "store", "postgresql") }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.open(); err != nil {
		return err
	}

	r, err := s.runner()
	if err != nil {
		return err
	}
	return r.Validate()
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
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.Postgres), nil
}

// Migrations exposes the schema runner for diagnostics.
func (s *Store) Migrations() (*migration.Runner, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	return s.runner()
}

// GetConfigPath returns a non-sensitive identifier instead of the connection string.
func (s *Store) GetConfigPath() string {
	return "postgresql"
}

func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if s.db == nil {
		return nil, false, &errors.PersistenceError{Op: "get", Key: key, Err: fmt.Errorf("storage not loaded")}
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM "+table+" WHERE key = $1", key).Scan(&value)
	if goerrors.Is(err, sql.ErrNoRows) {
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

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO "+table+" (key, value, updated_at) VALUES ($1, $2, now()) "+
			"ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()",
		key, string(value),
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

	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE key = $1", key); err != nil {
		return &errors.PersistenceError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

func (s *Store) Enumerate(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	if s.db == nil {
		return nil, &errors.PersistenceError{Op: "enumerate", Key: prefix, Err: fmt.Errorf("storage not loaded")}
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM "+table+" WHERE starts_with(key, $1)", prefix)
	if err != nil {
		return nil, &errors.PersistenceError{Op: "enumerate", Key: prefix, Err: err}
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value []byte
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
