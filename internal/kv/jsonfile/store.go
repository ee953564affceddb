// Package jsonfile persists the key-value store as a single indented JSON
// object. Handy for inspecting state by hand; not safe for concurrent processes.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/julianstephens/homebase/internal/errors"
)

type Store struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
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

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]json.RawMessage)
	return s.save()
}

func (s *Store) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'homebase init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	data := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &data); err != nil {
		return &errors.ParseError{Source: s.path, Err: err}
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// save writes the whole document. Caller holds mu.
func (s *Store) save() error {
	out, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, false, &errors.PersistenceError{Op: "get", Key: key, Err: fmt.Errorf("storage not loaded")}
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append(json.RawMessage(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return &errors.PersistenceError{Op: "set", Key: key, Err: fmt.Errorf("value is not valid JSON")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return &errors.PersistenceError{Op: "set", Key: key, Err: fmt.Errorf("storage not loaded")}
	}
	prev, had := s.data[key]
	s.data[key] = append(json.RawMessage(nil), value...)
	if err := s.save(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return &errors.PersistenceError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return &errors.PersistenceError{Op: "remove", Key: key, Err: fmt.Errorf("storage not loaded")}
	}
	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)
	if err := s.save(); err != nil {
		s.data[key] = prev
		return &errors.PersistenceError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

func (s *Store) Enumerate(_ context.Context, prefix string) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, &errors.PersistenceError{Op: "enumerate", Key: prefix, Err: fmt.Errorf("storage not loaded")}
	}
	out := make(map[string]json.RawMessage)
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			out[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out, nil
}
