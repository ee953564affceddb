// Package kv defines the asynchronous-style key-value store the dashboard
// persists everything into, plus the namespacing and typed helpers around it.
//
// Values are opaque JSON documents. Every call may fail; callers must treat a
// failed write as "unknown state" and not assume the mutation happened or didn't.
package kv

import (
	"context"
	"encoding/json"
)

type Store interface {
	// Get returns the raw value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value json.RawMessage, ok bool, err error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Remove(ctx context.Context, key string) error
	// Enumerate returns every key starting with prefix. An empty prefix returns all keys.
	Enumerate(ctx context.Context, prefix string) (map[string]json.RawMessage, error)
	Close() error
}

// Provider is a Store backed by a durable medium with an explicit lifecycle.
type Provider interface {
	Store

	// Init creates the backing medium (directories, schema) if needed.
	Init() error
	// Load opens an already initialized medium.
	Load() error
	// GetConfigPath returns the file path or connection string of the medium.
	GetConfigPath() string
}
