// Package cache gives data producers such as the weather and quote clients a
// persisted last-fetched timestamp and a pluggable freshness rule.
//
// A fresh entry guarantees the producer is not called. A failed refresh leaves
// the previous entry in place for the next attempt. Concurrent fetches of the
// same key are not de-duplicated.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/julianstephens/homebase/internal/errors"
	"github.com/julianstephens/homebase/internal/kv"
	"github.com/julianstephens/homebase/internal/logger"
)

// Entry is the stored form of a cached value.
type Entry[T any] struct {
	Data      T      `json:"data"`
	Timestamp int64  `json:"timestamp"`
	Location  string `json:"location,omitempty"`
}

// Meta returns the rule-visible part of the entry.
func (e Entry[T]) Meta() Meta {
	return Meta{Timestamp: e.Timestamp, Location: e.Location}
}

type rawEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Location  string          `json:"location,omitempty"`
}

type options struct {
	now      func() time.Time
	location string
}

type Option func(*options)

// WithLocation records location alongside the entry written by this fetch.
func WithLocation(location string) Option {
	return func(o *options) { o.location = location }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Producer computes a fresh value.
type Producer[T any] func(ctx context.Context) (T, error)

// Fetch returns the cached value under key when rule says it is fresh, and
// otherwise calls producer and stores its result with the current time.
//
// Producer failures come back as *errors.ProducerError (configuration errors
// pass through unchanged) and leave the stored entry untouched.
func Fetch[T any](ctx context.Context, store kv.Store, key string, producer Producer[T], rule Rule, opts ...Option) (T, error) {
	o := buildOptions(opts)
	now := o.now()

	raw := read(ctx, store, key)
	var meta *Meta
	if raw != nil {
		meta = &Meta{Timestamp: raw.Timestamp, Location: raw.Location}
	}

	if meta != nil && !rule.IsStale(meta, now) {
		var data T
		err := json.Unmarshal(raw.Data, &data)
		if err == nil {
			logger.Debug("Cache hit", "key", key)
			return data, nil
		}
		logger.Warn("Cached value does not decode, refreshing", "key", key, "error", err)
	}

	logger.Debug("Cache miss, producing", "key", key)
	data, err := producer(ctx)
	if err != nil {
		var zero T
		if errors.IsConfiguration(err) || errors.IsProducer(err) {
			return zero, err
		}
		return zero, &errors.ProducerError{Source: key, Err: err}
	}

	entry := Entry[T]{Data: data, Timestamp: now.UnixMilli(), Location: o.location}
	if err := kv.PutTyped(ctx, store, key, entry); err != nil {
		logger.Warn("Failed to write cache entry", "key", key, "error", err)
	}
	return data, nil
}

// Peek returns the stored entry without producing. nil means no usable entry.
func Peek[T any](ctx context.Context, store kv.Store, key string) (*Entry[T], error) {
	raw := read(ctx, store, key)
	if raw == nil {
		return nil, nil
	}
	var data T
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		return nil, &errors.ParseError{Source: key, Err: err}
	}
	return &Entry[T]{Data: data, Timestamp: raw.Timestamp, Location: raw.Location}, nil
}

// Invalidate drops the entry under key.
func Invalidate(ctx context.Context, store kv.Store, key string) error {
	return store.Remove(ctx, key)
}

// read loads the entry under key. Read failures, malformed entries and
// entries whose data is falsy all count as absent.
func read(ctx context.Context, store kv.Store, key string) *rawEntry {
	value, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("Failed to read cache entry", "key", key, "error", err)
		return nil
	}
	if !ok || kv.IsNull(value) {
		return nil
	}

	var raw rawEntry
	if err := json.Unmarshal(value, &raw); err != nil {
		logger.Warn("Ignoring malformed cache entry", "key", key, "error", err)
		return nil
	}
	if isFalsy(raw.Data) {
		return nil
	}
	return &raw
}

func isFalsy(data json.RawMessage) bool {
	t := bytes.TrimSpace(data)
	if len(t) == 0 {
		return true
	}
	switch string(t) {
	case "null", "false", `""`:
		return true
	}
	var n float64
	if t[0] != '"' && json.Unmarshal(t, &n) == nil {
		return n == 0
	}
	return false
}
