package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/homebase/internal/errors"
)

// GetTyped reads key and decodes it into T. ok is false when the key is absent
// or holds JSON null.
func GetTyped[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var zero T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	if IsNull(raw) {
		return zero, false, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, &errors.ParseError{Source: key, Err: err}
	}
	return v, true, nil
}

// PutTyped encodes value as JSON and stores it under key.
func PutTyped[T any](ctx context.Context, s Store, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: marshal value for %q: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// IsNull reports whether raw is empty or the JSON literal null.
func IsNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || string(t) == "null"
}
