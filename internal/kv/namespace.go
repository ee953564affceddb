package kv

import (
	"context"
	"encoding/json"
	"strings"
)

// Namespaced prefixes every key before handing it to the wrapped store, so the
// dashboard can share a medium with other data.
type Namespaced struct {
	inner  Store
	prefix string
}

// Namespace wraps s so that all keys are stored as prefix+key.
func Namespace(s Store, prefix string) *Namespaced {
	return &Namespaced{inner: s, prefix: prefix}
}

func (n *Namespaced) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key string, value json.RawMessage) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *Namespaced) Remove(ctx context.Context, key string) error {
	return n.inner.Remove(ctx, n.prefix+key)
}

// Enumerate returns matching keys with the namespace prefix stripped.
func (n *Namespaced) Enumerate(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	all, err := n.inner.Enumerate(ctx, n.prefix+prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(all))
	for k, v := range all {
		out[strings.TrimPrefix(k, n.prefix)] = v
	}
	return out, nil
}

// Clear removes every key in the namespace and nothing else.
func (n *Namespaced) Clear(ctx context.Context) error {
	all, err := n.inner.Enumerate(ctx, n.prefix)
	if err != nil {
		return err
	}
	for k := range all {
		if err := n.inner.Remove(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (n *Namespaced) Close() error {
	return n.inner.Close()
}
