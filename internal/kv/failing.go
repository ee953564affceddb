package kv

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"sync"

	"github.com/julianstephens/homebase/internal/errors"
)

// ErrInjected is the cause reported by a FailingStore.
var ErrInjected = goerrors.New("injected storage failure")

// FailingStore wraps a store and fails selected operations on demand. It
// simulates quota and I/O failures of the backing medium.
type FailingStore struct {
	Store

	mu       sync.Mutex
	failGet  bool
	failSet  bool
	failEnum bool
	SetCalls int
	GetCalls int
}

func NewFailingStore(inner Store) *FailingStore {
	return &FailingStore{Store: inner}
}

// FailReads toggles failures for Get and Enumerate.
func (f *FailingStore) FailReads(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet = v
	f.failEnum = v
}

// FailWrites toggles failures for Set.
func (f *FailingStore) FailWrites(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet = v
}

func (f *FailingStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	f.mu.Lock()
	f.GetCalls++
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, false, &errors.PersistenceError{Op: "get", Key: key, Err: ErrInjected}
	}
	return f.Store.Get(ctx, key)
}

func (f *FailingStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	f.mu.Lock()
	f.SetCalls++
	fail := f.failSet
	f.mu.Unlock()
	if fail {
		return &errors.PersistenceError{Op: "set", Key: key, Err: ErrInjected}
	}
	return f.Store.Set(ctx, key, value)
}

func (f *FailingStore) Enumerate(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	f.mu.Lock()
	fail := f.failEnum
	f.mu.Unlock()
	if fail {
		return nil, &errors.PersistenceError{Op: "enumerate", Key: prefix, Err: ErrInjected}
	}
	return f.Store.Enumerate(ctx, prefix)
}
