// Package widget tracks the load state of cache-backed dashboard widgets.
package widget

import (
	"context"
	goerrors "errors"
	"sync"
	"time"

	"github.com/julianstephens/homebase/internal/errors"
	"github.com/julianstephens/homebase/internal/logger"
)

type Status int

const (
	Loading Status = iota
	Failed
	Ready
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "error"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// State is a snapshot of a Loader. Data is only meaningful when Status is Ready.
type State[T any] struct {
	Status    Status
	Data      T
	Err       error
	UpdatedAt time.Time
}

// Message is the text shown in place of the widget body.
func (s State[T]) Message() string {
	switch s.Status {
	case Loading:
		return "Loading..."
	case Failed:
		var cfg *errors.ConfigurationError
		if goerrors.As(s.Err, &cfg) {
			return cfg.Reason
		}
		if s.Err != nil {
			return s.Err.Error()
		}
		return "Something went wrong"
	}
	return ""
}

// LoadFunc produces widget data. force asks the producer to skip its cache.
type LoadFunc[T any] func(ctx context.Context, force bool) (T, error)

// Loader runs a LoadFunc and remembers the outcome. Failures are never
// retried on their own; the user retries explicitly.
type Loader[T any] struct {
	name string
	load LoadFunc[T]
	now  func() time.Time

	mu    sync.Mutex
	state State[T]
}

func NewLoader[T any](name string, load LoadFunc[T]) *Loader[T] {
	return &Loader[T]{name: name, load: load, now: time.Now}
}

func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Load fetches through the cache.
func (l *Loader[T]) Load(ctx context.Context) State[T] {
	return l.run(ctx, false)
}

// Retry fetches bypassing the cache, as the widget's retry and refresh
// buttons do.
func (l *Loader[T]) Retry(ctx context.Context) State[T] {
	return l.run(ctx, true)
}

func (l *Loader[T]) run(ctx context.Context, force bool) State[T] {
	l.mu.Lock()
	prev := l.state
	l.state = State[T]{Status: Loading, Data: prev.Data, UpdatedAt: prev.UpdatedAt}
	l.mu.Unlock()

	data, err := l.load(ctx, force)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		logger.Warn("Widget failed to load", "widget", l.name, "error", err)
		l.state = State[T]{Status: Failed, Err: err, UpdatedAt: prev.UpdatedAt}
		return l.state
	}
	l.state = State[T]{Status: Ready, Data: data, UpdatedAt: l.now()}
	return l.state
}
