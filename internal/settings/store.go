package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/errors"
	"github.com/julianstephens/homebase/internal/kv"
	"github.com/julianstephens/homebase/internal/logger"
)

// Store holds the canonical settings document. Readers always receive
// copies; the document only changes through Load, UpdateCategory, Reset and
// Import, each of which notifies subscribers afterwards.
type Store struct {
	kv kv.Store

	mu  sync.RWMutex
	doc Document

	obsMu     sync.Mutex
	observers map[int]func(Document)
	nextObsID int
}

// NewStore returns a store over s primed with the default document.
// Call Load to pick up persisted settings.
func NewStore(s kv.Store) *Store {
	return &Store{
		kv:        s,
		doc:       Defaults(),
		observers: make(map[int]func(Document)),
	}
}

// Load reads the persisted document and merges it over the defaults. A failed
// or unreadable read falls back to the defaults; only a done ctx is an error.
func (s *Store) Load(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := Defaults()
	raw, ok, err := s.kv.Get(ctx, constants.KeyAppSettings)
	switch {
	case err != nil:
		logger.Warn("Failed to read saved settings, using defaults", "error", err)
	case ok && !kv.IsNull(raw):
		saved, perr := decodeObject(raw)
		if perr != nil {
			logger.Warn("Ignoring malformed saved settings", "error", perr)
			break
		}
		doc = DeepMerge(doc, saved)
	}

	s.mu.Lock()
	s.doc = doc
	out := s.doc.Clone()
	s.mu.Unlock()

	s.notify(out)
	return out, nil
}

// Get returns a deep copy of the current document.
func (s *Store) Get() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

func (s *Store) Pomodoro() Pomodoro { return PomodoroOf(s.Get()) }
func (s *Store) Weather() Weather   { return WeatherOf(s.Get()) }
func (s *Store) Quotes() Quotes     { return QuotesOf(s.Get()) }
func (s *Store) Layout() Layout     { return LayoutOf(s.Get()) }
func (s *Store) Global() Global     { return GlobalOf(s.Get()) }

// UpdateCategory shallow-merges partial into one top-level category and
// persists the whole document. A failed write is logged, not returned: the
// in-memory document has already advanced.
func (s *Store) UpdateCategory(ctx context.Context, category string, partial map[string]any) (Document, error) {
	if !IsCategory(category) {
		return nil, &errors.ConfigurationError{Field: category, Reason: "unknown settings category"}
	}
	fields, err := normalize(partial)
	if err != nil {
		return nil, &errors.ConfigurationError{Field: category, Reason: err.Error()}
	}

	s.mu.Lock()
	next := s.doc.Clone()
	cat, _ := asRecord(next[category])
	if cat == nil {
		cat = make(map[string]any)
	}
	for k, v := range fields {
		if v == nil {
			continue
		}
		cat[k] = v
	}
	next[category] = cat
	s.doc = next
	out := s.doc.Clone()
	s.mu.Unlock()

	s.persist(ctx, out)
	s.notify(out.Clone())
	return out, nil
}

// Reset replaces the document with the defaults in memory and in storage.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.doc = Defaults()
	out := s.doc.Clone()
	s.mu.Unlock()

	err := s.save(ctx, out)
	s.notify(out)
	return err
}

// Export returns the current document as indented JSON.
func (s *Store) Export() (string, error) {
	data, err := json.MarshalIndent(s.Get(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize settings: %w", err)
	}
	return string(data), nil
}

// Import parses a JSON settings document, heals it against the defaults and
// makes it current. Malformed input or a non-object root is a ParseError and
// leaves the current document untouched.
func (s *Store) Import(ctx context.Context, data string) (Document, error) {
	parsed, err := decodeObject([]byte(data))
	if err != nil {
		return nil, err
	}
	return s.replace(ctx, DeepMerge(Defaults(), parsed)), nil
}

func (s *Store) replace(ctx context.Context, doc Document) Document {
	s.mu.Lock()
	s.doc = doc
	out := s.doc.Clone()
	s.mu.Unlock()

	s.persist(ctx, out)
	s.notify(out.Clone())
	return out
}

// Subscribe registers fn to receive a copy of the document after every change.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Document)) func() {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Store) notify(doc Document) {
	s.obsMu.Lock()
	fns := make([]func(Document), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(doc.Clone())
	}
}

func (s *Store) save(ctx context.Context, doc Document) error {
	return kv.PutTyped(ctx, s.kv, constants.KeyAppSettings, doc)
}

func (s *Store) persist(ctx context.Context, doc Document) {
	if err := s.save(ctx, doc); err != nil {
		logger.Warn("Failed to persist settings", "error", err)
	}
}

func decodeObject(raw []byte) (Document, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &errors.ParseError{Source: "settings", Err: err}
	}
	rec, ok := v.(map[string]any)
	if !ok {
		return nil, &errors.ParseError{Source: "settings", Err: fmt.Errorf("expected a JSON object, got %T", v)}
	}
	return Document(rec), nil
}

// normalize round-trips Go values through JSON so the document only ever
// holds the types encoding/json produces.
func normalize(partial map[string]any) (map[string]any, error) {
	data, err := json.Marshal(partial)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
