// Package todo keeps the dashboard's todo list and the daily focus goal.
package todo

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/kv"
	"github.com/julianstephens/homebase/internal/logger"
)

var (
	ErrEmpty     = goerrors.New("todo text is empty")
	ErrDuplicate = goerrors.New("a todo with that text already exists")
	ErrNotFound  = goerrors.New("todo not found")
)

type Item struct {
	ID          int64  `json:"id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"createdAt,omitempty"`
	IsDailyGoal bool   `json:"isDailyGoal,omitempty"`
	Date        string `json:"date,omitempty"`
}

// Goal is the day's main focus.
type Goal struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

type focusPrompt struct {
	Date string `json:"date"`
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// OnDelete registers fn to run after a todo is removed. The dashboard uses it
// to reset the pomodoro session count.
func OnDelete(fn func()) Option {
	return func(s *Service) { s.onDelete = fn }
}

type Service struct {
	store    kv.Store
	now      func() time.Time
	onDelete func()

	mu     sync.Mutex
	lastID int64
}

func NewService(store kv.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the stored todos in order. A missing list is empty.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add appends a todo. Text is trimmed; blank text and texts matching an
// existing todo (ignoring case) are rejected.
func (s *Service) Add(ctx context.Context, text string) (Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Item{}, ErrEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return Item{}, err
	}
	for _, it := range items {
		if strings.EqualFold(strings.TrimSpace(it.Text), text) {
			return Item{}, ErrDuplicate
		}
	}

	now := s.now()
	item := Item{
		ID:        s.nextID(now, items),
		Text:      text,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
	if err := s.save(ctx, append(items, item)); err != nil {
		return Item{}, err
	}
	logger.Debug("Todo added", "id", item.ID)
	return item, nil
}

// Toggle flips the completed flag of the todo with id.
func (s *Service) Toggle(ctx context.Context, id int64) (Item, error) {
	return s.update(ctx, id, func(it *Item) { it.Completed = !it.Completed })
}

func (s *Service) SetCompleted(ctx context.Context, id int64, done bool) (Item, error) {
	return s.update(ctx, id, func(it *Item) { it.Completed = done })
}

func (s *Service) update(ctx context.Context, id int64, fn func(*Item)) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return Item{}, err
	}
	for i := range items {
		if items[i].ID == id {
			fn(&items[i])
			if err := s.save(ctx, items); err != nil {
				return Item{}, err
			}
			return items[i], nil
		}
	}
	return Item{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// Delete removes the todo with id and then runs the OnDelete hook.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	items, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	kept := items[:0:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	err = s.save(ctx, kept)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if s.onDelete != nil {
		s.onDelete()
	}
	return nil
}

// SetDailyGoal records text as today's goal and pins it as the first todo,
// replacing any previous goal todo. It also marks today's prompt as answered.
func (s *Service) SetDailyGoal(ctx context.Context, text string) (Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Item{}, ErrEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := now.Format(constants.DateFormat)
	if err := kv.PutTyped(ctx, s.store, constants.KeyDailyGoal, Goal{Text: text, Date: today}); err != nil {
		return Item{}, err
	}
	if err := kv.PutTyped(ctx, s.store, constants.KeyLastFocusPrompt, focusPrompt{Date: today}); err != nil {
		return Item{}, err
	}

	items, err := s.load(ctx)
	if err != nil {
		return Item{}, err
	}
	goal := Item{
		ID:          s.nextID(now, items),
		Text:        text,
		CreatedAt:   now.UTC().Format(time.RFC3339),
		IsDailyGoal: true,
		Date:        today,
	}
	out := []Item{goal}
	for _, it := range items {
		if !it.IsDailyGoal {
			out = append(out, it)
		}
	}
	if err := s.save(ctx, out); err != nil {
		return Item{}, err
	}
	return goal, nil
}

// DailyGoal returns today's goal. ok is false when none was set today.
func (s *Service) DailyGoal(ctx context.Context) (Goal, bool, error) {
	g, ok, err := kv.GetTyped[Goal](ctx, s.store, constants.KeyDailyGoal)
	if err != nil || !ok {
		return Goal{}, false, err
	}
	if g.Date != s.now().Format(constants.DateFormat) {
		return Goal{}, false, nil
	}
	return g, true, nil
}

// DailyCheck reports whether the "main focus for today" prompt is due at now,
// which is the case until a goal has been set on that calendar day.
func (s *Service) DailyCheck(ctx context.Context, now time.Time) (bool, error) {
	p, ok, err := kv.GetTyped[focusPrompt](ctx, s.store, constants.KeyLastFocusPrompt)
	if err != nil {
		return false, err
	}
	return !ok || p.Date != now.Format(constants.DateFormat), nil
}

func (s *Service) load(ctx context.Context) ([]Item, error) {
	items, ok, err := kv.GetTyped[[]Item](ctx, s.store, constants.KeyTodos)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Item{}, nil
	}
	return items, nil
}

func (s *Service) save(ctx context.Context, items []Item) error {
	return kv.PutTyped(ctx, s.store, constants.KeyTodos, items)
}

// nextID returns the current time in milliseconds, bumped past every id
// already handed out or stored.
func (s *Service) nextID(now time.Time, items []Item) int64 {
	id := now.UnixMilli()
	floor := s.lastID
	for _, it := range items {
		if it.ID > floor {
			floor = it.ID
		}
	}
	if id <= floor {
		id = floor + 1
	}
	s.lastID = id
	return id
}
