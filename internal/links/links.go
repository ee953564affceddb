// Package links keeps the quick-access bookmarks shown on the dashboard.
package links

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/kv"
	"github.com/julianstephens/homebase/internal/logger"
)

// DefaultColor is used when a link is saved without one.
const DefaultColor = "#3B82F6"

var (
	ErrNameRequired = goerrors.New("link name is required")
	ErrInvalidURL   = goerrors.New("link URL must be an absolute http or https URL")
	ErrInvalidColor = goerrors.New("link color must be a hex color like #3B82F6")
	ErrNotFound     = goerrors.New("link not found")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Link struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// normalize trims the fields, fills in the default color and checks the rest.
func (l *Link) normalize() error {
	l.Name = strings.TrimSpace(l.Name)
	l.URL = strings.TrimSpace(l.URL)
	l.Icon = strings.TrimSpace(l.Icon)
	l.Color = strings.TrimSpace(l.Color)

	if l.Name == "" {
		return ErrNameRequired
	}
	u, err := url.Parse(l.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, l.URL)
	}
	if l.Color == "" {
		l.Color = DefaultColor
	}
	if !hexColor.MatchString(l.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, l.Color)
	}
	return nil
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	store kv.Store
	now   func() time.Time

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

// List returns the stored links in insertion order.
func (s *Service) List(ctx context.Context) ([]Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Link, error) {
	links, err := s.List(ctx)
	if err != nil {
		return Link{}, err
	}
	for _, l := range links {
		if l.ID == id {
			return l, nil
		}
	}
	return Link{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// Add stores l under a fresh id and returns it. Any id set by the caller is
// ignored.
func (s *Service) Add(ctx context.Context, l Link) (Link, error) {
	if err := l.normalize(); err != nil {
		return Link{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.load(ctx)
	if err != nil {
		return Link{}, err
	}
	l.ID = s.nextID(s.now(), links)
	if err := s.save(ctx, append(links, l)); err != nil {
		return Link{}, err
	}
	logger.Debug("Link added", "id", l.ID, "name", l.Name)
	return l, nil
}

// Edit applies fn to the link with id and saves it in place. The id cannot
// be changed.
func (s *Service) Edit(ctx context.Context, id int64, fn func(*Link)) (Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.load(ctx)
	if err != nil {
		return Link{}, err
	}
	for i := range links {
		if links[i].ID != id {
			continue
		}
		edited := links[i]
		fn(&edited)
		edited.ID = id
		if err := edited.normalize(); err != nil {
			return Link{}, err
		}
		links[i] = edited
		if err := s.save(ctx, links); err != nil {
			return Link{}, err
		}
		return edited, nil
	}
	return Link{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := links[:0:0]
	for _, l := range links {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(links) {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return s.save(ctx, kept)
}

func (s *Service) load(ctx context.Context) ([]Link, error) {
	links, ok, err := kv.GetTyped[[]Link](ctx, s.store, constants.KeyQuickAccessLinks)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Link{}, nil
	}
	return links, nil
}

func (s *Service) save(ctx context.Context, links []Link) error {
	return kv.PutTyped(ctx, s.store, constants.KeyQuickAccessLinks, links)
}

// nextID is a millisecond timestamp, bumped past every id already in use.
func (s *Service) nextID(now time.Time, links []Link) int64 {
	id := now.UnixMilli()
	floor := s.lastID
	for _, l := range links {
		if l.ID > floor {
			floor = l.ID
		}
	}
	if id <= floor {
		id = floor + 1
	}
	s.lastID = id
	return id
}
