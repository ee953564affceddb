package quotes

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/homebase/internal/cache"
	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/kv"
	"github.com/julianstephens/homebase/internal/logger"
	"github.com/julianstephens/homebase/internal/settings"
)

// ErrNoMatch means every fetched quote was rejected by the keyword filter.
var ErrNoMatch = errors.New("no quote matched the keyword filters")

const filterAttempts = 3

type Settings interface {
	Quotes() settings.Quotes
}

type Service struct {
	store    kv.Store
	settings Settings
	client   *Client
	now      func() time.Time
}

func NewService(store kv.Store, s Settings, client *Client) *Service {
	return &Service{
		store:    store,
		settings: s,
		client:   client,
		now:      time.Now,
	}
}

// Current returns the cached quote while quotes.updateFrequency says it is
// fresh, and fetches a new one otherwise. force skips the freshness check.
func (s *Service) Current(ctx context.Context, force bool) (Quote, error) {
	q := s.settings.Quotes()
	rule := cache.QuoteFrequency(q.UpdateFrequency)
	if force {
		rule = cache.Always()
	}
	filter := Filter{Include: q.IncludeKeywords, Exclude: q.ExcludeKeywords}

	return cache.Fetch(ctx, s.store, constants.KeyQuoteCache, func(ctx context.Context) (Quote, error) {
		for i := 0; i < filterAttempts; i++ {
			quote, err := s.client.Random(ctx, q.Categories)
			if err != nil {
				return Quote{}, err
			}
			if filter.Allows(quote) {
				return quote, nil
			}
			logger.Debug("Quote rejected by keyword filter", "author", quote.Author)
		}
		return Quote{}, ErrNoMatch
	}, rule, cache.WithClock(s.now))
}

// CurrentOrFallback is Current, except that a failed fetch with nothing
// cached yields a local quote. fallback reports whether that happened. A
// failed refresh over an existing entry is still returned as an error.
func (s *Service) CurrentOrFallback(ctx context.Context, force bool) (quote Quote, fallback bool, err error) {
	quote, err = s.Current(ctx, force)
	if err == nil {
		return quote, false, nil
	}

	if prev, _ := cache.Peek[Quote](ctx, s.store, constants.KeyQuoteCache); prev != nil {
		return Quote{}, false, err
	}
	logger.Warn("Falling back to local quotes", "error", err)
	q := s.settings.Quotes()
	return Fallback(Filter{Include: q.IncludeKeywords, Exclude: q.ExcludeKeywords}), true, nil
}
