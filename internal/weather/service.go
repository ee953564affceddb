package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/homebase/internal/cache"
	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/errors"
	"github.com/julianstephens/homebase/internal/kv"
	"github.com/julianstephens/homebase/internal/settings"
)

// Settings supplies the weather category. *settings.Store implements it.
type Settings interface {
	Weather() settings.Weather
}

type Service struct {
	store      kv.Store
	settings   Settings
	client     *Client
	geoTimeout time.Duration
	now        func() time.Time
}

func NewService(store kv.Store, s Settings, client *Client, geoTimeout time.Duration) *Service {
	if geoTimeout <= 0 {
		geoTimeout = constants.GeolocationTimeout
	}
	return &Service{
		store:      store,
		settings:   s,
		client:     client,
		geoTimeout: geoTimeout,
		now:        time.Now,
	}
}

// LocationKey identifies the place and units a report was fetched for. A
// cached report for another key is never served.
func LocationKey(w settings.Weather) string {
	if w.AutoLocation {
		return w.Units + "|auto"
	}
	loc := settings.Location{
		City:    strings.TrimSpace(w.ManualLocation.City),
		Country: strings.TrimSpace(w.ManualLocation.Country),
	}
	return w.Units + "|city:" + strings.ToLower(loc.Query())
}

// Current returns the cached report while it is younger than
// weather.updateFrequency and was fetched for the current location; otherwise
// it fetches a new one. force skips the freshness check.
func (s *Service) Current(ctx context.Context, force bool) (Report, error) {
	w := s.settings.Weather()
	loc := LocationKey(w)

	var rule cache.Rule = cache.LocationChanged(cache.FixedInterval(w.UpdateInterval()), loc)
	if force {
		rule = cache.Always()
	}
	return cache.Fetch(ctx, s.store, constants.KeyWeatherCache, func(ctx context.Context) (Report, error) {
		return s.fetch(ctx, w)
	}, rule, cache.WithLocation(loc), cache.WithClock(s.now))
}

// LastUpdated returns when the cached report was fetched, zero if none.
func (s *Service) LastUpdated(ctx context.Context) time.Time {
	e, err := cache.Peek[Report](ctx, s.store, constants.KeyWeatherCache)
	if err != nil || e == nil {
		return time.Time{}
	}
	return e.Meta().Time()
}

func (s *Service) fetch(ctx context.Context, w settings.Weather) (Report, error) {
	if s.client == nil || !s.client.HasKey() {
		return Report{}, &errors.ConfigurationError{
			Field:  "weather.api_key",
			Reason: "no OpenWeatherMap API key; run 'homebase keyring set weather <key>' or set HOMEBASE_WEATHER_API_KEY",
		}
	}

	var at Coords
	switch {
	case w.AutoLocation:
		geoCtx, cancel := context.WithTimeout(ctx, s.geoTimeout)
		defer cancel()
		c, err := s.client.Locate(geoCtx)
		if err != nil {
			return Report{}, err
		}
		at = c
	case strings.TrimSpace(w.ManualLocation.City) != "":
		c, err := s.client.CoordsByCity(ctx, w.ManualLocation.Query())
		if err != nil {
			return Report{}, err
		}
		at = c
	default:
		return Report{}, &errors.ConfigurationError{
			Field:  "weather.manualLocation.city",
			Reason: "no location specified; enable autoLocation or set a city",
		}
	}

	r, err := s.client.Current(ctx, at, w.Units)
	if err != nil {
		return Report{}, err
	}
	if r.Name == "" {
		r.Name = fmt.Sprintf("%.2f, %.2f", at.Lat, at.Lon)
	}
	return r, nil
}
