// Package weather fetches current conditions from OpenWeatherMap and caches
// them per location.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Readings struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
}

type Wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

type Sys struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// Report is the subset of the current-weather payload the dashboard shows.
type Report struct {
	Name       string      `json:"name"`
	Coord      Coords      `json:"coord"`
	Conditions []Condition `json:"weather"`
	Main       Readings    `json:"main"`
	Wind       Wind        `json:"wind"`
	Sys        Sys         `json:"sys"`
	Visibility int         `json:"visibility"`
	Dt         int64       `json:"dt"`
	Units      string      `json:"units,omitempty"`
}

// Condition returns the primary condition, or a zero value.
func (r Report) Condition() Condition {
	if len(r.Conditions) == 0 {
		return Condition{}
	}
	return r.Conditions[0]
}

var ErrCityNotFound = errors.New("city not found")

type Client struct {
	http    *http.Client
	baseURL string
	geoURL  string
	apiKey  string
}

func NewClient(baseURL, geoURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		geoURL:  geoURL,
		apiKey:  apiKey,
	}
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// Current fetches conditions at coords in the given units ("imperial" or "metric").
func (c *Client) Current(ctx context.Context, at Coords, units string) (Report, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	q.Set("units", units)
	q.Set("appid", c.apiKey)

	var r Report
	if err := c.getJSON(ctx, c.baseURL+"/weather?"+q.Encode(), &r); err != nil {
		return Report{}, fmt.Errorf("failed to fetch weather data: %w", err)
	}
	r.Units = units
	return r, nil
}

// CoordsByCity resolves a "City" or "City,CC" query.
func (c *Client) CoordsByCity(ctx context.Context, city string) (Coords, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)

	var r struct {
		Coord Coords `json:"coord"`
	}
	err := c.getJSON(ctx, c.baseURL+"/weather?"+q.Encode(), &r)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		return Coords{}, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	if err != nil {
		return Coords{}, err
	}
	return r.Coord, nil
}

// Locate estimates the machine's position from its public IP.
func (c *Client) Locate(ctx context.Context) (Coords, error) {
	var r struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Lat       *float64 `json:"lat"`
		Lon       *float64 `json:"lon"`
	}
	if err := c.getJSON(ctx, c.geoURL, &r); err != nil {
		return Coords{}, fmt.Errorf("failed to get location: %w", err)
	}
	switch {
	case r.Latitude != nil && r.Longitude != nil:
		return Coords{Lat: *r.Latitude, Lon: *r.Longitude}, nil
	case r.Lat != nil && r.Lon != nil:
		return Coords{Lat: *r.Lat, Lon: *r.Lon}, nil
	}
	return Coords{}, errors.New("failed to get location: response has no coordinates")
}

// StatusError is a non-2xx API response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Code)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Code, e.Message)
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		var apiErr struct {
			Message string `json:"message"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return &StatusError{Code: res.StatusCode, Message: msg}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
