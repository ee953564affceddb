// Package quotes serves the quote of the day from quotable.io, filtered by
// the user's keywords, with a small local list for when the API is down.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Quote struct {
	ID      string   `json:"_id,omitempty"`
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags,omitempty"`
}

func (q Quote) String() string {
	s := fmt.Sprintf("%q - %s", q.Content, q.Author)
	if len(q.Tags) > 0 {
		s += " (" + strings.Join(q.Tags, ", ") + ")"
	}
	return s
}

var fallbackQuotes = []Quote{
	{Content: "The best way to predict the future is to create it.", Author: "Peter Drucker"},
	{Content: "Make each day your masterpiece.", Author: "John Wooden"},
	{Content: "The only way to do great work is to love what you do.", Author: "Steve Jobs"},
	{Content: "Every moment is a fresh beginning.", Author: "T.S. Eliot"},
	{Content: "Simplicity is the ultimate sophistication.", Author: "Leonardo da Vinci"},
}

// Fallback picks a random local quote that passes f. If none pass, any local
// quote is returned.
func Fallback(f Filter) Quote {
	var ok []Quote
	for _, q := range fallbackQuotes {
		if f.Allows(q) {
			ok = append(ok, q)
		}
	}
	if len(ok) == 0 {
		ok = fallbackQuotes
	}
	return ok[rand.IntN(len(ok))]
}

// Filter applies quotes.includeKeywords and quotes.excludeKeywords. Matching
// is case-insensitive on content and author.
type Filter struct {
	Include []string
	Exclude []string
}

func (f Filter) Allows(q Quote) bool {
	text := strings.ToLower(q.Content + " " + q.Author)
	for _, kw := range f.Exclude {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return false
		}
	}
	included := false
	wanted := 0
	for _, kw := range f.Include {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		wanted++
		if strings.Contains(text, kw) {
			included = true
		}
	}
	return wanted == 0 || included
}

const maxLength = 100

type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Random fetches one quote tagged with any of tags.
func (c *Client) Random(ctx context.Context, tags []string) (Quote, error) {
	q := url.Values{}
	if len(tags) > 0 {
		q.Set("tags", strings.Join(tags, "|"))
	}
	q.Set("maxLength", strconv.Itoa(maxLength))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/random?"+q.Encode(), nil)
	if err != nil {
		return Quote{}, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to fetch quote: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return Quote{}, fmt.Errorf("failed to fetch quote: status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return Quote{}, fmt.Errorf("failed to decode quote: %w", err)
	}
	return decodeQuote(raw)
}

// decodeQuote accepts a single quote object or a one-element array.
func decodeQuote(raw json.RawMessage) (Quote, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []Quote
		if err := json.Unmarshal(raw, &list); err != nil {
			return Quote{}, fmt.Errorf("failed to decode quote: %w", err)
		}
		if len(list) == 0 {
			return Quote{}, errors.New("no quote returned")
		}
		return list[0], nil
	}
	var q Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return Quote{}, fmt.Errorf("failed to decode quote: %w", err)
	}
	if q.Content == "" {
		return Quote{}, errors.New("no quote returned")
	}
	return q, nil
}
