package quotes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/errors"
	"github.com/julianstephens/homebase/internal/kv"
	"github.com/julianstephens/homebase/internal/settings"
)

type fakeQuotable struct {
	calls  atomic.Int32
	status int
	quotes []Quote

	mu   sync.Mutex
	tags string
}

func (f *fakeQuotable) lastTags() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags
}

func (f *fakeQuotable) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := f.calls.Add(1)
		f.mu.Lock()
		f.tags = r.URL.Query().Get("tags")
		f.mu.Unlock()
		if r.URL.Query().Get("maxLength") != "100" {
			t.Errorf("expected maxLength=100, got %q", r.URL.Query().Get("maxLength"))
		}
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		q := f.quotes[int(n-1)%len(f.quotes)]
		json.NewEncoder(w).Encode(q)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type staticSettings struct {
	q settings.Quotes
}

func (s *staticSettings) Quotes() settings.Quotes { return s.q }

func defaultQuotes() settings.Quotes {
	return settings.QuotesOf(settings.Defaults())
}

func newService(t *testing.T, api *fakeQuotable, q settings.Quotes) (*Service, kv.Store) {
	srv := api.server(t)
	store := kv.NewMemoryStore()
	return NewService(store, &staticSettings{q: q}, NewClient(srv.URL, time.Second)), store
}

func TestCurrentUsesTagsAndCaches(t *testing.T) {
	api := &fakeQuotable{quotes: []Quote{{Content: "Ship it.", Author: "Anon", Tags: []string{"technical"}}}}
	svc, _ := newService(t, api, defaultQuotes())
	ctx := context.Background()

	q, err := svc.Current(ctx, false)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if q.Content != "Ship it." {
		t.Errorf("unexpected quote %+v", q)
	}
	if api.lastTags() != "motivational|technical|trivia" {
		t.Errorf("expected pipe-joined tags, got %q", api.lastTags())
	}

	if _, err := svc.Current(ctx, false); err != nil {
		t.Fatal(err)
	}
	if api.calls.Load() != 1 {
		t.Errorf("daily quote must be served from cache, got %d calls", api.calls.Load())
	}

	if _, err := svc.Current(ctx, true); err != nil {
		t.Fatal(err)
	}
	if api.calls.Load() != 2 {
		t.Errorf("forced refresh must fetch, got %d calls", api.calls.Load())
	}
}

func TestDailyRollover(t *testing.T) {
	api := &fakeQuotable{quotes: []Quote{{Content: "one", Author: "A"}, {Content: "two", Author: "B"}}}
	svc, _ := newService(t, api, defaultQuotes())
	ctx := context.Background()

	day := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return day }
	if _, err := svc.Current(ctx, false); err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return day.Add(24 * time.Hour) }
	q, err := svc.Current(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if q.Content != "two" {
		t.Errorf("expected a new quote on the next day, got %q", q.Content)
	}
}

func TestKeywordFilter(t *testing.T) {
	api := &fakeQuotable{quotes: []Quote{
		{Content: "War is hell.", Author: "Sherman"},
		{Content: "Code is poetry.", Author: "WordPress"},
	}}
	q := defaultQuotes()
	q.ExcludeKeywords = []string{"war"}
	svc, _ := newService(t, api, q)

	got, err := svc.Current(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "Code is poetry." {
		t.Errorf("expected excluded quote to be skipped, got %q", got.Content)
	}
}

func TestNoMatchIsProducerError(t *testing.T) {
	api := &fakeQuotable{quotes: []Quote{{Content: "War is hell.", Author: "Sherman"}}}
	q := defaultQuotes()
	q.ExcludeKeywords = []string{"hell"}
	svc, _ := newService(t, api, q)

	_, err := svc.Current(context.Background(), false)
	if !errors.IsProducer(err) {
		t.Errorf("expected ProducerError, got %v", err)
	}
	if api.calls.Load() != filterAttempts {
		t.Errorf("expected %d attempts, got %d", filterAttempts, api.calls.Load())
	}
}

func TestFallbackOnlyWithoutCache(t *testing.T) {
	ctx := context.Background()
	api := &fakeQuotable{status: http.StatusServiceUnavailable}
	svc, store := newService(t, api, defaultQuotes())

	q, fallback, err := svc.CurrentOrFallback(ctx, false)
	if err != nil || !fallback || q.Content == "" {
		t.Fatalf("expected local fallback, got %+v fallback=%v err=%v", q, fallback, err)
	}

	if err := kv.PutTyped(ctx, store, constants.KeyQuoteCache, map[string]any{
		"data":      Quote{Content: "cached", Author: "C"},
		"timestamp": time.Now().Add(-48 * time.Hour).UnixMilli(),
	}); err != nil {
		t.Fatal(err)
	}
	_, fallback, err = svc.CurrentOrFallback(ctx, false)
	if err == nil || fallback {
		t.Errorf("failed refresh over a cached quote must surface the error, got fallback=%v err=%v", fallback, err)
	}
}

func TestFilterAllows(t *testing.T) {
	q := Quote{Content: "Simplicity is the ultimate sophistication.", Author: "Leonardo da Vinci"}
	tests := []struct {
		name string
		f    Filter
		want bool
	}{
		{"no filters", Filter{}, true},
		{"include hit", Filter{Include: []string{"SIMPLICITY"}}, true},
		{"include author", Filter{Include: []string{"vinci"}}, true},
		{"include miss", Filter{Include: []string{"courage"}}, false},
		{"exclude hit", Filter{Exclude: []string{"ultimate"}}, false},
		{"blank keywords ignored", Filter{Include: []string{" "}, Exclude: []string{""}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Allows(q); got != tt.want {
				t.Errorf("Allows() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFallbackRespectsFilter(t *testing.T) {
	for i := 0; i < 20; i++ {
		q := Fallback(Filter{Include: []string{"masterpiece"}})
		if q.Author != "John Wooden" {
			t.Fatalf("expected filtered fallback, got %+v", q)
		}
	}
	if q := Fallback(Filter{Include: []string{"nothing matches this"}}); q.Content == "" {
		t.Error("expected some fallback quote")
	}
}

func TestDecodeQuoteArray(t *testing.T) {
	q, err := decodeQuote(json.RawMessage(`[{"content":"a","author":"b"}]`))
	if err != nil || q.Content != "a" {
		t.Errorf("unexpected %+v %v", q, err)
	}
	if _, err := decodeQuote(json.RawMessage(`[]`)); err == nil {
		t.Error("expected error for empty list")
	}
}
