package widgets

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/config"
	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/kv/sqlite"
	"github.com/julianstephens/homebase/internal/pomodoro"
)

// syncBuffer is written from engine callbacks and the command goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func setupTestDB(t *testing.T, configure func(*config.Config)) (*cli.Context, *syncBuffer) {
	t.Helper()
	gokeyring.MockInit()

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	cfg := config.Default()
	cfg.Notify.Tray = false
	cfg.Notify.Bell = false
	if configure != nil {
		configure(cfg)
	}

	ctx := cli.NewContext(cfg, store)
	out := &syncBuffer{}
	ctx.Out = out
	if err := ctx.Load(context.Background()); err != nil {
		t.Fatalf("failed to load context: %v", err)
	}
	t.Cleanup(func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return ctx, out
}

func TestQuoteCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/random" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"_id":     "q1",
			"content": "Stay hungry.",
			"author":  "Stewart Brand",
		})
	}))
	defer srv.Close()

	ctx, out := setupTestDB(t, func(c *config.Config) { c.Quotes.BaseURL = srv.URL })
	if err := (&QuoteCmd{}).Run(ctx); err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if !strings.Contains(out.String(), "Stay hungry.") || !strings.Contains(out.String(), "Stewart Brand") {
		t.Errorf("unexpected output %q", out.String())
	}
	if strings.Contains(out.String(), "offline") {
		t.Error("live quote should not be marked offline")
	}
}

func TestQuoteCmd_Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, out := setupTestDB(t, func(c *config.Config) { c.Quotes.BaseURL = srv.URL })
	if err := (&QuoteCmd{Refresh: true}).Run(ctx); err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if !strings.Contains(out.String(), "(offline quote)") {
		t.Errorf("expected offline marker, got %q", out.String())
	}
}

func TestWeatherCmd(t *testing.T) {
	var calls int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		switch r.URL.Path {
		case "/geo":
			json.NewEncoder(w).Encode(map[string]float64{"latitude": 48.85, "longitude": 2.35})
		case "/weather":
			if r.URL.Query().Get("appid") != "test-key" {
				t.Errorf("missing api key in %s", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"name":    "Paris",
				"sys":     map[string]any{"country": "FR"},
				"weather": []map[string]any{{"main": "Clouds", "description": "broken clouds", "icon": "04d"}},
				"main":    map[string]any{"temp": 61.4, "feels_like": 60.2, "temp_min": 58, "temp_max": 64, "humidity": 70},
				"wind":    map[string]any{"speed": 8.1},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx, out := setupTestDB(t, func(c *config.Config) {
		c.Weather.APIKey = "test-key"
		c.Weather.BaseURL = srv.URL
		c.Weather.GeoURL = srv.URL + "/geo"
	})

	if err := (&WeatherCmd{}).Run(ctx); err != nil {
		t.Fatalf("weather failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Paris, FR", "61°F", "broken clouds", "Humidity 70%", "Updated"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	mu.Lock()
	before := calls
	mu.Unlock()
	if err := (&WeatherCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	after := calls
	mu.Unlock()
	if after != before {
		t.Errorf("second run should be served from cache, made %d extra calls", after-before)
	}
}

func TestWeatherCmd_NoKey(t *testing.T) {
	ctx, _ := setupTestDB(t, nil)
	err := (&WeatherCmd{}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "keyring set weather") {
		t.Errorf("expected a missing key error, got %v", err)
	}
}

func TestGreetCmd(t *testing.T) {
	ctx, out := setupTestDB(t, nil)
	if _, err := ctx.Settings.UpdateCategory(context.Background(), constants.CategoryGlobal, map[string]any{"username": "Ada"}); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Todos.SetDailyGoal(context.Background(), "Finish chapter 3"); err != nil {
		t.Fatal(err)
	}

	if err := (&GreetCmd{}).Run(ctx); err != nil {
		t.Fatalf("greet failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Ada") || !strings.Contains(got, "Today's focus: Finish chapter 3") {
		t.Errorf("unexpected greeting:\n%s", got)
	}
}

type manualTimer struct{}

func (manualTimer) Stop() bool { return true }

// manualScheduler queues callbacks for the test to fire. Stale callbacks
// are ignored by the engine.
type manualScheduler struct {
	fns chan func()
}

func (s *manualScheduler) After(_ time.Duration, fn func()) pomodoro.Timer {
	s.fns <- fn
	return manualTimer{}
}

func runPomodoro(t *testing.T, ctx *cli.Context, cmd *PomodoroCmd, sched *manualScheduler) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- cmd.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("pomodoro failed: %v", err)
			}
			return
		case fn := <-sched.fns:
			fn()
		case <-deadline:
			t.Fatal("pomodoro did not finish")
		}
	}
}

func TestPomodoroCmd(t *testing.T) {
	ctx, out := setupTestDB(t, nil)
	if _, err := ctx.Settings.UpdateCategory(context.Background(), constants.CategoryPomodoro, map[string]any{
		"focusDuration":      1,
		"shortBreakDuration": 1,
	}); err != nil {
		t.Fatal(err)
	}

	sched := &manualScheduler{fns: make(chan func(), 16)}
	cmd := &PomodoroCmd{Mode: "focus", Task: "Write tests", Intervals: 2, sched: sched}
	runPomodoro(t, ctx, cmd, sched)

	got := out.String()
	for _, want := range []string{
		"Focus Time started (01:00)",
		"Focus session complete!",
		"Break complete!",
		"2 interval(s) complete, 1 focus session(s)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	st := ctx.Pomodoro().State()
	if st.Running || st.Mode != pomodoro.Focus {
		t.Errorf("final state = %+v, want stopped focus", st)
	}
}

func TestPomodoroCmd_Stop(t *testing.T) {
	ctx, out := setupTestDB(t, nil)
	stop := make(chan struct{})
	close(stop)

	// ticks stay queued, so the interval never advances
	sched := &manualScheduler{fns: make(chan func(), 16)}
	cmd := &PomodoroCmd{Mode: "shortBreak", Intervals: 1, sched: sched, stop: stop}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("pomodoro failed: %v", err)
	}

	if !strings.Contains(out.String(), "Stopped with 05:00 left") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
	if ctx.Pomodoro().State().Running {
		t.Error("engine should be paused after stop")
	}
}

func TestPomodoroCmd_InvalidIntervals(t *testing.T) {
	ctx, _ := setupTestDB(t, nil)
	cmd := &PomodoroCmd{Mode: "focus", Intervals: 0}
	if err := cmd.Run(ctx); err == nil {
		t.Error("zero intervals should be rejected")
	}
}

type recordingLauncher struct {
	opened []string
}

func (l *recordingLauncher) Open(_ context.Context, target string) error {
	l.opened = append(l.opened, target)
	return nil
}

func TestSearchCmd(t *testing.T) {
	ctx, out := setupTestDB(t, nil)
	l := &recordingLauncher{}

	cmd := &SearchCmd{Query: []string{"golang", "generics"}, launcher: l}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	want := "https://www.google.com/search?q=golang+generics"
	if len(l.opened) != 1 || l.opened[0] != want {
		t.Errorf("opened %v, want [%s]", l.opened, want)
	}
	if !strings.Contains(out.String(), want) {
		t.Errorf("unexpected output %q", out.String())
	}

	empty := &SearchCmd{Query: []string{"  "}, launcher: l}
	if err := empty.Run(ctx); err == nil {
		t.Error("empty query should fail")
	}
}
