package settings

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/config"
	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/kv/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	cfg := config.Default()
	cfg.Notify.Tray = false
	cfg.Notify.Bell = false

	ctx := cli.NewContext(cfg, store)
	out := &bytes.Buffer{}
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

func TestSettingsShowCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	cmd := &SettingsShowCmd{Category: constants.CategoryPomodoro}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings show failed: %v", err)
	}
	if !strings.Contains(out.String(), `"focusDuration": 25`) {
		t.Errorf("output missing focusDuration:\n%s", out.String())
	}
	if strings.Contains(out.String(), "gridLayout") {
		t.Error("category filter should hide other categories")
	}
}

func TestSettingsSetCmd(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		value string
		check func(t *testing.T, ctx *cli.Context)
	}{
		{
			name: "number", path: "pomodoro.focusDuration", value: "30",
			check: func(t *testing.T, ctx *cli.Context) {
				if got := ctx.Settings.Pomodoro().FocusDuration; got != 30 {
					t.Errorf("focusDuration = %d, want 30", got)
				}
			},
		},
		{
			name: "bool", path: "pomodoro.autoStartBreaks", value: "true",
			check: func(t *testing.T, ctx *cli.Context) {
				if !ctx.Settings.Pomodoro().AutoStartBreaks {
					t.Error("autoStartBreaks should be true")
				}
			},
		},
		{
			name: "plain string", path: "global.username", value: "Ada",
			check: func(t *testing.T, ctx *cli.Context) {
				if got := ctx.Settings.Global().Username; got != "Ada" {
					t.Errorf("username = %q, want Ada", got)
				}
			},
		},
		{
			name: "nested keeps siblings", path: "weather.manualLocation.city", value: "Paris",
			check: func(t *testing.T, ctx *cli.Context) {
				w := ctx.Settings.Weather()
				if w.ManualLocation.City != "Paris" {
					t.Errorf("city = %q, want Paris", w.ManualLocation.City)
				}
				loc := ctx.Settings.Get().Category(constants.CategoryWeather)["manualLocation"].(map[string]any)
				if _, ok := loc["country"]; !ok {
					t.Error("country should survive a nested update")
				}
			},
		},
		{
			name: "array", path: "quotes.categories", value: `["trivia"]`,
			check: func(t *testing.T, ctx *cli.Context) {
				got := ctx.Settings.Quotes().Categories
				if len(got) != 1 || got[0] != "trivia" {
					t.Errorf("categories = %v, want [trivia]", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := setupTestDB(t)
			cmd := &SettingsSetCmd{Path: tt.path, Value: tt.value}
			if err := cmd.Run(ctx); err != nil {
				t.Fatalf("settings set failed: %v", err)
			}
			if !strings.Contains(out.String(), tt.path+" updated") {
				t.Errorf("unexpected output %q", out.String())
			}
			tt.check(t, ctx)

			// survives a reload from the store
			if _, err := ctx.Settings.Load(context.Background()); err != nil {
				t.Fatal(err)
			}
			tt.check(t, ctx)
		})
	}
}

func TestSettingsSetCmd_InvalidPath(t *testing.T) {
	ctx, _ := setupTestDB(t)
	for _, path := range []string{"pomodoro", "nope.field", ".focusDuration", "pomodoro."} {
		cmd := &SettingsSetCmd{Path: path, Value: "1"}
		if err := cmd.Run(ctx); err == nil {
			t.Errorf("path %q should be rejected", path)
		}
	}
}

func TestSettingsExportImport(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			ctx, _ := setupTestDB(t)
			dir := t.TempDir()

			set := &SettingsSetCmd{Path: "pomodoro.longBreakDuration", Value: "20"}
			if err := set.Run(ctx); err != nil {
				t.Fatal(err)
			}

			export := &SettingsExportCmd{Format: format, Output: dir}
			if err := export.Run(ctx); err != nil {
				t.Fatalf("export failed: %v", err)
			}
			name := constants.ExportFileName
			if format == "yaml" {
				name = "homebase-settings.yaml"
			}
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("export file missing: %v", err)
			}

			reset := &SettingsResetCmd{Yes: true}
			if err := reset.Run(ctx); err != nil {
				t.Fatal(err)
			}
			if got := ctx.Settings.Pomodoro().LongBreakDuration; got != 15 {
				t.Fatalf("after reset longBreakDuration = %d, want 15", got)
			}

			imp := &SettingsImportCmd{File: path, Format: "auto"}
			if err := imp.Run(ctx); err != nil {
				t.Fatalf("import failed: %v", err)
			}
			if got := ctx.Settings.Pomodoro().LongBreakDuration; got != 20 {
				t.Errorf("after import longBreakDuration = %d, want 20", got)
			}
		})
	}
}

func TestSettingsExportCmd_Stdout(t *testing.T) {
	ctx, out := setupTestDB(t)
	cmd := &SettingsExportCmd{Format: "json"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out.String()), "{") {
		t.Errorf("expected a JSON object, got %q", out.String())
	}
}

func TestSettingsImportCmd_Invalid(t *testing.T) {
	ctx, _ := setupTestDB(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("[1, 2]"), 0600); err != nil {
		t.Fatal(err)
	}
	cmd := &SettingsImportCmd{File: path, Format: "auto"}
	if err := cmd.Run(ctx); err == nil {
		t.Error("importing a non-object should fail")
	}
	if got := ctx.Settings.Pomodoro().FocusDuration; got != 25 {
		t.Errorf("failed import changed settings: focusDuration = %d", got)
	}
}
