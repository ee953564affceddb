package system

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/config"
	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/keyring"
	"github.com/julianstephens/homebase/internal/kv"
	"github.com/julianstephens/homebase/internal/kv/jsonfile"
	"github.com/julianstephens/homebase/internal/kv/sqlite"
	"github.com/julianstephens/homebase/internal/todo"
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

func TestInitCmd_Force(t *testing.T) {
	ctx, out := setupTestDB(t)
	bg := context.Background()
	if _, err := ctx.Todos.Add(bg, "Old data"); err != nil {
		t.Fatal(err)
	}

	cmd := &InitCmd{Force: true, Config: false}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted existing store") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
	items, err := ctx.Todos.List(bg)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("got %d todos after forced init, want 0", len(items))
	}
}

func TestInitCmd_CopiesSource(t *testing.T) {
	ctx, out := setupTestDB(t)
	bg := context.Background()

	srcPath := filepath.Join(t.TempDir(), "old.json")
	src := jsonfile.NewStore(srcPath)
	if err := src.Init(); err != nil {
		t.Fatal(err)
	}
	ns := kv.Namespace(src, constants.StoragePrefix)
	if err := kv.PutTyped(bg, ns, constants.KeyTodos, []todo.Item{{ID: 1, Text: "Carried over"}}); err != nil {
		t.Fatal(err)
	}
	if err := src.Set(bg, "unrelated", json.RawMessage(`1`)); err != nil {
		t.Fatal(err)
	}
	src.Close()

	cmd := &InitCmd{Source: srcPath, Config: false}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out.String(), "Copied 1 keys.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
	items, err := ctx.Todos.List(bg)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Text != "Carried over" {
		t.Errorf("todos = %+v", items)
	}
	if _, ok, _ := ctx.Store.Get(bg, "unrelated"); ok {
		t.Error("keys outside the namespace should not be copied")
	}
}

func TestInitCmd_ForceSameSource(t *testing.T) {
	ctx, _ := setupTestDB(t)
	cmd := &InitCmd{Force: true, Source: ctx.Store.GetConfigPath(), Config: false}
	if err := cmd.Run(ctx); err == nil {
		t.Error("--force with source == destination should fail")
	}
}

func TestMigrateCmd(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("freshly initialized store should be current:\n%s", out.String())
	}

	mem := cli.NewContext(config.Default(), kv.NewMemoryStore())
	var buf bytes.Buffer
	mem.Out = &buf
	if err := (&MigrateCmd{}).Run(mem); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "nothing to migrate") {
		t.Errorf("memory store output = %q", buf.String())
	}
}

func TestValidateCmd_Fix(t *testing.T) {
	ctx, out := setupTestDB(t)
	bg := context.Background()

	items := []todo.Item{
		{ID: 100, Text: "Read"},
		{ID: 200, Text: "read "},
		{ID: 300, Text: "Write"},
	}
	if err := kv.PutTyped(bg, ctx.KV, constants.KeyTodos, items); err != nil {
		t.Fatal(err)
	}

	if err := (&ValidateCmd{Fix: true}).Run(ctx); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Duplicate todo") || !strings.Contains(got, "kept ID: 100") {
		t.Errorf("unexpected report:\n%s", got)
	}

	left, err := ctx.Todos.List(bg)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 2 || left[0].ID != 100 || left[1].ID != 300 {
		t.Errorf("todos after fix = %+v", left)
	}
}

func TestValidateCmd_Clean(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&ValidateCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No conflicts detected.") {
		t.Errorf("unexpected report:\n%s", out.String())
	}
}

func TestDoctorCmd(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out.String())
	}
	got := out.String()
	for _, want := range []string{"✓ Store reachable: OK", "✓ Migrations complete: OK", "⚠ Backups present: WARNING", "All diagnostics passed!"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if _, ok, _ := ctx.KV.Get(context.Background(), "doctorProbe"); ok {
		t.Error("probe key should be removed")
	}
}

func TestDoctorCmd_MemoryStore(t *testing.T) {
	gokeyring.MockInit()
	cfg := config.Default()
	ctx := cli.NewContext(cfg, kv.NewMemoryStore())
	var out bytes.Buffer
	ctx.Out = &out
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out.String())
	}
}

func TestKeyringCmds(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&KeyringGetCmd{Secret: "weather"}).Run(ctx); err == nil {
		t.Error("get before set should fail")
	}

	if err := (&KeyringSetCmd{Secret: "weather", Value: "abcdef123456"}).Run(ctx); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if v, err := keyring.GetWeatherAPIKey(); err != nil || v != "abcdef123456" {
		t.Errorf("stored key = %q, %v", v, err)
	}

	out.Reset()
	if err := (&KeyringGetCmd{Secret: "weather"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "abcdef123456") {
		t.Errorf("get should mask the secret: %q", out.String())
	}

	out.Reset()
	if err := (&KeyringStatusCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), string(keyring.WeatherAPIKey)+" is stored") {
		t.Errorf("status output:\n%s", out.String())
	}

	if err := (&KeyringDeleteCmd{Secret: "weather"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&KeyringDeleteCmd{Secret: "weather"}).Run(ctx); err == nil {
		t.Error("second delete should fail")
	}
}

func TestKeyringSetCmd_ConnectionString(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&KeyringSetCmd{Secret: "db", Value: "not a conn string"}).Run(ctx); err == nil {
		t.Error("non-postgres value should be rejected")
	}
	if err := (&KeyringSetCmd{Secret: "db", Value: "postgres://me:pw@localhost/homebase"}).Run(ctx); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !strings.Contains(out.String(), "embedded credentials") {
		t.Errorf("expected a credentials warning:\n%s", out.String())
	}
	if _, err := cli.OpenStore("keyring", false); err != nil {
		t.Errorf("keyring store should open: %v", err)
	}
}

func TestDebugCmds(t *testing.T) {
	ctx, out := setupTestDB(t)
	bg := context.Background()
	if _, err := ctx.Todos.Add(bg, "Inspect me"); err != nil {
		t.Fatal(err)
	}

	if err := (&DebugKeysCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), constants.KeyTodos) {
		t.Errorf("keys output:\n%s", out.String())
	}

	out.Reset()
	if err := (&DebugDumpKeyCmd{Key: constants.KeyTodos}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Inspect me") {
		t.Errorf("dump output:\n%s", out.String())
	}

	if err := (&DebugDumpKeyCmd{Key: "missing"}).Run(ctx); err == nil {
		t.Error("dumping a missing key should fail")
	}

	out.Reset()
	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "test.db") {
		t.Errorf("path output = %q", out.String())
	}
}

func TestNotifyCmd_DryRun(t *testing.T) {
	ctx, out := setupTestDB(t)
	cmd := &NotifyCmd{Message: "Break over", Level: "error", DryRun: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if out.String() != "✗ Break over\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestNotifyCmd_NoChannels(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := (&NotifyCmd{Message: "quiet", Level: "info"}).Run(ctx); err != nil {
		t.Errorf("notify never fails: %v", err)
	}
}
