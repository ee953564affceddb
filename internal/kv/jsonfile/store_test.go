package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/homebase/internal/errors"
	"github.com/julianstephens/homebase/internal/kv"
)

var _ kv.Provider = (*Store)(nil)

func TestPersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "homebase.json")

	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.Set(ctx, "homebase_todos", json.RawMessage(`[{"id":1,"text":"a"}]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	reloaded := NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, ok, err := reloaded.Get(ctx, "homebase_todos")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	var todos []map[string]any
	if err := json.Unmarshal(got, &todos); err != nil || len(todos) != 1 {
		t.Errorf("unexpected value %s", got)
	}
}

func TestInitKeepsExistingData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "homebase.json")
	if err := os.WriteFile(path, []byte(`{"homebase_dailyGoal":{"text":"ship"}}`), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "homebase_dailyGoal"); !ok {
		t.Error("expected existing key to survive Init")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if err := NewStore(filepath.Join(dir, "missing.json")).Load(); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := NewStore(bad).Load(); !errors.IsParse(err) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestEnumerateAndRemove(t *testing.T) {
	ctx := context.Background()
	store := NewStore(filepath.Join(t.TempDir(), "homebase.json"))
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	for _, k := range []string{"homebase_a", "homebase_b", "other_c"} {
		if err := store.Set(ctx, k, json.RawMessage(`1`)); err != nil {
			t.Fatal(err)
		}
	}
	all, err := store.Enumerate(ctx, "homebase_")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 keys, got %d", len(all))
	}

	if err := store.Remove(ctx, "homebase_a"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get(ctx, "homebase_a"); ok {
		t.Error("expected key removed")
	}
	// Removing an absent key is not an error
	if err := store.Remove(ctx, "homebase_a"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRejectsInvalidJSON(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "homebase.json"))
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	err := store.Set(context.Background(), "k", json.RawMessage(`{`))
	if !errors.IsPersistence(err) {
		t.Errorf("expected PersistenceError, got %v", err)
	}
}
