package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/kv/jsonfile"
	"github.com/julianstephens/homebase/internal/kv/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "homebase.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Set(ctx, "homebase_todos", []byte(`[{"id":1,"text":"one"}]`)); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
	if err := store.Set(ctx, "homebase_dailyGoal", []byte(`{"text":"focus","date":"2026-10-17"}`)); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
	return dbPath
}

// steppingClock advances one second per call so snapshots get distinct names.
func steppingClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func todosIn(t *testing.T, path string) string {
	t.Helper()
	store := sqlite.NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer store.Close()

	raw, ok, err := store.Get(context.Background(), "homebase_todos")
	if err != nil || !ok {
		t.Fatalf("failed to read todos from %s: ok=%v err=%v", path, ok, err)
	}
	return string(raw)
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Dir(backupPath) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written outside the backup dir: %s", backupPath)
	}
	if got := todosIn(t, backupPath); got != `[{"id":1,"text":"one"}]` {
		t.Errorf("unexpected todos in backup: %s", got)
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock(time.Date(2026, time.October, 1, 9, 0, 0, 0, time.Local))

	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted newest first at %d", i)
		}
	}
}

func TestListBackups(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock(time.Now())

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected 0 backups initially, got %d", len(backups))
	}

	for i := 0; i < 3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}
	// Stray files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Errorf("expected 3 backups, got %d", len(backups))
	}
	for _, b := range backups {
		if b.Path == "" || b.Size == 0 || b.Timestamp.IsZero() {
			t.Errorf("incomplete backup info: %+v", b)
		}
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		p, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		name := filepath.Base(p)
		if seen[name] {
			t.Errorf("duplicate backup filename: %s", name)
		}
		seen[name] = true
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 5 {
		t.Errorf("expected counter-suffixed names to be listed, got %d", len(backups))
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock(time.Now())

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(context.Background(), "homebase_todos", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	store.Close()

	before, _ := mgr.ListBackups()
	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if got := todosIn(t, dbPath); got != `[{"id":1,"text":"one"}]` {
		t.Errorf("expected restored todos, got %s", got)
	}

	after, _ := mgr.ListBackups()
	if len(after) != len(before)+1 {
		t.Errorf("expected a pre-restore snapshot, had %d now %d", len(before), len(after))
	}
}

func TestRestoreWithCorruptedBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	corrupted := filepath.Join(mgr.GetBackupDir(), "corrupted.db")
	if err := os.WriteFile(corrupted, []byte("not a valid sqlite database"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := mgr.RestoreBackup(corrupted); err == nil {
		t.Error("expected error when restoring from corrupted backup")
	}
	if err := mgr.RestoreBackup(filepath.Join(mgr.GetBackupDir(), "missing.db")); err == nil {
		t.Error("expected error for a missing backup")
	}
}

func TestBackupWithNoDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "nonexistent.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error when backing up non-existent database")
	}
}

func TestJSONStoreBackupAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homebase.json")
	store := jsonfile.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := store.Set(ctx, "homebase_todos", []byte(`[{"id":1,"text":"one"}]`)); err != nil {
		t.Fatal(err)
	}

	mgr := NewManager(path)
	mgr.now = steppingClock(time.Now())
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Ext(backupPath) != ".json" {
		t.Errorf("expected .json snapshot, got %s", backupPath)
	}

	if err := os.WriteFile(path, []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	restored := jsonfile.NewStore(path)
	if err := restored.Load(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := restored.Get(ctx, "homebase_todos"); !ok {
		t.Error("expected todos after restore")
	}

	bad := filepath.Join(mgr.GetBackupDir(), "homebase-20260101-000000.json")
	if err := os.WriteFile(bad, []byte("[1,2"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := mgr.RestoreBackup(bad); err == nil {
		t.Error("expected error restoring malformed JSON")
	}
}
