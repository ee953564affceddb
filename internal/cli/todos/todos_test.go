package todos

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/config"
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

func addTodo(t *testing.T, ctx *cli.Context, text string) todo.Item {
	t.Helper()
	it, err := ctx.Todos.Add(context.Background(), text)
	if err != nil {
		t.Fatalf("failed to add %q: %v", text, err)
	}
	return it
}

func TestTodoAddCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	cmd := &TodoAddCmd{Text: []string{"Buy", "milk"}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("todo add failed: %v", err)
	}
	if !strings.Contains(out.String(), "Buy milk") {
		t.Errorf("unexpected output %q", out.String())
	}

	dup := &TodoAddCmd{Text: []string{"  buy MILK "}}
	if err := dup.Run(ctx); err == nil {
		t.Error("duplicate todo should be rejected")
	}

	empty := &TodoAddCmd{Text: []string{"   "}}
	if err := empty.Run(ctx); err == nil {
		t.Error("empty todo should be rejected")
	}

	items, err := ctx.Todos.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Errorf("got %d todos, want 1", len(items))
	}
}

func TestTodoListCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	list := &TodoListCmd{}
	if err := list.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No todos yet") {
		t.Errorf("empty list output = %q", out.String())
	}

	a := addTodo(t, ctx, "Write report")
	addTodo(t, ctx, "Call mom")
	if _, err := ctx.Todos.SetCompleted(context.Background(), a.ID, true); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := list.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[x]") || !strings.Contains(out.String(), "Call mom") {
		t.Errorf("list output = %q", out.String())
	}

	out.Reset()
	pending := &TodoListCmd{Pending: true}
	if err := pending.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "Write report") {
		t.Errorf("--pending should hide completed todos: %q", out.String())
	}
}

func TestTodoDoneUndoToggle(t *testing.T) {
	ctx, _ := setupTestDB(t)
	it := addTodo(t, ctx, "Stretch")
	bg := context.Background()

	completed := func() bool {
		items, err := ctx.Todos.List(bg)
		if err != nil {
			t.Fatal(err)
		}
		return items[0].Completed
	}

	if err := (&TodoDoneCmd{ID: it.ID}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !completed() {
		t.Error("done should complete the todo")
	}
	if err := (&TodoDoneCmd{ID: it.ID}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !completed() {
		t.Error("done is idempotent")
	}
	if err := (&TodoUndoCmd{ID: it.ID}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if completed() {
		t.Error("undo should reopen the todo")
	}
	if err := (&TodoToggleCmd{ID: it.ID}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !completed() {
		t.Error("toggle should flip the todo")
	}
	if err := (&TodoDoneCmd{ID: it.ID + 1000}).Run(ctx); err == nil {
		t.Error("unknown id should fail")
	}
}

func TestTodoDeleteCmd(t *testing.T) {
	ctx, out := setupTestDB(t)
	it := addTodo(t, ctx, "Temporary")

	if err := (&TodoDeleteCmd{ID: it.ID}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted") {
		t.Errorf("unexpected output %q", out.String())
	}
	items, err := ctx.Todos.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("got %d todos after delete, want 0", len(items))
	}
}

func TestFormatItem(t *testing.T) {
	tests := []struct {
		item todo.Item
		want string
	}{
		{todo.Item{ID: 1, Text: "a"}, "[ ] 1  a"},
		{todo.Item{ID: 2, Text: "b", Completed: true}, "[x] 2  b"},
		{todo.Item{ID: 3, Text: "c", IsDailyGoal: true}, "[ ] 3  c  ⭐ daily goal"},
	}
	for _, tt := range tests {
		if got := FormatItem(tt.item); got != tt.want {
			t.Errorf("FormatItem(%+v) = %q, want %q", tt.item, got, tt.want)
		}
	}
}

func TestGoalCmds(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&GoalShowCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Not set") {
		t.Errorf("show before set = %q", out.String())
	}

	out.Reset()
	if err := (&GoalCheckCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "due") {
		t.Errorf("check before set = %q", out.String())
	}

	addTodo(t, ctx, "Existing")
	if err := (&GoalSetCmd{Text: []string{"Ship", "it"}}).Run(ctx); err != nil {
		t.Fatalf("goal set failed: %v", err)
	}

	out.Reset()
	if err := (&GoalShowCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Ship it") {
		t.Errorf("show after set = %q", out.String())
	}

	out.Reset()
	if err := (&GoalCheckCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "already shown") {
		t.Errorf("check after set = %q", out.String())
	}

	items, err := ctx.Todos.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || !items[0].IsDailyGoal || items[0].Text != "Ship it" {
		t.Errorf("goal should be pinned first: %+v", items)
	}
}
