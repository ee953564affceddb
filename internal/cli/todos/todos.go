package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/todo"
)

type TodoCmd struct {
	List   TodoListCmd   `cmd:"" help:"List todos." default:"1"`
	Add    TodoAddCmd    `cmd:"" help:"Add a todo."`
	Done   TodoDoneCmd   `cmd:"" help:"Mark a todo completed."`
	Undo   TodoUndoCmd   `cmd:"" help:"Mark a todo not completed."`
	Toggle TodoToggleCmd `cmd:"" help:"Flip a todo's completed flag."`
	Delete TodoDeleteCmd `cmd:"" aliases:"rm" help:"Delete a todo."`
}

type TodoListCmd struct {
	Pending bool `help:"Hide completed todos."`
}

func (c *TodoListCmd) Run(ctx *cli.Context) error {
	items, err := ctx.Todos.List(context.Background())
	if err != nil {
		return err
	}
	if c.Pending {
		pending := items[:0:0]
		for _, it := range items {
			if !it.Completed {
				pending = append(pending, it)
			}
		}
		items = pending
	}
	if len(items) == 0 {
		ctx.Println("No todos yet. Add one with 'homebase todo add <text>'.")
		return nil
	}
	for _, it := range items {
		ctx.Println(FormatItem(it))
	}
	return nil
}

// FormatItem renders one todo as a checklist line.
func FormatItem(it todo.Item) string {
	box := "[ ]"
	if it.Completed {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %d  %s", box, it.ID, it.Text)
	if it.IsDailyGoal {
		line += "  ⭐ daily goal"
	}
	return line
}

type TodoAddCmd struct {
	Text []string `arg:"" help:"Todo text."`
}

func (c *TodoAddCmd) Run(ctx *cli.Context) error {
	it, err := ctx.Todos.Add(context.Background(), strings.Join(c.Text, " "))
	switch {
	case errors.Is(err, todo.ErrDuplicate):
		return fmt.Errorf("%q is already on your list", strings.TrimSpace(strings.Join(c.Text, " ")))
	case err != nil:
		return err
	}
	ctx.Printf("✓ Added todo %d: %s\n", it.ID, it.Text)
	return nil
}

type TodoDoneCmd struct {
	ID int64 `arg:"" help:"Todo ID."`
}

func (c *TodoDoneCmd) Run(ctx *cli.Context) error {
	it, err := ctx.Todos.SetCompleted(context.Background(), c.ID, true)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Completed: %s\n", it.Text)
	return nil
}

type TodoUndoCmd struct {
	ID int64 `arg:"" help:"Todo ID."`
}

func (c *TodoUndoCmd) Run(ctx *cli.Context) error {
	it, err := ctx.Todos.SetCompleted(context.Background(), c.ID, false)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Reopened: %s\n", it.Text)
	return nil
}

type TodoToggleCmd struct {
	ID int64 `arg:"" help:"Todo ID."`
}

func (c *TodoToggleCmd) Run(ctx *cli.Context) error {
	it, err := ctx.Todos.Toggle(context.Background(), c.ID)
	if err != nil {
		return err
	}
	ctx.Println(FormatItem(it))
	return nil
}

type TodoDeleteCmd struct {
	ID int64 `arg:"" help:"Todo ID."`
}

func (c *TodoDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Todos.Delete(context.Background(), c.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted todo %d\n", c.ID)
	return nil
}

type GoalCmd struct {
	Show  GoalShowCmd  `cmd:"" help:"Show today's focus." default:"1"`
	Set   GoalSetCmd   `cmd:"" help:"Set today's focus and pin it to the todo list."`
	Check GoalCheckCmd `cmd:"" help:"Report whether today's focus prompt is still due."`
}

type GoalShowCmd struct{}

func (c *GoalShowCmd) Run(ctx *cli.Context) error {
	g, ok, err := ctx.Todos.DailyGoal(context.Background())
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Today's focus: Not set")
		return nil
	}
	ctx.Printf("Today's focus: %s\n", g.Text)
	return nil
}

type GoalSetCmd struct {
	Text []string `arg:"" help:"What you want to focus on today."`
}

func (c *GoalSetCmd) Run(ctx *cli.Context) error {
	it, err := ctx.Todos.SetDailyGoal(context.Background(), strings.Join(c.Text, " "))
	if err != nil {
		return err
	}
	ctx.Printf("✓ Today's focus: %s\n", it.Text)
	return nil
}

type GoalCheckCmd struct{}

func (c *GoalCheckCmd) Run(ctx *cli.Context) error {
	now := time.Now()
	due, err := ctx.Todos.DailyCheck(context.Background(), now)
	if err != nil {
		return err
	}
	if due {
		ctx.Printf("Focus prompt due for %s. Set one with 'homebase goal set <text>'.\n", now.Format(constants.DateFormat))
		return nil
	}
	ctx.Println("Focus prompt already shown today.")
	return nil
}
