package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/validation"
)

type ValidateCmd struct {
	Fix bool `help:"Remove duplicate todos, keeping the oldest."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	validator := validation.New()

	ctx.Println("Validating settings...")
	result := validator.ValidateSettings(ctx.Settings.Get())

	ctx.Println("Validating todos...")
	items, err := ctx.Todos.List(bg)
	if err != nil {
		return fmt.Errorf("failed to load todos: %w", err)
	}
	todoResult := validator.ValidateTodos(items)
	result.Merge(todoResult)

	ctx.Println()
	ctx.Println(result.FormatReport())

	if cmd.Fix && todoResult.HasConflicts() {
		actions := validation.AutoFixDuplicateTodos(todoResult.Conflicts, func(id int64) error {
			return ctx.Todos.Delete(bg, id)
		})
		for _, a := range actions {
			ctx.Printf("✓ %s\n", a.Action)
		}
		if len(actions) == 0 {
			ctx.Println("Nothing to fix automatically.")
		}
	}
	return nil
}
