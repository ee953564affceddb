package system

import (
	"fmt"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/migration"
)

// migrator is implemented by the SQL-backed stores.
type migrator interface {
	Migrations() (*migration.Runner, error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		ctx.Println("This store has no schema; nothing to migrate.")
		return nil
	}
	runner, err := m.Migrations()
	if err != nil {
		return err
	}
	applied, err := runner.Apply(func(msg string) { ctx.Println(msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if applied == 0 {
		ctx.Println("Schema is up to date.")
		return nil
	}
	ctx.Printf("Applied %d migration(s).\n", applied)
	return nil
}
