package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/config"
	"github.com/julianstephens/homebase/internal/constants"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing local store before initialization."`
	Source string `help:"Store path or connection string to copy dashboard data from."`
	Config bool   `help:"Also write a default config.toml if none exists." default:"true" negatable:""`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && cli.IsFileStore(ctx.Store) {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized homebase storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Config {
		path := filepath.Join(config.Dir(), config.FileName)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := config.Write(path, ctx.Config); err != nil {
				return err
			}
			ctx.Printf("Wrote default config to: %s\n", path)
		}
	}

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		n, err := copyData(context.Background(), ctx, c.Source)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Printf("Copied %d keys.\n", n)
	}
	return nil
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSrc, err := filepath.Abs(c.Source); err == nil && absSrc == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing store: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing store: %w", err)
		}
		ctx.Printf("Deleted existing store at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing store: %w", err)
	}
	return nil
}

// copyData copies every homebase key from the store at source into the
// current store. Keys outside the namespace are left alone.
func copyData(ctx context.Context, app *cli.Context, source string) (int, error) {
	src, err := cli.OpenStore(source, false)
	if err != nil {
		return 0, err
	}
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	entries, err := src.Enumerate(ctx, constants.StoragePrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to read source store: %w", err)
	}
	for key, value := range entries {
		if err := app.Store.Set(ctx, key, value); err != nil {
			return 0, fmt.Errorf("failed to copy %s: %w", key, err)
		}
	}
	return len(entries), nil
}
