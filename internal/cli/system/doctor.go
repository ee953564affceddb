package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/homebase/internal/backup"
	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/config"
	"github.com/julianstephens/homebase/internal/keyring"
	"github.com/julianstephens/homebase/internal/kv"
	"github.com/julianstephens/homebase/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name     string
	run      func() error
	warnOnly bool
	needsDB  bool
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	bg := context.Background()
	checks := []check{
		{name: "Store reachable", run: func() error { return checkStoreReachable(bg, ctx) }},
		{name: "Schema version", run: func() error { return checkSchemaVersion(ctx) }, needsDB: true},
		{name: "Migrations complete", run: func() error { return checkMigrationsComplete(ctx) }, needsDB: true},
		{name: "Backups present", run: func() error { return checkBackupsPresent(ctx) }, warnOnly: true},
		{name: "Settings", run: func() error { return checkSettings(ctx) }, needsDB: true},
		{name: "Todos", run: func() error { return checkTodos(bg, ctx) }, needsDB: true},
		{name: "Weather API key", run: func() error { return checkWeatherKey(ctx) }, warnOnly: true},
		{name: "OS keyring", run: checkKeyring, warnOnly: true},
		{name: "Clock/timezone", run: func() error { return checkClockTimezone(ctx) }},
	}

	hasError := false
	reachable := false
	for i, c := range checks {
		if c.needsDB && !reachable {
			ctx.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run()
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				reachable = true
			}
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(bg context.Context, ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	// Round-trip a probe key to prove reads and writes work.
	probe := "doctorProbe"
	if err := kv.PutTyped(bg, ctx.KV, probe, time.Now().UnixMilli()); err != nil {
		return err
	}
	if _, ok, err := ctx.KV.Get(bg, probe); err != nil || !ok {
		return fmt.Errorf("probe key not readable: %v", err)
	}
	return ctx.KV.Remove(bg, probe)
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	runner, err := m.Migrations()
	if err != nil {
		return err
	}
	return runner.Validate()
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	runner, err := m.Migrations()
	if err != nil {
		return err
	}
	pending, err := runner.Pending()
	if err != nil {
		return err
	}
	if pending > 0 {
		return fmt.Errorf("%d migration(s) pending, run 'homebase migrate'", pending)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !cli.IsFileStore(ctx.Store) {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'homebase backup create'")
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	result := validation.New().ValidateSettings(ctx.Settings.Get())
	if result.HasConflicts() {
		return fmt.Errorf("%d settings problem(s), run 'homebase validate'", len(result.Conflicts))
	}
	return nil
}

func checkTodos(bg context.Context, ctx *cli.Context) error {
	items, err := ctx.Todos.List(bg)
	if err != nil {
		return fmt.Errorf("failed to read todos: %w", err)
	}
	result := validation.New().ValidateTodos(items)
	if result.HasConflicts() {
		return fmt.Errorf("%d todo problem(s), run 'homebase validate --fix'", len(result.Conflicts))
	}
	return nil
}

func checkWeatherKey(ctx *cli.Context) error {
	if ctx.Config.Weather.APIKey != "" {
		return nil
	}
	if _, err := keyring.GetWeatherAPIKey(); err != nil {
		return fmt.Errorf("no OpenWeatherMap key; set %s or run 'homebase keyring set weather <key>'", config.EnvWeatherKey)
	}
	return nil
}

func checkKeyring() error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, offset := now.Zone(); offset == 0 && now.Location() == time.UTC {
		ctx.Printf("   Note: timezone is UTC, daily goals and quotes roll over at UTC midnight\n")
	}
	return nil
}
