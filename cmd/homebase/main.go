package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/cli/backups"
	"github.com/julianstephens/homebase/internal/cli/links"
	"github.com/julianstephens/homebase/internal/cli/settings"
	"github.com/julianstephens/homebase/internal/cli/system"
	"github.com/julianstephens/homebase/internal/cli/todos"
	"github.com/julianstephens/homebase/internal/cli/widgets"
	"github.com/julianstephens/homebase/internal/config"
	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/errors"
	"github.com/julianstephens/homebase/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path. Defaults to config.toml in the homebase config directory." type:"path"`
	Store    string `help:"Store location: a SQLite file, a *.json file, 'memory', 'keyring', or a PostgreSQL connection string without a password. Overrides the config file."`
	LogDebug bool   `name:"debug" help:"Log debug output to stderr as well as the log file."`

	Init     system.InitCmd     `cmd:"" help:"Initialize homebase storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the dashboard." default:"1"`
	Validate system.ValidateCmd `cmd:"" help:"Check settings and todos for problems."`
	Debug    system.DebugCmd    `cmd:"" help:"Debug commands for troubleshooting."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show a stored secret (masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show which secrets are stored." default:"1"`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage dashboard settings."`
	Todo     todos.TodoCmd        `cmd:"" help:"Manage the todo list."`
	Goal     todos.GoalCmd        `cmd:"" help:"Manage today's focus."`
	Links    links.LinksCmd       `cmd:"" help:"Manage quick-access links."`
	Greet    widgets.GreetCmd     `cmd:"" help:"Print the greeting."`
	Weather  widgets.WeatherCmd   `cmd:"" help:"Show current weather."`
	Quote    widgets.QuoteCmd     `cmd:"" help:"Show the quote of the day."`
	Pomodoro widgets.PomodoroCmd  `cmd:"" help:"Run a pomodoro timer in the terminal."`
	Search   widgets.SearchCmd    `cmd:"" help:"Search the web in your browser."`
	Notify   system.NotifyCmd     `cmd:"" hidden:"" help:"Send a notification (used for testing channels)."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("A personal start page for your terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.LogDebug,
		Level:     cfg.Log.Level,
		ConfigDir: config.Dir(),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	dsn := cfg.Store.DSN
	if CLI.Store != "" {
		dsn = CLI.Store
	}
	// credentials are only acceptable from the environment or the keyring
	allowCredentials := CLI.Store == "" && os.Getenv(config.EnvDBConnection) != ""
	store, err := cli.OpenStore(dsn, allowCredentials)
	if err != nil {
		errors.Fatal(err)
	}

	appCtx := cli.NewContext(cfg, store)
	defer appCtx.Close()

	// Load the store before running the command (Init command will handle its own loading)
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := appCtx.Load(context.Background()); err != nil {
			appCtx.Close()
			errors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		appCtx.Close()
		errors.Fatal(err)
	}
}
