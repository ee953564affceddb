package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/julianstephens/homebase/internal/backup"
	"github.com/julianstephens/homebase/internal/config"
	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/keyring"
	"github.com/julianstephens/homebase/internal/kv"
	"github.com/julianstephens/homebase/internal/kv/jsonfile"
	"github.com/julianstephens/homebase/internal/kv/postgres"
	"github.com/julianstephens/homebase/internal/kv/sqlite"
	"github.com/julianstephens/homebase/internal/links"
	"github.com/julianstephens/homebase/internal/logger"
	"github.com/julianstephens/homebase/internal/notifier"
	"github.com/julianstephens/homebase/internal/pomodoro"
	"github.com/julianstephens/homebase/internal/quotes"
	"github.com/julianstephens/homebase/internal/settings"
	"github.com/julianstephens/homebase/internal/todo"
	"github.com/julianstephens/homebase/internal/weather"
)

// Context is handed to every command. Store is the raw medium; KV is the
// same medium under the "homebase_" namespace and is what services use.
type Context struct {
	Config *config.Config
	Store  kv.Provider
	KV     *kv.Namespaced
	Out    io.Writer

	Settings *settings.Store
	Todos    *todo.Service
	Links    *links.Service
	Weather  *weather.Service
	Quotes   *quotes.Service

	engineOnce sync.Once
	engine     *pomodoro.Engine
	mu         sync.Mutex
}

// OpenStore picks a provider for dsn: "memory", "keyring" (PostgreSQL
// connection string from the OS keyring), a PostgreSQL connection string,
// a *.json file, or otherwise a SQLite file. Connection strings from flags or
// config files must not embed a password unless allowCredentials is set.
func OpenStore(dsn string, allowCredentials bool) (kv.Provider, error) {
	switch {
	case dsn == "memory":
		return kv.NewMemoryStore(), nil
	case dsn == "keyring":
		conn, err := keyring.GetConnectionString()
		if err != nil {
			return nil, fmt.Errorf("no connection string in keyring, run 'homebase keyring set db <conn>': %w", err)
		}
		return postgres.New(conn), nil
	case postgres.IsConnString(dsn):
		if !allowCredentials && postgres.HasEmbeddedCredentials(dsn) {
			return nil, fmt.Errorf("%w: use the OS keyring (--store=keyring), %s, or .pgpass", postgres.ErrEmbeddedCredentials, config.EnvDBConnection)
		}
		return postgres.New(dsn), nil
	case strings.EqualFold(filepath.Ext(dsn), ".json"):
		return jsonfile.NewStore(config.ExpandPath(dsn)), nil
	default:
		return sqlite.NewStore(config.ExpandPath(dsn)), nil
	}
}

// NewContext wires the services over store. Nothing is read until Load.
func NewContext(cfg *config.Config, store kv.Provider) *Context {
	c := &Context{
		Config: cfg,
		Store:  store,
		KV:     kv.Namespace(store, constants.StoragePrefix),
		Out:    os.Stdout,
	}
	c.Settings = settings.NewStore(c.KV)
	c.Todos = todo.NewService(c.KV, todo.OnDelete(c.resetSessions))
	c.Links = links.NewService(c.KV)

	timeout := cfg.HTTP.Timeout.Duration
	c.Weather = weather.NewService(c.KV, c.Settings,
		weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.GeoURL, c.weatherKey(), timeout),
		cfg.Weather.GeolocationTimeout.Duration)
	c.Quotes = quotes.NewService(c.KV, c.Settings, quotes.NewClient(cfg.Quotes.BaseURL, timeout))
	return c
}

func (c *Context) weatherKey() string {
	if c.Config.Weather.APIKey != "" {
		return c.Config.Weather.APIKey
	}
	key, err := keyring.GetWeatherAPIKey()
	if err != nil {
		logger.Debug("No weather API key in keyring", "error", err)
		return ""
	}
	return key
}

// Load opens the store and reads the settings document.
func (c *Context) Load(ctx context.Context) error {
	if err := c.Store.Load(); err != nil {
		return err
	}
	_, err := c.Settings.Load(ctx)
	return err
}

// Notifier builds the completion channel from the config: the tray app when
// enabled, followed by extra. The tone is the terminal bell when enabled.
func (c *Context) Notifier(extra ...notifier.Channel) (notifier.Channel, notifier.Tone) {
	var channels notifier.Fanout
	if c.Config.Notify.Tray {
		channels = append(channels, notifier.NewTray())
	}
	channels = append(channels, extra...)

	var tone notifier.Tone
	if c.Config.Notify.Bell {
		tone = notifier.NewBell()
	}
	if len(channels) == 0 {
		return nil, tone
	}
	return channels, tone
}

// Pomodoro returns the process-wide engine, creating it on first use with
// opts.
func (c *Context) Pomodoro(opts ...pomodoro.Option) *pomodoro.Engine {
	c.engineOnce.Do(func() {
		e := pomodoro.New(c.Settings, opts...)
		c.mu.Lock()
		c.engine = e
		c.mu.Unlock()
	})
	return c.engine
}

// resetSessions runs when a todo is deleted.
func (c *Context) resetSessions() {
	c.mu.Lock()
	e := c.engine
	c.mu.Unlock()
	if e != nil {
		e.ResetSessions()
	}
}

// PerformAutomaticBackup snapshots file-backed stores and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if !IsFileStore(c.Store) {
		return
	}
	if _, err := backup.NewManager(c.Store.GetConfigPath()).CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// IsFileStore reports whether p lives in a local file that can be backed up.
func IsFileStore(p kv.Provider) bool {
	switch p.(type) {
	case *sqlite.Store, *jsonfile.Store:
		return true
	}
	return false
}

func (c *Context) Close() error {
	c.mu.Lock()
	e := c.engine
	c.mu.Unlock()
	if e != nil {
		e.Close()
	}
	return c.Store.Close()
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}
