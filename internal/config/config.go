// Package config holds process-level settings: where the store lives, API
// endpoints and keys, timeouts and log level. User-facing dashboard settings
// live in the settings package instead.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/julianstephens/homebase/internal/constants"
)

const (
	EnvStore        = "HOMEBASE_STORE"
	EnvWeatherKey   = "HOMEBASE_WEATHER_API_KEY"
	EnvLogLevel     = "HOMEBASE_LOG_LEVEL"
	EnvDBConnection = "HOMEBASE_DB_CONNECTION"

	FileName = "config.toml"
)

type Config struct {
	Store   StoreConfig   `toml:"store"`
	Weather WeatherConfig `toml:"weather"`
	Quotes  QuotesConfig  `toml:"quotes"`
	HTTP    HTTPConfig    `toml:"http"`
	Notify  NotifyConfig  `toml:"notify"`
	Log     LogConfig     `toml:"log"`
}

type StoreConfig struct {
	// DSN is a SQLite path, a *.json path, "memory", or a PostgreSQL
	// connection string without a password.
	DSN string `toml:"dsn"`
}

type WeatherConfig struct {
	APIKey string `toml:"api_key,omitempty"`
	// BaseURL is the OpenWeatherMap API root.
	BaseURL string `toml:"base_url"`
	// GeoURL answers IP geolocation lookups for auto-location.
	GeoURL             string   `toml:"geo_url"`
	GeolocationTimeout Duration `toml:"geolocation_timeout"`
}

type QuotesConfig struct {
	BaseURL string `toml:"base_url"`
}

type HTTPConfig struct {
	Timeout Duration `toml:"timeout"`
}

type NotifyConfig struct {
	Tray     bool     `toml:"tray"`
	Bell     bool     `toml:"bell"`
	Duration Duration `toml:"duration"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Default() *Config {
	return &Config{
		Store: StoreConfig{
			DSN: constants.DefaultConfigPath,
		},
		Weather: WeatherConfig{
			BaseURL:            "https://api.openweathermap.org/data/2.5",
			GeoURL:             "https://ipapi.co/json/",
			GeolocationTimeout: Duration{constants.GeolocationTimeout},
		},
		Quotes: QuotesConfig{
			BaseURL: "https://api.quotable.io",
		},
		HTTP: HTTPConfig{
			Timeout: Duration{constants.HTTPTimeout},
		},
		Notify: NotifyConfig{
			Tray:     true,
			Bell:     true,
			Duration: Duration{time.Duration(constants.NotificationDurationMs) * time.Millisecond},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path, or the first file found on the search path when path is
// empty. A missing file yields the defaults. .env files next to the working
// directory and in the config directory are loaded first, then environment
// overrides are applied.
func Load(path string) (*Config, error) {
	LoadDotEnv()

	if path == "" {
		for _, p := range SearchPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader decodes TOML over the defaults and applies env overrides.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Write stores cfg as TOML at path, creating the directory. The weather API
// key is never written; it belongs in the keyring or the environment.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	out := *cfg
	out.Weather.APIKey = ""

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(out); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// LoadDotEnv loads .env from the working directory and the config
// directory. Existing environment variables win.
func LoadDotEnv() {
	var files []string
	for _, p := range []string{".env", filepath.Join(Dir(), ".env")} {
		if _, err := os.Stat(p); err == nil {
			files = append(files, p)
		}
	}
	if len(files) > 0 {
		_ = godotenv.Load(files...)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvStore); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv(EnvDBConnection); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv(EnvWeatherKey); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

// Dir is $XDG_CONFIG_HOME/homebase or ~/.config/homebase.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(xdgConfigHome(home), constants.AppName)
}

// SearchPaths lists the config files tried by Load, in order.
func SearchPaths() []string {
	home, _ := os.UserHomeDir()
	xdg := xdgConfigHome(home)
	paths := []string{filepath.Join(xdg, constants.AppName, FileName)}

	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, constants.AppName, FileName))
	}
	return paths
}

func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// ExpandPath resolves a leading ~ against the home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
