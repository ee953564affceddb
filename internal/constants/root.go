package constants

import "time"

// SessionState represents the current view of the TUI application
type SessionState int

const (
	AppName            = "homebase"
	DefaultKeyringUser = "database-connection"
	WeatherKeyringUser = "openweathermap-api-key"
	DefaultConfigPath  = "~/.config/homebase/homebase.db"
	Version            = "v0.3.0"

	// StoragePrefix namespaces every key the dashboard writes to the KV store
	StoragePrefix = "homebase_"

	// Storage keys (without prefix)
	KeyAppSettings      = "appSettings"
	KeyWeatherCache     = "weatherCache"
	KeyQuoteCache       = "quoteCache"
	KeyTodos            = "todos"
	KeyDailyGoal        = "dailyGoal"
	KeyLastFocusPrompt  = "lastFocusPrompt"
	KeyQuickAccessLinks = "quickAccessLinks"

	// ExportFileName is advisory only, import never checks it
	ExportFileName = "homebase-settings.json"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "homebase-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "homebase-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.homebase"

	// Fallback tone parameters
	BeepFrequencyHz = 880
	BeepDuration    = 200 * time.Millisecond

	// Weather
	GeolocationTimeout = 5 * time.Second
	HTTPTimeout        = 10 * time.Second
)

// Session States
const (
	StateDashboard SessionState = iota
	StateAddTodo
	StateDailyGoal
	StateEditSettings
	StateConfirmReset
	StateSearch
	StateLinks
)
