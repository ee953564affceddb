package constants

const (
	// Settings categories
	CategoryPomodoro = "pomodoro"
	CategoryWeather  = "weather"
	CategoryQuotes   = "quotes"
	CategoryLayout   = "layout"
	CategoryGlobal   = "global"

	// Pomodoro defaults (minutes)
	DefaultFocusDuration          = 25
	DefaultShortBreakDuration     = 5
	DefaultLongBreakDuration      = 15
	DefaultSessionsUntilLongBreak = 4

	// Weather defaults
	UnitsImperial                 = "imperial"
	UnitsMetric                   = "metric"
	DefaultWeatherUpdateFrequency = 3600000 // ms

	// Quote update frequencies
	QuoteFrequencyHourly = "hourly"
	QuoteFrequencyDaily  = "daily"
	QuoteFrequencyWeekly = "weekly"

	// Global defaults
	TimeFormat24h = "24h"
	TimeFormat12h = "12h"
	DefaultTheme  = "dark"
)

// Widget identifiers used as keys of layout.gridLayout
const (
	WidgetGreeting = "greeting"
	WidgetSearch   = "search"
	WidgetTodo     = "todo"
	WidgetWeather  = "weather"
	WidgetQuote    = "quote"
	WidgetPomodoro = "pomodoro"
)
