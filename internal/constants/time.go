package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat24 and TimeFormat12 are the clock formats selectable via global.timeFormat
	TimeFormat24 = "15:04"
	TimeFormat12 = "3:04 PM"

	// LongDateFormat renders e.g. "Saturday, October 17, 2026"
	LongDateFormat = "Monday, January 2, 2006"
)
