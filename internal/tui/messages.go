package tui

import (
	"time"

	"github.com/julianstephens/homebase/internal/notifier"
	"github.com/julianstephens/homebase/internal/pomodoro"
	"github.com/julianstephens/homebase/internal/settings"
	"github.com/julianstephens/homebase/internal/weather"
	"github.com/julianstephens/homebase/internal/widget"
)

type ClockMsg time.Time

// PomodoroMsg carries an engine event into the program.
type PomodoroMsg struct {
	Event pomodoro.Event
}

type SettingsChangedMsg struct {
	Doc settings.Document
}

type NotificationMsg struct {
	Message string
	Level   notifier.Level
}

type WeatherMsg struct {
	State widget.State[weather.Report]
}

type QuoteMsg struct {
	State widget.State[QuoteResult]
}

// openedMsg reports a URL handed to the launcher by search or a link.
type openedMsg struct {
	url string
	err error
}
