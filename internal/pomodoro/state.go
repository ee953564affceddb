package pomodoro

import (
	"fmt"

	"github.com/julianstephens/homebase/internal/settings"
)

type Mode string

const (
	Focus      Mode = "focus"
	ShortBreak Mode = "shortBreak"
	LongBreak  Mode = "longBreak"
)

// ParseMode accepts the stored mode names.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Focus, ShortBreak, LongBreak:
		return m, nil
	}
	return "", fmt.Errorf("unknown pomodoro mode %q", s)
}

func (m Mode) Label() string {
	switch m {
	case ShortBreak:
		return "Short Break"
	case LongBreak:
		return "Long Break"
	}
	return "Focus Time"
}

// Minutes returns the configured length of m.
func (m Mode) Minutes(p settings.Pomodoro) int {
	switch m {
	case ShortBreak:
		return p.ShortBreakDuration
	case LongBreak:
		return p.LongBreakDuration
	}
	return p.FocusDuration
}

// State is a snapshot of the session. TimeRemaining is in seconds.
type State struct {
	Mode                   Mode
	TimeRemaining          int
	Running                bool
	CompletedFocusSessions int
	CurrentTask            *string
}

// Task returns the current task label or "".
func (s State) Task() string {
	if s.CurrentTask == nil {
		return ""
	}
	return *s.CurrentTask
}

func (s State) clone() State {
	if s.CurrentTask != nil {
		task := *s.CurrentTask
		s.CurrentTask = &task
	}
	return s
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Progress returns how much of the current interval has elapsed, 0 to 1.
func Progress(s State, p settings.Pomodoro) float64 {
	total := s.Mode.Minutes(p) * 60
	if total <= 0 {
		return 0
	}
	done := float64(total-s.TimeRemaining) / float64(total)
	switch {
	case done < 0:
		return 0
	case done > 1:
		return 1
	}
	return done
}

type EventKind int

const (
	EventStateChanged EventKind = iota
	EventTick
	EventFocusComplete
	EventBreakComplete
)

func (k EventKind) String() string {
	switch k {
	case EventTick:
		return "tick"
	case EventFocusComplete:
		return "focus_complete"
	case EventBreakComplete:
		return "break_complete"
	}
	return "state_changed"
}

// Event is delivered to subscribers after every state change.
type Event struct {
	ID    string
	Kind  EventKind
	State State
	// NextBreak is set on EventFocusComplete.
	NextBreak Mode
}
