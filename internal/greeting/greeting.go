// Package greeting renders the clock widget: a time-of-day greeting, the
// current time and date, and a short motivational line.
package greeting

import (
	"strings"
	"time"

	"github.com/julianstephens/homebase/internal/constants"
)

type Period string

const (
	Morning   Period = "morning"
	Afternoon Period = "afternoon"
	Evening   Period = "evening"
)

func PeriodAt(t time.Time) Period {
	switch h := t.Hour(); {
	case h < 12:
		return Morning
	case h < 18:
		return Afternoon
	default:
		return Evening
	}
}

// Emoji differs from PeriodAt: night starts at 20:00 and runs until 05:00.
func Emoji(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "🌅"
	case h >= 12 && h < 17:
		return "☀️"
	case h >= 17 && h < 20:
		return "🌇"
	default:
		return "🌙"
	}
}

func Motivation(t time.Time) string {
	switch h := t.Hour(); {
	case h < 10:
		return "Start your day with purpose!"
	case h < 12:
		return "Make the most of your morning!"
	case h < 15:
		return "Keep up the great work!"
	case h < 18:
		return "You're doing great today!"
	case h < 21:
		return "Finish strong!"
	default:
		return "Time to wind down and reflect."
	}
}

// Headline is "Good <period>, <name>!", with "there" standing in for a blank name.
func Headline(t time.Time, username string) string {
	name := strings.TrimSpace(username)
	if name == "" {
		name = "there"
	}
	return "Good " + string(PeriodAt(t)) + ", " + name + "!"
}

func Clock(t time.Time, twelveHour bool) string {
	if twelveHour {
		return t.Format(constants.TimeFormat12)
	}
	return t.Format(constants.TimeFormat24)
}

func Date(t time.Time) string {
	return t.Format(constants.LongDateFormat)
}

// View is everything the greeting widget shows at one instant.
type View struct {
	Headline   string
	Emoji      string
	Clock      string
	Date       string
	Motivation string
	Focus      string
}

// Build assembles the widget. focus is today's goal, empty when unset.
func Build(t time.Time, username string, twelveHour bool, focus string) View {
	if focus == "" {
		focus = "Not set"
	}
	return View{
		Headline:   Headline(t, username),
		Emoji:      Emoji(t),
		Clock:      Clock(t, twelveHour),
		Date:       Date(t),
		Motivation: Motivation(t),
		Focus:      focus,
	}
}
