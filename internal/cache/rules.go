package cache

import (
	"time"

	"github.com/julianstephens/homebase/internal/constants"
)

// Meta is what a staleness rule may inspect about a stored entry.
type Meta struct {
	Timestamp int64 // unix milliseconds
	Location  string
}

// Time returns the entry timestamp as a time.Time.
func (m Meta) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// Rule decides whether an entry must be refreshed. e is nil when no usable
// entry exists; every rule treats that as stale.
type Rule interface {
	IsStale(e *Meta, now time.Time) bool
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(e *Meta, now time.Time) bool

func (f RuleFunc) IsStale(e *Meta, now time.Time) bool {
	if e == nil {
		return true
	}
	return f(e, now)
}

func elapsedMs(e *Meta, now time.Time) int64 {
	return now.UnixMilli() - e.Timestamp
}

// FixedInterval is stale once d has elapsed since the entry was written.
func FixedInterval(d time.Duration) Rule {
	return RuleFunc(func(e *Meta, now time.Time) bool {
		return elapsedMs(e, now) >= d.Milliseconds()
	})
}

const (
	hourMs = int64(time.Hour / time.Millisecond)
	dayMs  = 24 * hourMs
)

// QuoteFrequency maps a quotes.updateFrequency setting to a rule:
// hourly refreshes after more than an hour, daily when the local calendar day
// changes and weekly once a whole week of days has passed. Unknown values
// always refresh.
func QuoteFrequency(freq string) Rule {
	switch freq {
	case constants.QuoteFrequencyHourly:
		return RuleFunc(func(e *Meta, now time.Time) bool {
			return elapsedMs(e, now) > hourMs
		})
	case constants.QuoteFrequencyDaily:
		return RuleFunc(func(e *Meta, now time.Time) bool {
			then := e.Time().In(now.Location())
			y1, m1, d1 := then.Date()
			y2, m2, d2 := now.Date()
			return y1 != y2 || m1 != m2 || d1 != d2
		})
	case constants.QuoteFrequencyWeekly:
		return RuleFunc(func(e *Meta, now time.Time) bool {
			days := elapsedMs(e, now) / dayMs
			return days/7 >= 1
		})
	}
	return Always()
}

// LocationChanged forces a refresh when the entry was recorded for a
// different location, and otherwise defers to inner.
func LocationChanged(inner Rule, location string) Rule {
	return RuleFunc(func(e *Meta, now time.Time) bool {
		if e.Location != location {
			return true
		}
		return inner.IsStale(e, now)
	})
}

// Always is stale for every entry. Used for manual refreshes.
func Always() Rule {
	return RuleFunc(func(*Meta, time.Time) bool { return true })
}
