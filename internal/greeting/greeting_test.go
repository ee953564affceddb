package greeting

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.October, 17, hour, minute, 0, 0, time.Local)
}

func TestPeriodAt(t *testing.T) {
	tests := []struct {
		hour int
		want Period
	}{
		{0, Morning},
		{11, Morning},
		{12, Afternoon},
		{17, Afternoon},
		{18, Evening},
		{23, Evening},
	}
	for _, tt := range tests {
		if got := PeriodAt(at(tt.hour, 0)); got != tt.want {
			t.Errorf("PeriodAt(%02d:00) = %s, want %s", tt.hour, got, tt.want)
		}
	}
}

func TestMotivation(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{6, "Start your day with purpose!"},
		{10, "Make the most of your morning!"},
		{12, "Keep up the great work!"},
		{15, "You're doing great today!"},
		{18, "Finish strong!"},
		{21, "Time to wind down and reflect."},
	}
	for _, tt := range tests {
		if got := Motivation(at(tt.hour, 0)); got != tt.want {
			t.Errorf("Motivation(%02d:00) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestEmoji(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{4, "🌙"},
		{5, "🌅"},
		{12, "☀️"},
		{17, "🌇"},
		{20, "🌙"},
	}
	for _, tt := range tests {
		if got := Emoji(at(tt.hour, 0)); got != tt.want {
			t.Errorf("Emoji(%02d:00) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestClock(t *testing.T) {
	ts := at(15, 4)
	if got := Clock(ts, false); got != "15:04" {
		t.Errorf("24h clock = %q", got)
	}
	if got := Clock(ts, true); got != "3:04 PM" {
		t.Errorf("12h clock = %q", got)
	}
}

func TestBuild(t *testing.T) {
	v := Build(at(9, 5), "  ", false, "")
	if v.Headline != "Good morning, there!" {
		t.Errorf("unexpected headline %q", v.Headline)
	}
	if v.Focus != "Not set" {
		t.Errorf("unexpected focus %q", v.Focus)
	}
	if v.Date != "Saturday, October 17, 2026" {
		t.Errorf("unexpected date %q", v.Date)
	}

	v = Build(at(19, 0), "Sam", true, "Ship it")
	if v.Headline != "Good evening, Sam!" || v.Focus != "Ship it" || v.Clock != "7:00 PM" {
		t.Errorf("unexpected view %+v", v)
	}
}
