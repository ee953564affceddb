package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/homebase/internal/constants"
)

type GoalFormModel struct {
	Text string
}

type SettingsFormModel struct {
	Username   string
	TimeFormat string

	FocusDuration          string
	ShortBreakDuration     string
	LongBreakDuration      string
	SessionsUntilLongBreak string
	AutoStartBreaks        bool
	AutoStartPomodoros     bool

	Units        string
	AutoLocation bool
	City         string
	Country      string

	QuoteFrequency  string
	IncludeKeywords string
	ExcludeKeywords string
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return errors.New("must be a whole number of at least 1")
	}
	return nil
}

func NewGoalForm(f *GoalFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What's your main focus for today?").
				Value(&f.Text).
				Validate(required),
		),
	)
}

func (m *Model) openGoalForm() {
	m.goalForm = &GoalFormModel{Text: m.focusText}
	m.form = NewGoalForm(m.goalForm)
	m.previousState = m.state
	m.state = constants.StateDailyGoal
}

func NewSettingsForm(f *SettingsFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&f.Username),
			huh.NewSelect[string]().
				Title("Clock").
				Options(
					huh.NewOption("24-hour", constants.TimeFormat24h),
					huh.NewOption("12-hour", constants.TimeFormat12h),
				).
				Value(&f.TimeFormat),
		).Title("General"),
		huh.NewGroup(
			huh.NewInput().Title("Focus (minutes)").Value(&f.FocusDuration).Validate(positiveInt),
			huh.NewInput().Title("Short break (minutes)").Value(&f.ShortBreakDuration).Validate(positiveInt),
			huh.NewInput().Title("Long break (minutes)").Value(&f.LongBreakDuration).Validate(positiveInt),
			huh.NewInput().Title("Sessions until long break").Value(&f.SessionsUntilLongBreak).Validate(positiveInt),
			huh.NewConfirm().Title("Auto-start breaks?").Value(&f.AutoStartBreaks),
			huh.NewConfirm().Title("Auto-start focus sessions?").Value(&f.AutoStartPomodoros),
		).Title("Pomodoro"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Units").
				Options(
					huh.NewOption("Imperial (°F, mph)", constants.UnitsImperial),
					huh.NewOption("Metric (°C, km/h)", constants.UnitsMetric),
				).
				Value(&f.Units),
			huh.NewConfirm().Title("Detect location automatically?").Value(&f.AutoLocation),
			huh.NewInput().Title("City").Description("Used when auto-location is off").Value(&f.City),
			huh.NewInput().Title("Country code").Value(&f.Country),
		).Title("Weather"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("New quote").
				Options(
					huh.NewOption("Hourly", constants.QuoteFrequencyHourly),
					huh.NewOption("Daily", constants.QuoteFrequencyDaily),
					huh.NewOption("Weekly", constants.QuoteFrequencyWeekly),
				).
				Value(&f.QuoteFrequency),
			huh.NewInput().Title("Only quotes mentioning").Description("Comma separated").Value(&f.IncludeKeywords),
			huh.NewInput().Title("Never quotes mentioning").Description("Comma separated").Value(&f.ExcludeKeywords),
		).Title("Quotes"),
	)
}

func (m *Model) openSettingsForm() {
	s := m.ctx.Settings
	p, w, q, g := s.Pomodoro(), s.Weather(), s.Quotes(), s.Global()

	m.settingsForm = &SettingsFormModel{
		Username:               g.Username,
		TimeFormat:             g.TimeFormat,
		FocusDuration:          strconv.Itoa(p.FocusDuration),
		ShortBreakDuration:     strconv.Itoa(p.ShortBreakDuration),
		LongBreakDuration:      strconv.Itoa(p.LongBreakDuration),
		SessionsUntilLongBreak: strconv.Itoa(p.SessionsUntilLongBreak),
		AutoStartBreaks:        p.AutoStartBreaks,
		AutoStartPomodoros:     p.AutoStartPomodoros,
		Units:                  w.Units,
		AutoLocation:           w.AutoLocation,
		City:                   w.ManualLocation.City,
		Country:                w.ManualLocation.Country,
		QuoteFrequency:         q.UpdateFrequency,
		IncludeKeywords:        strings.Join(q.IncludeKeywords, ", "),
		ExcludeKeywords:        strings.Join(q.ExcludeKeywords, ", "),
	}
	m.form = NewSettingsForm(m.settingsForm)
	m.formError = ""
	m.previousState = m.state
	m.state = constants.StateEditSettings
}

func splitKeywords(s string) []string {
	out := []string{}
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// saveSettingsForm writes each category the form covers.
func (m *Model) saveSettingsForm() error {
	f := m.settingsForm
	updates := []struct {
		category string
		partial  map[string]any
	}{
		{constants.CategoryGlobal, map[string]any{
			"username":   strings.TrimSpace(f.Username),
			"timeFormat": f.TimeFormat,
		}},
		{constants.CategoryPomodoro, map[string]any{
			"focusDuration":          atoi(f.FocusDuration),
			"shortBreakDuration":     atoi(f.ShortBreakDuration),
			"longBreakDuration":      atoi(f.LongBreakDuration),
			"sessionsUntilLongBreak": atoi(f.SessionsUntilLongBreak),
			"autoStartBreaks":        f.AutoStartBreaks,
			"autoStartPomodoros":     f.AutoStartPomodoros,
		}},
		{constants.CategoryWeather, map[string]any{
			"units":        f.Units,
			"autoLocation": f.AutoLocation,
			"manualLocation": map[string]any{
				"city":    strings.TrimSpace(f.City),
				"country": strings.TrimSpace(f.Country),
			},
		}},
		{constants.CategoryQuotes, map[string]any{
			"updateFrequency": f.QuoteFrequency,
			"includeKeywords": splitKeywords(f.IncludeKeywords),
			"excludeKeywords": splitKeywords(f.ExcludeKeywords),
		}},
	}

	for _, u := range updates {
		if _, err := m.ctx.Settings.UpdateCategory(context.Background(), u.category, u.partial); err != nil {
			return fmt.Errorf("%s: %w", u.category, err)
		}
	}
	return nil
}
