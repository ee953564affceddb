package settings

import (
	"encoding/json"
	goerrors "errors"
	"sort"
	"time"

	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/logger"
)

type Pomodoro struct {
	FocusDuration          int  `json:"focusDuration"`
	ShortBreakDuration     int  `json:"shortBreakDuration"`
	LongBreakDuration      int  `json:"longBreakDuration"`
	SessionsUntilLongBreak int  `json:"sessionsUntilLongBreak"`
	AutoStartBreaks        bool `json:"autoStartBreaks"`
	AutoStartPomodoros     bool `json:"autoStartPomodoros"`
}

// Location is a manually entered place for weather lookups.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Query renders the location as "City,Country", or just the city.
func (l Location) Query() string {
	if l.Country == "" {
		return l.City
	}
	return l.City + "," + l.Country
}

type Weather struct {
	Units          string   `json:"units"`
	AutoLocation   bool     `json:"autoLocation"`
	ManualLocation Location `json:"manualLocation"`
	// UpdateFrequency is in milliseconds.
	UpdateFrequency int64 `json:"updateFrequency"`
}

func (w Weather) UpdateInterval() time.Duration {
	return time.Duration(w.UpdateFrequency) * time.Millisecond
}

type Quotes struct {
	Categories      []string `json:"categories"`
	UpdateFrequency string   `json:"updateFrequency"`
	IncludeKeywords []string `json:"includeKeywords"`
	ExcludeKeywords []string `json:"excludeKeywords"`
}

// Rect is a widget's cell position and span on the three-column grid.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Order is the widget's position when the grid is flattened row by row.
func (r Rect) Order() int {
	return r.Y*3 + r.X
}

type Layout struct {
	GridLayout map[string]Rect `json:"gridLayout"`
}

// Ordered returns the widget ids sorted by grid order, ties broken by id.
func (l Layout) Ordered() []string {
	ids := make([]string, 0, len(l.GridLayout))
	for id := range l.GridLayout {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		oi, oj := l.GridLayout[ids[i]].Order(), l.GridLayout[ids[j]].Order()
		if oi != oj {
			return oi < oj
		}
		return ids[i] < ids[j]
	})
	return ids
}

type Global struct {
	Username   string `json:"username"`
	TimeFormat string `json:"timeFormat"`
	Theme      string `json:"theme"`
}

// Uses12Hour reports whether clocks should render with AM/PM.
func (g Global) Uses12Hour() bool {
	return g.TimeFormat == constants.TimeFormat12h
}

// decodeView fills out from the named category of doc. out must already hold
// the default view; fields with a mismatched type keep their default.
func decodeView(doc Document, category string, out any) {
	rec := doc.Category(category)
	if rec == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		logger.Warn("Failed to encode settings category", "category", category, "error", err)
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if goerrors.As(err, &typeErr) {
			logger.Warn("Ignoring settings field with wrong type", "category", category, "field", typeErr.Field, "error", err)
			return
		}
		logger.Warn("Failed to decode settings category", "category", category, "error", err)
	}
}

func defaultPomodoro() Pomodoro {
	return Pomodoro{
		FocusDuration:          constants.DefaultFocusDuration,
		ShortBreakDuration:     constants.DefaultShortBreakDuration,
		LongBreakDuration:      constants.DefaultLongBreakDuration,
		SessionsUntilLongBreak: constants.DefaultSessionsUntilLongBreak,
	}
}

// PomodoroOf decodes the pomodoro category. Non-positive durations or cycle
// lengths fall back to their defaults so the timer always advances.
func PomodoroOf(doc Document) Pomodoro {
	p := defaultPomodoro()
	decodeView(doc, constants.CategoryPomodoro, &p)
	def := defaultPomodoro()
	if p.FocusDuration < 1 {
		p.FocusDuration = def.FocusDuration
	}
	if p.ShortBreakDuration < 1 {
		p.ShortBreakDuration = def.ShortBreakDuration
	}
	if p.LongBreakDuration < 1 {
		p.LongBreakDuration = def.LongBreakDuration
	}
	if p.SessionsUntilLongBreak < 1 {
		p.SessionsUntilLongBreak = def.SessionsUntilLongBreak
	}
	return p
}

func WeatherOf(doc Document) Weather {
	w := Weather{
		Units:           constants.UnitsImperial,
		AutoLocation:    true,
		UpdateFrequency: constants.DefaultWeatherUpdateFrequency,
	}
	decodeView(doc, constants.CategoryWeather, &w)
	return w
}

func QuotesOf(doc Document) Quotes {
	q := Quotes{
		Categories:      []string{"motivational", "technical", "trivia"},
		UpdateFrequency: constants.QuoteFrequencyDaily,
	}
	decodeView(doc, constants.CategoryQuotes, &q)
	return q
}

func LayoutOf(doc Document) Layout {
	l := Layout{}
	decodeView(doc, constants.CategoryLayout, &l)
	if len(l.GridLayout) == 0 {
		decodeView(Defaults(), constants.CategoryLayout, &l)
	}
	return l
}

func GlobalOf(doc Document) Global {
	g := Global{
		TimeFormat: constants.TimeFormat24h,
		Theme:      constants.DefaultTheme,
	}
	decodeView(doc, constants.CategoryGlobal, &g)
	return g
}
