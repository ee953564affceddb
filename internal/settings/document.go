// Package settings owns the user's dashboard settings document: defaults,
// the self-healing merge of saved state, typed category views and observers.
package settings

import (
	"github.com/julianstephens/homebase/internal/constants"
)

// Document is the settings tree as decoded from JSON. Numbers are float64,
// arrays are []any and nested records are map[string]any.
type Document map[string]any

// Categories lists the fixed top-level categories in display order.
var Categories = []string{
	constants.CategoryPomodoro,
	constants.CategoryWeather,
	constants.CategoryQuotes,
	constants.CategoryLayout,
	constants.CategoryGlobal,
}

// IsCategory reports whether name is one of the fixed top-level categories.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

func rect(x, y, w, h float64) map[string]any {
	return map[string]any{"x": x, "y": y, "w": w, "h": h}
}

// Defaults returns a fresh copy of the default document.
func Defaults() Document {
	return Document{
		constants.CategoryPomodoro: map[string]any{
			"focusDuration":          float64(constants.DefaultFocusDuration),
			"shortBreakDuration":     float64(constants.DefaultShortBreakDuration),
			"longBreakDuration":      float64(constants.DefaultLongBreakDuration),
			"sessionsUntilLongBreak": float64(constants.DefaultSessionsUntilLongBreak),
			"autoStartBreaks":        false,
			"autoStartPomodoros":     false,
		},
		constants.CategoryWeather: map[string]any{
			"units":        constants.UnitsImperial,
			"autoLocation": true,
			"manualLocation": map[string]any{
				"city":    "",
				"country": "",
			},
			"updateFrequency": float64(constants.DefaultWeatherUpdateFrequency),
		},
		constants.CategoryQuotes: map[string]any{
			"categories":      []any{"motivational", "technical", "trivia"},
			"updateFrequency": constants.QuoteFrequencyDaily,
			"includeKeywords": []any{},
			"excludeKeywords": []any{},
		},
		constants.CategoryLayout: map[string]any{
			"gridLayout": map[string]any{
				constants.WidgetGreeting: rect(0, 0, 1, 1),
				constants.WidgetSearch:   rect(1, 0, 2, 1),
				constants.WidgetTodo:     rect(0, 1, 1, 1),
				constants.WidgetWeather:  rect(1, 1, 1, 1),
				constants.WidgetQuote:    rect(2, 1, 1, 1),
				constants.WidgetPomodoro: rect(0, 2, 3, 1),
			},
		},
		constants.CategoryGlobal: map[string]any{
			"username":   "",
			"timeFormat": constants.TimeFormat24h,
			"theme":      constants.DefaultTheme,
		},
	}
}

// DeepMerge lays saved over defaults and returns a new document. Records
// present on both sides are merged recursively; any other saved value
// (arrays included) replaces the default wholesale. Keys only in defaults are
// kept, keys only in saved are carried through, and JSON null in saved counts
// as absent. Neither argument is modified.
func DeepMerge(defaults, saved Document) Document {
	return Document(mergeRecords(defaults, saved))
}

func mergeRecords(defaults, saved map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(saved))
	for k, v := range defaults {
		out[k] = deepCopy(v)
	}
	for k, sv := range saved {
		if sv == nil {
			continue
		}
		dRec, dOK := asRecord(defaults[k])
		sRec, sOK := asRecord(sv)
		if dOK && sOK {
			out[k] = mergeRecords(dRec, sRec)
			continue
		}
		out[k] = deepCopy(sv)
	}
	return out
}

func asRecord(v any) (map[string]any, bool) {
	switch r := v.(type) {
	case map[string]any:
		return r, true
	case Document:
		return r, true
	}
	return nil, false
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = deepCopy(vv)
		}
		return out
	case Document:
		return deepCopy(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = deepCopy(vv)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return v
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(deepCopy(map[string]any(d)).(map[string]any))
}

// Category returns a copy of the named category record, or nil.
func (d Document) Category(name string) map[string]any {
	rec, ok := asRecord(d[name])
	if !ok {
		return nil
	}
	return deepCopy(rec).(map[string]any)
}
