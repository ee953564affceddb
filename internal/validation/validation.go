package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/settings"
	"github.com/julianstephens/homebase/internal/todo"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictOverlappingWidgets ConflictType = "overlapping_widgets"
	ConflictOutsideGrid        ConflictType = "outside_grid"
	ConflictUnknownWidget      ConflictType = "unknown_widget"
	ConflictInvalidValue       ConflictType = "invalid_value"
	ConflictMissingLocation    ConflictType = "missing_location"
	ConflictDuplicateTodo      ConflictType = "duplicate_todo"
	ConflictMultipleDailyGoals ConflictType = "multiple_daily_goals"
)

const gridColumns = 3

// Conflict represents a detected problem in settings or todos
type Conflict struct {
	Type        ConflictType
	Description string
	Field       string   // dotted settings path (if applicable)
	Items       []string // widget ids or todo texts involved
	TodoIDs     []int64  // IDs of todos involved (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Merge appends the conflicts of other.
func (vr *ValidationResult) Merge(other ValidationResult) {
	vr.Conflicts = append(vr.Conflicts, other.Conflicts...)
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks the settings document and the todo list
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateSettings checks a settings document as stored, before the
// fallbacks applied by the typed views.
func (v *Validator) ValidateSettings(doc settings.Document) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	v.checkPomodoro(doc, &result)
	v.checkWeather(doc, &result)
	v.checkQuotes(doc, &result)
	v.checkGlobal(doc, &result)
	v.checkLayout(settings.LayoutOf(doc), &result)
	return result
}

func (v *Validator) checkPomodoro(doc settings.Document, result *ValidationResult) {
	rec := doc.Category(constants.CategoryPomodoro)
	for _, field := range []string{"focusDuration", "shortBreakDuration", "longBreakDuration", "sessionsUntilLongBreak"} {
		n, ok := number(rec[field])
		if !ok || n < 1 || n != float64(int(n)) {
			result.Conflicts = append(result.Conflicts, invalid(constants.CategoryPomodoro+"."+field, rec[field], "a positive whole number"))
		}
	}
}

func (v *Validator) checkWeather(doc settings.Document, result *ValidationResult) {
	rec := doc.Category(constants.CategoryWeather)
	units, _ := rec["units"].(string)
	if units != constants.UnitsImperial && units != constants.UnitsMetric {
		result.Conflicts = append(result.Conflicts, invalid("weather.units", rec["units"], `"imperial" or "metric"`))
	}
	if n, ok := number(rec["updateFrequency"]); !ok || n <= 0 {
		result.Conflicts = append(result.Conflicts, invalid("weather.updateFrequency", rec["updateFrequency"], "a positive number of milliseconds"))
	}

	w := settings.WeatherOf(doc)
	if !w.AutoLocation && strings.TrimSpace(w.ManualLocation.City) == "" {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictMissingLocation,
			Description: "Automatic location is off but weather.manualLocation.city is empty",
			Field:       "weather.manualLocation.city",
		})
	}
}

func (v *Validator) checkQuotes(doc settings.Document, result *ValidationResult) {
	rec := doc.Category(constants.CategoryQuotes)
	switch rec["updateFrequency"] {
	case constants.QuoteFrequencyHourly, constants.QuoteFrequencyDaily, constants.QuoteFrequencyWeekly:
	default:
		result.Conflicts = append(result.Conflicts, invalid("quotes.updateFrequency", rec["updateFrequency"], `"hourly", "daily" or "weekly"`))
	}
}

func (v *Validator) checkGlobal(doc settings.Document, result *ValidationResult) {
	rec := doc.Category(constants.CategoryGlobal)
	switch rec["timeFormat"] {
	case constants.TimeFormat12h, constants.TimeFormat24h:
	default:
		result.Conflicts = append(result.Conflicts, invalid("global.timeFormat", rec["timeFormat"], `"12h" or "24h"`))
	}
}

var knownWidgets = map[string]bool{
	constants.WidgetGreeting: true,
	constants.WidgetSearch:   true,
	constants.WidgetTodo:     true,
	constants.WidgetWeather:  true,
	constants.WidgetQuote:    true,
	constants.WidgetPomodoro: true,
}

func (v *Validator) checkLayout(layout settings.Layout, result *ValidationResult) {
	ids := layout.Ordered()
	for _, id := range ids {
		r := layout.GridLayout[id]
		if !knownWidgets[id] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownWidget,
				Description: fmt.Sprintf("Layout places unknown widget %q", id),
				Field:       "layout.gridLayout." + id,
				Items:       []string{id},
			})
		}
		if r.X < 0 || r.Y < 0 || r.W < 1 || r.H < 1 || r.X+r.W > gridColumns {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOutsideGrid,
				Description: fmt.Sprintf("Widget %q at x=%d y=%d w=%d h=%d does not fit the %d-column grid", id, r.X, r.Y, r.W, r.H, gridColumns),
				Field:       "layout.gridLayout." + id,
				Items:       []string{id},
			})
		}
	}

	// O(n²), the grid holds a handful of widgets.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := layout.GridLayout[ids[i]], layout.GridLayout[ids[j]]
			if rectsOverlap(a, b) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictOverlappingWidgets,
					Description: fmt.Sprintf("Widgets overlap: %q and %q", ids[i], ids[j]),
					Items:       []string{ids[i], ids[j]},
				})
			}
		}
	}
}

// ValidateTodos checks the todo list for duplicates and stray daily goals.
func (v *Validator) ValidateTodos(items []todo.Item) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	byText := make(map[string][]todo.Item)
	var order []string
	var goals []int64
	for _, it := range items {
		if it.IsDailyGoal {
			goals = append(goals, it.ID)
		}
		key := strings.ToLower(strings.TrimSpace(it.Text))
		if key == "" {
			continue
		}
		if _, seen := byText[key]; !seen {
			order = append(order, key)
		}
		byText[key] = append(byText[key], it)
	}

	for _, key := range order {
		dups := byText[key]
		if len(dups) < 2 {
			continue
		}
		ids := make([]int64, len(dups))
		for i, it := range dups {
			ids[i] = it.ID
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateTodo,
			Description: fmt.Sprintf("Duplicate todo: %q (IDs: %v)", dups[0].Text, ids),
			Items:       []string{dups[0].Text},
			TodoIDs:     ids,
		})
	}

	if len(goals) > 1 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictMultipleDailyGoals,
			Description: fmt.Sprintf("%d todos are marked as the daily goal (IDs: %v)", len(goals), goals),
			TodoIDs:     goals,
		})
	}
	return result
}

// AutoFixDuplicateTodos keeps the oldest todo of each duplicate group and
// deletes the rest through deleteFunc.
func AutoFixDuplicateTodos(conflicts []Conflict, deleteFunc func(id int64) error) []FixAction {
	actions := []FixAction{}

	for _, conflict := range conflicts {
		if conflict.Type != ConflictDuplicateTodo || len(conflict.TodoIDs) <= 1 {
			continue
		}

		// IDs are creation timestamps, so the smallest is the original.
		ids := append([]int64(nil), conflict.TodoIDs...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		keep := ids[0]

		var deleted, failed []int64
		for _, id := range ids[1:] {
			if err := deleteFunc(id); err != nil {
				failed = append(failed, id)
				continue
			}
			deleted = append(deleted, id)
		}

		name := ""
		if len(conflict.Items) > 0 {
			name = conflict.Items[0]
		}
		switch {
		case len(deleted) > 0:
			msg := fmt.Sprintf("Removed %d duplicate todo(s) %q (kept ID: %d, removed: %v)", len(deleted), name, keep, deleted)
			if len(failed) > 0 {
				msg += fmt.Sprintf(" (failed to remove: %v)", failed)
			}
			actions = append(actions, FixAction{Action: msg, SourceConflict: conflict})
		case len(failed) > 0:
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Failed to remove duplicates of %q: %v", name, failed),
				SourceConflict: conflict,
			})
		}
	}

	return actions
}

func invalid(field string, got any, want string) Conflict {
	return Conflict{
		Type:        ConflictInvalidValue,
		Description: fmt.Sprintf("%s is %v, expected %s", field, formatValue(got), want),
		Field:       field,
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "missing"
	case string:
		return fmt.Sprintf("%q", x)
	}
	return fmt.Sprintf("%v", v)
}

func number(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}

// rectsOverlap reports whether two grid rectangles share a cell.
func rectsOverlap(a, b settings.Rect) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}
