package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/greeting"
	"github.com/julianstephens/homebase/internal/notifier"
	"github.com/julianstephens/homebase/internal/weather"
	"github.com/julianstephens/homebase/internal/widget"
)

const (
	gridColumns   = 3
	rowHeight     = 9
	minCellWidth  = 24
	defaultWidth  = 120
	frameOverhead = 4
)

func (m Model) cellWidth() int {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	if cw := (w - 2) / gridColumns; cw > minCellWidth {
		return cw
	}
	return minCellWidth
}

func (m *Model) resize() {
	cw := m.cellWidth()
	if r, ok := m.layout.GridLayout[constants.WidgetTodo]; ok {
		m.todoList.SetSize(r.W*cw-frameOverhead, r.H*rowHeight-frameOverhead)
	}
	if r, ok := m.layout.GridLayout[constants.WidgetPomodoro]; ok {
		m.timer.SetSize(r.W*cw - frameOverhead)
	}
	m.input.Width = cw*2 - frameOverhead
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateDailyGoal, constants.StateEditSettings:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmReset:
		content = m.viewConfirmReset()
	case constants.StateLinks:
		content = m.viewLinks()
	default:
		content = m.viewGrid()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		m.viewStatus(),
		m.help.View(m.keys),
	)
}

// viewGrid places widgets on the three-column grid, one lipgloss row per
// layout row, in layout order.
func (m Model) viewGrid() string {
	cw := m.cellWidth()
	byRow := make(map[int][]string)
	for _, id := range m.layout.Ordered() {
		if m.hidden[id] {
			continue
		}
		y := m.layout.GridLayout[id].Y
		byRow[y] = append(byRow[y], id)
	}
	rows := make([]int, 0, len(byRow))
	for y := range byRow {
		rows = append(rows, y)
	}
	sort.Ints(rows)

	var rendered []string
	for _, y := range rows {
		var cells []string
		col := 0
		for _, id := range byRow[y] {
			body, ok := m.viewWidget(id)
			if !ok {
				continue
			}
			r := m.layout.GridLayout[id]
			if r.X > col {
				cells = append(cells, lipgloss.NewStyle().Width((r.X-col)*cw).Render(""))
			}
			style := widgetStyle
			if id == m.focusedWidget() {
				style = focusedWidgetStyle
			}
			cells = append(cells, style.
				Width(max(r.W, 1)*cw-2).
				Height(max(r.H, 1)*rowHeight-2).
				Render(body))
			col = r.X + max(r.W, 1)
		}
		rendered = append(rendered, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func (m Model) viewWidget(id string) (string, bool) {
	switch id {
	case constants.WidgetGreeting:
		return m.viewGreeting(), true
	case constants.WidgetSearch:
		return m.viewSearch(), true
	case constants.WidgetTodo:
		return m.viewTodo(), true
	case constants.WidgetWeather:
		return m.viewWeather(), true
	case constants.WidgetQuote:
		return m.viewQuote(), true
	case constants.WidgetPomodoro:
		return titleStyle.Render("Pomodoro") + "\n" + m.timer.View(), true
	}
	return "", false
}

func (m Model) viewGreeting() string {
	v := greeting.Build(m.clock, m.global.Username, m.global.Uses12Hour(), m.focusText)
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(v.Emoji+" "+v.Headline),
		v.Clock+"  "+mutedStyle.Render(v.Date),
		"",
		v.Motivation,
		"Today's focus: "+v.Focus,
	)
}

func (m Model) viewSearch() string {
	if m.state == constants.StateSearch {
		return titleStyle.Render("Search") + "\n" + m.input.View()
	}
	return titleStyle.Render("Search") + "\n" + mutedStyle.Render("Press / to search the web")
}

func (m Model) viewTodo() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Todo"))
	b.WriteString("\n")
	if m.state == constants.StateAddTodo {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.formError != "" {
			b.WriteString(dangerStyle.Render(m.formError))
			b.WriteString("\n")
		}
	}
	b.WriteString(m.todoList.View())
	return b.String()
}

func loaderBody[T any](title string, s widget.State[T], ready func(T) string) string {
	body := titleStyle.Render(title) + "\n"
	switch s.Status {
	case widget.Ready:
		return body + ready(s.Data)
	case widget.Failed:
		return body + dangerStyle.Render(s.Message()) + "\n" + mutedStyle.Render("[r] retry")
	}
	return body + mutedStyle.Render(s.Message())
}

func (m Model) viewWeather() string {
	units := m.ctx.Settings.Weather().Units
	timeFormat := constants.TimeFormat24
	if m.global.Uses12Hour() {
		timeFormat = constants.TimeFormat12
	}
	return loaderBody("Weather", m.weather.State(), func(r weather.Report) string {
		lines := []string{r.Name}
		lines = append(lines, weather.Lines(r, units)...)
		if at := m.weather.State().UpdatedAt; !at.IsZero() {
			lines = append(lines, mutedStyle.Render("Updated "+at.Format(timeFormat)))
		}
		return strings.Join(lines, "\n")
	})
}

func (m Model) viewQuote() string {
	return loaderBody("Quote of the Day", m.quote.State(), func(q QuoteResult) string {
		text := fmt.Sprintf("%q\n- %s", q.Quote.Content, q.Quote.Author)
		if q.Fallback {
			text += "\n" + mutedStyle.Render("(offline)")
		}
		return text
	})
}

func (m Model) viewStatus() string {
	var parts []string
	if m.notice != "" {
		style := mutedStyle
		switch m.noticeLevel {
		case notifier.LevelSuccess:
			style = successStyle
		case notifier.LevelError:
			style = dangerStyle
		}
		parts = append(parts, style.Render(m.notice))
	}
	if m.formError != "" && m.state != constants.StateAddTodo {
		parts = append(parts, dangerStyle.Render(m.formError))
	}
	if m.validationWarning != "" {
		parts = append(parts, warningStyle.Render(m.validationWarning))
	}
	if n := len(m.hidden); n > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d widget(s) hidden", n)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) viewLinks() string {
	lines := []string{titleStyle.Render("Quick Links"), ""}
	if len(m.links) == 0 {
		lines = append(lines, mutedStyle.Render("No quick-access links. Add one with 'homebase links add <name> <url>'."))
	}
	for i, l := range m.links {
		cursor := "  "
		if i == m.linkCursor {
			cursor = "> "
		}
		name := lipgloss.NewStyle().Foreground(lipgloss.Color(l.Color)).Bold(i == m.linkCursor).Render(l.Name)
		lines = append(lines, cursor+name+"  "+mutedStyle.Render(l.URL))
	}
	lines = append(lines, "", mutedStyle.Render("enter open • d delete • esc close"))
	return widgetStyle.Width(max(m.cellWidth()*2, 40)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewConfirmReset() string {
	return lipgloss.Place(max(m.width, 40), max(m.height-4, 6),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Reset all settings to their defaults?"),
			"Todos and today's focus are kept.",
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
