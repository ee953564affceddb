package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/links"
	"github.com/julianstephens/homebase/internal/logger"
	"github.com/julianstephens/homebase/internal/notifier"
	"github.com/julianstephens/homebase/internal/pomodoro"
	"github.com/julianstephens/homebase/internal/quotes"
	"github.com/julianstephens/homebase/internal/search"
	"github.com/julianstephens/homebase/internal/settings"
	"github.com/julianstephens/homebase/internal/todo"
	"github.com/julianstephens/homebase/internal/tui/components/timer"
	"github.com/julianstephens/homebase/internal/tui/components/todolist"
	"github.com/julianstephens/homebase/internal/validation"
	"github.com/julianstephens/homebase/internal/weather"
	"github.com/julianstephens/homebase/internal/widget"
)

const (
	loadTimeout = 15 * time.Second
	eventBuffer = 64
)

// QuoteResult is what the quote widget shows.
type QuoteResult struct {
	Quote    quotes.Quote
	Fallback bool
}

// interactive widgets, in the order they take focus when present in the layout
var focusable = map[string]bool{
	constants.WidgetSearch:   true,
	constants.WidgetTodo:     true,
	constants.WidgetWeather:  true,
	constants.WidgetQuote:    true,
	constants.WidgetPomodoro: true,
}

type Option func(*Model)

func WithLauncher(l search.Launcher) Option {
	return func(m *Model) { m.launcher = l }
}

func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithEngineOptions is passed to the pomodoro engine when the dashboard
// creates it.
func WithEngineOptions(opts ...pomodoro.Option) Option {
	return func(m *Model) { m.engineOpts = append(m.engineOpts, opts...) }
}

type Model struct {
	ctx           *cli.Context
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model

	layout          settings.Layout
	global          settings.Global
	weatherSettings settings.Weather
	widgets         []string
	focused         int
	// hidden widgets stay in the layout but are not drawn this session
	hidden map[string]bool

	todoList todolist.Model
	timer    timer.Model
	input    textinput.Model

	links      []links.Link
	linkCursor int

	engine     *pomodoro.Engine
	engineOpts []pomodoro.Option
	weather    *widget.Loader[weather.Report]
	quote      *widget.Loader[QuoteResult]

	form         *huh.Form
	goalForm     *GoalFormModel
	settingsForm *SettingsFormModel

	events      chan tea.Msg
	unsubscribe []func()
	launcher    search.Launcher
	now         func() time.Time
	clock       time.Time
	day         string
	focusText   string

	notice              string
	noticeLevel         notifier.Level
	formError           string
	validationWarning   string
	validationConflicts []validation.Conflict

	width    int
	height   int
	quitting bool
}

func NewModel(ctx *cli.Context, opts ...Option) Model {
	m := Model{
		ctx:      ctx,
		state:    constants.StateDashboard,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		events:   make(chan tea.Msg, eventBuffer),
		launcher: search.OSLauncher{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.clock = m.now()
	m.day = m.clock.Format(constants.DateFormat)

	ch, tone := ctx.Notifier(notifier.ChannelFunc(func(message string, level notifier.Level, durationMs int) error {
		m.send(NotificationMsg{Message: message, Level: level})
		return nil
	}))
	m.engine = ctx.Pomodoro(append([]pomodoro.Option{pomodoro.WithNotifier(ch, tone)}, m.engineOpts...)...)
	m.unsubscribe = append(m.unsubscribe,
		m.engine.Subscribe(func(ev pomodoro.Event) { m.send(PomodoroMsg{Event: ev}) }),
		ctx.Settings.Subscribe(func(doc settings.Document) { m.send(SettingsChangedMsg{Doc: doc}) }),
	)

	m.weather = widget.NewLoader[weather.Report](constants.WidgetWeather, ctx.Weather.Current)
	m.quote = widget.NewLoader[QuoteResult](constants.WidgetQuote, func(c context.Context, force bool) (QuoteResult, error) {
		q, fallback, err := ctx.Quotes.CurrentOrFallback(c, force)
		return QuoteResult{Quote: q, Fallback: fallback}, err
	})

	m.todoList = todolist.New(nil, 0, 0)
	m.timer = timer.New(m.engine.State(), ctx.Settings.Pomodoro())

	ti := textinput.New()
	ti.CharLimit = 200
	m.input = ti

	m.applySettings(ctx.Settings.Get())
	m.refreshTodos()

	if due, err := ctx.Todos.DailyCheck(context.Background(), m.clock); err != nil {
		logger.Warn("Daily focus check failed", "error", err)
	} else if due {
		m.openGoalForm()
	}

	m.updateValidationStatus()
	return m
}

// send queues msg for the program without ever blocking the caller. Engine
// ticks are dropped when the queue is full; the view re-reads engine state.
func (m Model) send(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return ClockMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{clockTick(), waitForEvent(m.events)}
	if m.hasWidget(constants.WidgetWeather) {
		cmds = append(cmds, m.loadWeather(false))
	}
	if m.hasWidget(constants.WidgetQuote) {
		cmds = append(cmds, m.loadQuote(false))
	}
	if m.form != nil {
		cmds = append(cmds, m.form.Init())
	}
	return tea.Batch(cmds...)
}

func (m Model) loadWeather(force bool) tea.Cmd {
	l := m.weather
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if force {
			return WeatherMsg{State: l.Retry(ctx)}
		}
		return WeatherMsg{State: l.Load(ctx)}
	}
}

func (m Model) loadQuote(force bool) tea.Cmd {
	l := m.quote
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if force {
			return QuoteMsg{State: l.Retry(ctx)}
		}
		return QuoteMsg{State: l.Load(ctx)}
	}
}

// applySettings re-reads the views the dashboard renders from doc.
func (m *Model) applySettings(doc settings.Document) {
	m.layout = settings.LayoutOf(doc)
	m.global = settings.GlobalOf(doc)
	m.weatherSettings = settings.WeatherOf(doc)
	m.timer.Config = settings.PomodoroOf(doc)
	m.rebuildFocus()
	m.resize()
}

// rebuildFocus recomputes the focus order from the layout, keeping the
// focused widget when it is still visible.
func (m *Model) rebuildFocus() {
	var current string
	if m.focused < len(m.widgets) {
		current = m.widgets[m.focused]
	}
	var widgets []string
	m.focused = 0
	for _, id := range m.layout.Ordered() {
		if !focusable[id] || m.hidden[id] {
			continue
		}
		if id == current {
			m.focused = len(widgets)
		}
		widgets = append(widgets, id)
	}
	m.widgets = widgets
}

// hideFocused hides the focused widget for this session and moves focus to
// the widget that took its place.
func (m *Model) hideFocused() {
	id := m.focusedWidget()
	if id == "" {
		return
	}
	idx := m.focused
	m.hide(id)
	m.focused = min(idx, max(len(m.widgets)-1, 0))
	m.setNotice("Hid "+id+", press H to show all", notifier.LevelInfo)
}

// toggleShowAll shows every widget when some are hidden, and otherwise
// hides all but the greeting.
func (m *Model) toggleShowAll() {
	if len(m.hidden) > 0 {
		m.hidden = nil
		m.rebuildFocus()
		m.setNotice("Showing all widgets", notifier.LevelInfo)
		return
	}
	var ids []string
	for _, id := range m.layout.Ordered() {
		if id != constants.WidgetGreeting {
			ids = append(ids, id)
		}
	}
	m.hide(ids...)
	m.setNotice("Showing only the time, press H to show all", notifier.LevelInfo)
}

// hide copies the set so earlier Model values keep their own view.
func (m *Model) hide(ids ...string) {
	next := make(map[string]bool, len(m.hidden)+len(ids))
	for id := range m.hidden {
		next[id] = true
	}
	for _, id := range ids {
		next[id] = true
	}
	m.hidden = next
	m.rebuildFocus()
}

func (m Model) visible(id string) bool {
	return m.hasWidget(id) && !m.hidden[id]
}

// loadLinks re-reads the quick-access links and keeps the cursor in range.
func (m *Model) loadLinks() {
	ls, err := m.ctx.Links.List(context.Background())
	if err != nil {
		m.setNotice("Failed to load links: "+err.Error(), notifier.LevelError)
		ls = nil
	}
	m.links = ls
	m.linkCursor = min(m.linkCursor, max(len(ls)-1, 0))
}

func (m Model) hasWidget(id string) bool {
	_, ok := m.layout.GridLayout[id]
	return ok
}

func (m Model) focusedWidget() string {
	if len(m.widgets) == 0 {
		return ""
	}
	return m.widgets[m.focused]
}

func (m *Model) refreshTodos() {
	bg := context.Background()
	items, err := m.ctx.Todos.List(bg)
	if err != nil {
		m.formError = "Failed to load todos: " + err.Error()
		items = []todo.Item{}
	}
	m.todoList.SetTodos(items)

	m.focusText = ""
	if g, ok, err := m.ctx.Todos.DailyGoal(bg); err == nil && ok {
		m.focusText = g.Text
	}
}

func (m *Model) updateValidationStatus() {
	v := validation.New()
	result := v.ValidateSettings(m.ctx.Settings.Get())

	items, err := m.ctx.Todos.List(context.Background())
	if err != nil {
		m.validationWarning = "⚠ Validation unavailable"
		m.validationConflicts = nil
		return
	}
	result.Merge(v.ValidateTodos(items))

	m.validationConflicts = result.Conflicts
	if len(result.Conflicts) > 0 {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s), run 'homebase validate'", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

func (m *Model) setNotice(message string, level notifier.Level) {
	m.notice = message
	m.noticeLevel = level
}

// Close detaches the dashboard from the engine and settings store.
func (m Model) Close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
}
