package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/notifier"
	"github.com/julianstephens/homebase/internal/search"
	"github.com/julianstephens/homebase/internal/todo"
	"github.com/julianstephens/homebase/internal/tui/components/timer"
	"github.com/julianstephens/homebase/internal/tui/components/todolist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		if m.form != nil {
			form, cmd := m.form.Update(msg)
			if f, ok := form.(*huh.Form); ok {
				m.form = f
			}
			return m, cmd
		}
		return m, nil

	case ClockMsg:
		return m.handleClock(msg)

	case PomodoroMsg:
		m.timer.State = m.engine.State()
		return m, waitForEvent(m.events)

	case NotificationMsg:
		m.setNotice(msg.Message, msg.Level)
		return m, waitForEvent(m.events)

	case SettingsChangedMsg:
		hadWeather := m.hasWidget(constants.WidgetWeather)
		prev := m.weatherSettings
		m.applySettings(msg.Doc)
		m.updateValidationStatus()
		// errored weather is only retried by the user, so other categories
		// must not trigger a fetch
		if !m.hasWidget(constants.WidgetWeather) || (hadWeather && m.weatherSettings == prev) {
			return m, waitForEvent(m.events)
		}
		return m, tea.Batch(waitForEvent(m.events), m.loadWeather(false))

	case WeatherMsg, QuoteMsg:
		// loaders hold the state; the message only triggers a redraw
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.setNotice(msg.err.Error(), notifier.LevelError)
		} else {
			m.setNotice("Opened "+msg.url, notifier.LevelInfo)
		}
		return m, nil
	}

	switch m.state {
	case constants.StateDailyGoal:
		return m.updateGoalForm(msg)
	case constants.StateEditSettings:
		return m.updateSettingsForm(msg)
	case constants.StateAddTodo, constants.StateSearch:
		return m.updateInput(msg)
	case constants.StateConfirmReset:
		return m.updateConfirmReset(msg)
	case constants.StateLinks:
		return m.updateLinks(msg)
	}
	return m.updateDashboard(msg)
}

func (m Model) handleClock(ClockMsg) (tea.Model, tea.Cmd) {
	m.clock = m.now()
	day := m.clock.Format(constants.DateFormat)
	if day == m.day {
		return m, clockTick()
	}

	m.day = day
	m.refreshTodos()
	cmds := []tea.Cmd{clockTick()}
	if m.state == constants.StateDashboard {
		if due, err := m.ctx.Todos.DailyCheck(context.Background(), m.clock); err == nil && due {
			m.openGoalForm()
			cmds = append(cmds, m.form.Init())
		}
	}
	if m.hasWidget(constants.WidgetQuote) {
		cmds = append(cmds, m.loadQuote(false))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			if len(m.widgets) > 0 {
				m.focused = (m.focused + 1) % len(m.widgets)
			}
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			if len(m.widgets) > 0 {
				m.focused = (m.focused - 1 + len(m.widgets)) % len(m.widgets)
			}
			return m, nil
		case key.Matches(msg, m.keys.Goal):
			m.openGoalForm()
			return m, m.form.Init()
		case key.Matches(msg, m.keys.Settings):
			m.openSettingsForm()
			return m, m.form.Init()
		case key.Matches(msg, m.keys.Reset):
			m.previousState = m.state
			m.state = constants.StateConfirmReset
			return m, nil
		case key.Matches(msg, m.keys.Search):
			if !m.visible(constants.WidgetSearch) {
				return m, nil
			}
			cmd := m.openInput(constants.StateSearch, "Search the web...")
			return m, cmd
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh()
		case key.Matches(msg, m.keys.Links):
			m.previousState = m.state
			m.state = constants.StateLinks
			m.loadLinks()
			return m, nil
		case key.Matches(msg, m.keys.Hide):
			m.hideFocused()
			return m, nil
		case key.Matches(msg, m.keys.ShowAll):
			m.toggleShowAll()
			return m, nil
		}
		return m.updateFocused(msg)

	case todolist.AddTodoMsg:
		cmd := m.openInput(constants.StateAddTodo, "Add a new task...")
		return m, cmd

	case todolist.ToggleTodoMsg:
		if _, err := m.ctx.Todos.Toggle(context.Background(), msg.ID); err != nil {
			m.setNotice("Failed to update todo: "+err.Error(), notifier.LevelError)
		}
		m.refreshTodos()
		return m, nil

	case todolist.DeleteTodoMsg:
		if err := m.ctx.Todos.Delete(context.Background(), msg.ID); err != nil {
			m.setNotice("Failed to delete todo: "+err.Error(), notifier.LevelError)
		}
		m.refreshTodos()
		m.timer.State = m.engine.State()
		m.updateValidationStatus()
		return m, nil

	case timer.ToggleMsg:
		m.engine.Toggle()
		m.timer.State = m.engine.State()
		return m, nil
	case timer.ResetMsg:
		m.engine.Reset()
		m.timer.State = m.engine.State()
		return m, nil
	case timer.SkipMsg:
		m.engine.Skip()
		m.timer.State = m.engine.State()
		return m, nil
	case timer.SetModeMsg:
		m.engine.SetMode(msg.Mode)
		m.timer.State = m.engine.State()
		return m, nil
	}
	return m, nil
}

// updateFocused routes a key the dashboard did not claim to the focused widget.
func (m Model) updateFocused(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focusedWidget() {
	case constants.WidgetTodo:
		m.todoList, cmd = m.todoList.Update(msg)
	case constants.WidgetPomodoro:
		m.timer, cmd = m.timer.Update(msg)
	case constants.WidgetSearch:
		if msg.Type == tea.KeyEnter {
			cmd = m.openInput(constants.StateSearch, "Search the web...")
		}
	case constants.WidgetWeather:
		if msg.String() == "r" {
			cmd = m.loadWeather(true)
		}
	case constants.WidgetQuote:
		if msg.String() == "r" {
			cmd = m.loadQuote(true)
		}
	}
	return m, cmd
}

// refresh forces both network widgets past their caches.
func (m Model) refresh() tea.Cmd {
	var cmds []tea.Cmd
	if m.hasWidget(constants.WidgetWeather) {
		cmds = append(cmds, m.loadWeather(true))
	}
	if m.hasWidget(constants.WidgetQuote) {
		cmds = append(cmds, m.loadQuote(true))
	}
	return tea.Batch(cmds...)
}

func (m *Model) openInput(state constants.SessionState, placeholder string) tea.Cmd {
	m.previousState = m.state
	m.state = state
	m.formError = ""
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m Model) closeInput() Model {
	m.input.Blur()
	m.input.Reset()
	m.state = constants.StateDashboard
	return m
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEsc:
			m.formError = ""
			return m.closeInput(), nil
		case tea.KeyCtrlC:
			m.quitting = true
			m.Close()
			return m, tea.Quit
		case tea.KeyEnter:
			value := m.input.Value()
			if m.state == constants.StateSearch {
				return m.submitSearch(value)
			}
			return m.submitTodo(value)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitTodo(text string) (tea.Model, tea.Cmd) {
	_, err := m.ctx.Todos.Add(context.Background(), text)
	switch {
	case errors.Is(err, todo.ErrEmpty):
		return m.closeInput(), nil
	case errors.Is(err, todo.ErrDuplicate):
		m.formError = "That task is already on your list"
		return m, nil
	case err != nil:
		m.formError = "Failed to add todo: " + err.Error()
		return m, nil
	}
	m.formError = ""
	m.refreshTodos()
	m.updateValidationStatus()
	return m.closeInput(), nil
}

func (m Model) submitSearch(query string) (tea.Model, tea.Cmd) {
	if _, ok := search.URL(query); !ok {
		return m.closeInput(), nil
	}
	l := m.launcher
	return m.closeInput(), func() tea.Msg {
		u, err := search.Run(context.Background(), l, query)
		return openedMsg{url: u, err: err}
	}
}

func (m Model) updateGoalForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateDashboard
		m.form = nil
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		if _, err := m.ctx.Todos.SetDailyGoal(context.Background(), m.goalForm.Text); err != nil {
			m.formError = "Failed to save today's focus: " + err.Error()
			m.form.State = huh.StateNormal
			return m, tea.Batch(cmds...)
		}
		m.formError = ""
		m.refreshTodos()
		m.updateValidationStatus()
		m.setNotice("Today's focus is set", notifier.LevelSuccess)
		m.state = constants.StateDashboard
		m.form = nil
	case huh.StateAborted:
		m.state = constants.StateDashboard
		m.form = nil
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateSettingsForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.formError = ""
		m.state = constants.StateDashboard
		m.form = nil
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.saveSettingsForm(); err != nil {
			m.formError = "Failed to update settings: " + err.Error()
			m.form.State = huh.StateNormal
			return m, tea.Batch(cmds...)
		}
		m.formError = ""
		m.setNotice("Settings saved", notifier.LevelSuccess)
		m.state = constants.StateDashboard
		m.form = nil
	case huh.StateAborted:
		m.formError = ""
		m.state = constants.StateDashboard
		m.form = nil
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmReset(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if err := m.ctx.Settings.Reset(context.Background()); err != nil {
			m.setNotice("Defaults restored but not saved: "+err.Error(), notifier.LevelError)
		} else {
			m.setNotice("Settings reset to defaults", notifier.LevelSuccess)
		}
		m.state = constants.StateDashboard
	case key.Matches(keyMsg, m.keys.Cancel):
		m.state = constants.StateDashboard
	}
	return m, nil
}

func (m Model) updateLinks(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "ctrl+c":
		m.quitting = true
		m.Close()
		return m, tea.Quit
	case "esc", "q", "L":
		m.state = constants.StateDashboard
	case "up", "k":
		if m.linkCursor > 0 {
			m.linkCursor--
		}
	case "down", "j":
		if m.linkCursor < len(m.links)-1 {
			m.linkCursor++
		}
	case "d":
		if len(m.links) == 0 {
			return m, nil
		}
		target := m.links[m.linkCursor]
		if err := m.ctx.Links.Delete(context.Background(), target.ID); err != nil {
			m.setNotice("Failed to delete link: "+err.Error(), notifier.LevelError)
		} else {
			m.setNotice("Deleted "+target.Name, notifier.LevelSuccess)
		}
		m.loadLinks()
	case "enter", "o":
		if len(m.links) == 0 {
			return m, nil
		}
		u := m.links[m.linkCursor].URL
		l := m.launcher
		m.state = constants.StateDashboard
		return m, func() tea.Msg {
			return openedMsg{url: u, err: l.Open(context.Background(), u)}
		}
	}
	return m, nil
}
