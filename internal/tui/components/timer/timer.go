package timer

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/homebase/internal/pomodoro"
	"github.com/julianstephens/homebase/internal/settings"
)

var (
	modeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type ToggleMsg struct{}

type ResetMsg struct{}

type SkipMsg struct{}

type SetModeMsg struct {
	Mode pomodoro.Mode
}

type KeyMap struct {
	Toggle key.Binding
	Reset  key.Binding
	Skip   key.Binding
	Mode   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "start/pause"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "switch mode"),
		),
	}
}

var modeCycle = []pomodoro.Mode{pomodoro.Focus, pomodoro.ShortBreak, pomodoro.LongBreak}

type Model struct {
	State    pomodoro.State
	Config   settings.Pomodoro
	keys     KeyMap
	progress progress.Model
	width    int
}

func New(state pomodoro.State, cfg settings.Pomodoro) Model {
	return Model{
		State:    state,
		Config:   cfg,
		keys:     DefaultKeyMap(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m *Model) SetSize(width int) {
	m.width = width
	m.progress.Width = width
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msgKey, m.keys.Toggle):
		return m, func() tea.Msg { return ToggleMsg{} }
	case key.Matches(msgKey, m.keys.Reset):
		return m, func() tea.Msg { return ResetMsg{} }
	case key.Matches(msgKey, m.keys.Skip):
		return m, func() tea.Msg { return SkipMsg{} }
	case key.Matches(msgKey, m.keys.Mode):
		next := NextMode(m.State.Mode)
		return m, func() tea.Msg { return SetModeMsg{Mode: next} }
	}
	return m, nil
}

// NextMode cycles focus, short break, long break.
func NextMode(cur pomodoro.Mode) pomodoro.Mode {
	for i, mode := range modeCycle {
		if mode == cur {
			return modeCycle[(i+1)%len(modeCycle)]
		}
	}
	return pomodoro.Focus
}

func (m Model) View() string {
	status := "paused"
	if m.State.Running {
		status = "running"
	}

	sessions := m.Config.SessionsUntilLongBreak
	if sessions < 1 {
		sessions = 1
	}
	untilLong := sessions - m.State.CompletedFocusSessions%sessions

	lines := []string{
		modeStyle.Render(m.State.Mode.Label()),
		clockStyle.Render(pomodoro.FormatClock(m.State.TimeRemaining)) + mutedStyle.Render(status),
		m.progress.ViewAs(pomodoro.Progress(m.State, m.Config)),
		mutedStyle.Render(fmt.Sprintf("Sessions: %d  Long break in %d", m.State.CompletedFocusSessions, untilLong)),
	}
	if task := m.State.Task(); task != "" {
		lines = append(lines, "Task: "+task)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
