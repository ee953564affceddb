package todolist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/homebase/internal/todo"
)

type AddTodoMsg struct{}

type ToggleTodoMsg struct {
	ID int64
}

type DeleteTodoMsg struct {
	ID int64
}

type Item struct {
	Todo todo.Item
}

func (i Item) Title() string {
	box := "☐ "
	if i.Todo.Completed {
		box = "☑ "
	}
	if i.Todo.IsDailyGoal {
		return box + "⭐ " + i.Todo.Text
	}
	return box + i.Todo.Text
}

func (i Item) Description() string {
	if i.Todo.IsDailyGoal {
		return fmt.Sprintf("daily goal for %s", i.Todo.Date)
	}
	return "added " + i.Todo.CreatedAt
}

func (i Item) FilterValue() string { return i.Todo.Text }

type KeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add todo"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []todo.Item, width, height int) Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(toListItems(items), delegate, width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return Model{list: l, keys: DefaultKeyMap()}
}

func toListItems(items []todo.Item) []list.Item {
	out := make([]list.Item, len(items))
	for i, t := range items {
		out[i] = Item{Todo: t}
	}
	return out
}

func (m *Model) SetTodos(items []todo.Item) {
	m.list.SetItems(toListItems(items))
}

func (m Model) Keys() KeyMap {
	return m.keys
}

// Selected returns the highlighted todo.
func (m Model) Selected() (todo.Item, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Todo, ok
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddTodoMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.Selected(); ok {
				return m, func() tea.Msg { return ToggleTodoMsg{ID: i.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteTodoMsg{ID: i.ID} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "No todos yet.\nPress 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
