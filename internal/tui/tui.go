// Package tui provides an interactive task browser using Bubble Tea.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/taxilian/tsk/internal/display"
	"github.com/taxilian/tsk/internal/model"
	"github.com/taxilian/tsk/internal/store"
	"github.com/taxilian/tsk/internal/timeparse"
)

// InputMode represents what kind of text input is active.
type InputMode int

const (
	InputNone        InputMode = iota
	InputTitle                 // Entering new task text
	InputDeadline              // Entering deadline for the new task
	InputSetDeadline           // Changing the deadline of the selected task
)

// Options configures a Model.
type Options struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// Sort is a store sort order. Defaults to priority.
	Sort string
	// Filter narrows the visible tasks.
	Filter store.Filter
	// Color enables styled rows.
	Color bool
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	backend store.Backend
	opts    Options
	rows    *display.Config
	plain   *display.Config

	store    *store.Store
	visible  []*model.Todo
	cursor   int
	showDone bool

	// Input state
	inputMode    InputMode
	input        textinput.Model
	pendingTitle string

	// UI state
	width   int
	height  int
	err     error
	message string // temporary status message
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	filterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// Content area padding
	contentPadding = 2
)

// New creates a TUI model persisting through backend.
func New(backend store.Backend, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Prompt = ""
	return Model{
		backend: backend,
		opts:    opts,
		rows:    display.NewConfigFor(io.Discard, opts.Color),
		plain:   display.NewConfigFor(io.Discard, false),
		input:   ti,
	}
}

// Messages
type storeMsg struct {
	store *store.Store
	err   error
}

type actionMsg struct {
	message string
	store   *store.Store
	err     error
}

// loadStore loads the task list from the backend.
func (m Model) loadStore() tea.Cmd {
	return func() tea.Msg {
		s, err := m.backend.Load()
		return storeMsg{store: s, err: err}
	}
}

// mutate loads the latest state, applies fn and saves the result. fn
// returns the status message to show.
func (m Model) mutate(fn func(s *store.Store, now time.Time) (string, error)) tea.Cmd {
	backend, now := m.backend, m.opts.Now
	return func() tea.Msg {
		s, err := backend.Load()
		if err != nil {
			return actionMsg{err: err}
		}
		message, err := fn(s, now())
		if err != nil {
			return actionMsg{err: err}
		}
		if err := backend.Save(s); err != nil {
			return actionMsg{err: fmt.Errorf("failed to save: %w", err)}
		}
		return actionMsg{message: message, store: s}
	}
}

// applyFilters rebuilds the visible list from the store.
func (m *Model) applyFilters() {
	m.visible = nil
	if m.store != nil {
		todos := m.store.Open()
		if m.showDone {
			todos = m.store.All()
		}
		m.visible = m.opts.Filter.Apply(todos)
		store.SortTodos(m.visible, m.opts.Sort)
	}
	// Adjust cursor
	if m.cursor >= len(m.visible) {
		m.cursor = max(0, len(m.visible)-1)
	}
}

func (m Model) selected() *model.Todo {
	if len(m.visible) == 0 || m.cursor >= len(m.visible) {
		return nil
	}
	return m.visible[m.cursor]
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadStore()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Clear message on any key
		m.message = ""
		m.err = nil
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.store = msg.store
		m.applyFilters()
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.message = msg.message
		if msg.store != nil {
			m.store = msg.store
			m.applyFilters()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputMode != InputNone {
		return m.handleInputKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stopInput()
		m.pendingTitle = ""
		return m, nil
	case tea.KeyEnter:
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startInput(mode InputMode, placeholder string) tea.Cmd {
	m.inputMode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.inputMode = InputNone
	m.input.Blur()
	m.input.Reset()
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	mode := m.inputMode
	m.stopInput()

	switch mode {
	case InputTitle:
		if model.ParseLine(text).Text == "" {
			return m, nil
		}
		m.pendingTitle = text
		cmd := m.startInput(InputDeadline, "deadline (optional)")
		return m, cmd

	case InputDeadline:
		title := m.pendingTitle
		m.pendingTitle = ""
		var deadline *time.Time
		if text != "" {
			t, ok := timeparse.Parse(text, m.opts.Now())
			if !ok {
				m.err = fmt.Errorf("could not parse time %q", text)
				return m, nil
			}
			deadline = &t
		}
		return m, m.mutate(func(s *store.Store, now time.Time) (string, error) {
			words := model.ParseLine(title)
			todo := model.NewTodo(words.Text, now)
			words.Apply(&todo)
			todo.Deadline = deadline
			added := s.Add(todo)
			return fmt.Sprintf("Added #%d: %s", added.ID, added.Text), nil
		})

	case InputSetDeadline:
		todo := m.selected()
		if todo == nil {
			return m, nil
		}
		id := todo.ID
		var deadline *time.Time
		if text != "" {
			t, ok := timeparse.Parse(text, m.opts.Now())
			if !ok {
				m.err = fmt.Errorf("could not parse time %q", text)
				return m, nil
			}
			deadline = &t
		}
		return m, m.mutate(func(s *store.Store, now time.Time) (string, error) {
			t, err := s.Get(id)
			if err != nil {
				return "", fmt.Errorf("task #%d: %w", id, err)
			}
			t.Deadline = deadline
			if deadline == nil {
				return fmt.Sprintf("Cleared deadline of #%d", id), nil
			}
			return fmt.Sprintf("#%d due %s", id, display.DeadlineText(t, now)), nil
		})
	}

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}

	case "g", "home":
		m.cursor = 0

	case "G", "end":
		m.cursor = max(0, len(m.visible)-1)

	case "c":
		m.showDone = !m.showDone
		m.applyFilters()

	case "r":
		return m, m.loadStore()

	// Actions
	case " ", "x":
		return m.doToggle()
	case "d":
		return m.doDelete()
	case "a":
		cmd := m.startInput(InputTitle, "task text, +tag @project")
		return m, cmd
	case "t":
		if m.selected() != nil {
			cmd := m.startInput(InputSetDeadline, "deadline, empty clears")
			return m, cmd
		}
	case "u":
		return m.doUndo()
	}

	return m, nil
}

func (m Model) doToggle() (Model, tea.Cmd) {
	todo := m.selected()
	if todo == nil {
		return m, nil
	}
	id := todo.ID
	return m, m.mutate(func(s *store.Store, now time.Time) (string, error) {
		t, err := s.Get(id)
		if err != nil {
			return "", fmt.Errorf("task #%d: %w", id, err)
		}
		if t.Done {
			t.Done = false
			t.CompletedAt = nil
			return fmt.Sprintf("Reopened #%d: %s", id, t.Text), nil
		}
		t.MarkDone(now)
		return fmt.Sprintf("Completed #%d: %s", id, t.Text), nil
	})
}

func (m Model) doDelete() (Model, tea.Cmd) {
	todo := m.selected()
	if todo == nil {
		return m, nil
	}
	id := todo.ID
	return m, m.mutate(func(s *store.Store, _ time.Time) (string, error) {
		removed, err := s.Remove(id)
		if err != nil {
			return "", fmt.Errorf("task #%d: %w", id, err)
		}
		return fmt.Sprintf("Deleted #%d: %s", id, removed.Text), nil
	})
}

func (m Model) doUndo() (Model, tea.Cmd) {
	backend := m.backend
	return m, func() tea.Msg {
		s, err := backend.Undo()
		if errors.Is(err, store.ErrNothingToUndo) {
			return actionMsg{message: "Nothing to undo."}
		}
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{message: fmt.Sprintf("Undo successful. Restored %d task(s).", len(s.Todos)), store: s}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.listView())

	// Input line
	if m.inputMode != InputNone {
		b.WriteString("\n")
		b.WriteString(m.inputLabel() + m.input.View())
	}

	// Status message
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	} else if m.message != "" {
		b.WriteString("\n")
		b.WriteString(messageStyle.Render(m.message))
	}

	// Apply padding to entire content
	padStyle := lipgloss.NewStyle().
		PaddingLeft(contentPadding).
		PaddingRight(contentPadding).
		PaddingTop(1)

	return padStyle.Render(b.String())
}

func (m Model) inputLabel() string {
	switch m.inputMode {
	case InputTitle:
		return "New task: "
	case InputDeadline:
		return "Deadline: "
	case InputSetDeadline:
		return "Set deadline: "
	}
	return ""
}

func (m Model) listView() string {
	var b strings.Builder

	total := 0
	if m.store != nil {
		total = len(m.store.Todos)
	}
	b.WriteString(titleStyle.Render("tsk"))
	b.WriteString(fmt.Sprintf("  %d/%d tasks", len(m.visible), total))
	if filters := m.activeFiltersString(); filters != "" {
		b.WriteString("  ")
		b.WriteString(filterStyle.Render(filters))
	}
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString("No tasks match filters\n")
	} else {
		visibleHeight := m.height - 8
		if visibleHeight < 5 {
			visibleHeight = 15
		}
		start := 0
		if m.cursor >= visibleHeight {
			start = m.cursor - visibleHeight + 1
		}
		end := min(start+visibleHeight, len(m.visible))

		rowWidth := m.width - (contentPadding * 2)
		if rowWidth < 60 {
			rowWidth = 80
		}

		now := m.opts.Now()
		for i := start; i < end; i++ {
			todo := m.visible[i]
			if i == m.cursor {
				// Selected rows are plain text under a single highlight.
				line := display.FormatTodo(todo, now, m.plain)
				b.WriteString(selectedRowStyle.Width(rowWidth).Render(display.Truncate(line, rowWidth)))
			} else {
				b.WriteString(display.FormatTodo(todo, now, m.rows))
			}
			b.WriteString("\n")
		}
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k:nav  space/x:done  d:delete  a:add  t:deadline"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("c:show completed  u:undo  r:refresh  q:quit"))

	return b.String()
}

func (m Model) activeFiltersString() string {
	var parts []string
	if m.showDone {
		parts = append(parts, "all")
	}
	if m.opts.Filter.Project != "" {
		parts = append(parts, "@"+m.opts.Filter.Project)
	}
	for _, tag := range m.opts.Filter.Tags {
		parts = append(parts, "+"+tag)
	}
	if m.opts.Sort != "" && m.opts.Sort != store.ByPriority {
		parts = append(parts, "by "+m.opts.Sort)
	}
	return strings.Join(parts, " ")
}

// Run starts the TUI.
func Run(backend store.Backend, opts Options) error {
	m := New(backend, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
