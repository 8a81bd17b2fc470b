package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// Border rows plus the header line.
	chromeHeight = 3
)

// Outcome is the terminal state of a menu.
type Outcome int

const (
	Pending Outcome = iota
	Confirmed
	Cancelled
)

// Model is the bubbletea model driving a State.
type Model struct {
	state   *State
	width   int
	height  int
	outcome Outcome
	choice  string
}

// NewModel creates a model over items. A width or height of zero falls back
// to a standard 80x24 screen until the terminal reports its size.
func NewModel(items []string, width, height int) Model {
	m := Model{
		state:  NewState(items),
		width:  width,
		height: height,
	}
	if m.state.Empty() {
		m.outcome = Cancelled
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.outcome != Pending {
		return tea.Quit
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.outcome != Pending {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		m.state.Up()
	case tea.KeyDown:
		m.state.Down()
	case tea.KeyRunes:
		if msg.Alt {
			return m, nil
		}
		m.state.Append(msg.Runes...)
	case tea.KeySpace:
		m.state.Append(' ')
	case tea.KeyBackspace:
		m.state.Backspace()
	case tea.KeyEnter:
		choice, ok := m.state.Current()
		if !ok {
			return m.cancel()
		}
		m.outcome = Confirmed
		m.choice = choice
		return m, tea.Quit
	case tea.KeyEsc:
		return m.cancel()
	default:
		return m, nil
	}

	if m.state.Empty() {
		return m.cancel()
	}
	return m, nil
}

func (m Model) cancel() (tea.Model, tea.Cmd) {
	m.outcome = Cancelled
	m.choice = ""
	return m, tea.Quit
}

// Outcome reports whether the menu is still open, confirmed or cancelled.
func (m Model) Outcome() Outcome { return m.outcome }

// Result returns the confirmed item. ok is false unless the menu was
// confirmed.
func (m Model) Result() (choice string, ok bool) {
	return m.choice, m.outcome == Confirmed
}

// State exposes the underlying selection state.
func (m Model) State() *State { return m.state }

// View implements tea.Model.
func (m Model) View() string {
	if m.outcome != Pending {
		return ""
	}

	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"Completion (Filter: '%s') ↑/↓: navigate, Enter: select, Esc: cancel",
		m.state.Filter(),
	)))

	filtered := m.state.Filtered()
	selected := m.state.Selected()
	first, last := visibleRange(len(filtered), selected, height-chromeHeight)
	for i := first; i < last; i++ {
		b.WriteString("\n")
		if i == selected {
			b.WriteString(selectedStyle.Render(filtered[i]))
		} else {
			b.WriteString(itemStyle.Render(filtered[i]))
		}
	}

	content := b.String()
	return boxStyle.Width(max(width-2, lipgloss.Width(content))).Render(content)
}

// visibleRange returns the window of rows to draw so that selected stays on
// screen.
func visibleRange(total, selected, rows int) (int, int) {
	rows = max(1, rows)
	if total <= rows {
		return 0, total
	}
	first := max(0, selected-rows+1)
	return first, first + rows
}
