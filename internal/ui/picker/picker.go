// Package picker prompts the user to choose among detected IDE
// installations when more than one is found.
package picker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/ideactl/internal/ide"
	"github.com/bnema/ideactl/internal/ui/styles"
)

// ErrCancelled is returned when the user dismisses the picker. The
// caller must abort command generation, not fall back to a default.
var ErrCancelled = errors.New("ide selection cancelled")

// KeyMap defines keyboard shortcuts for the picker
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model is the IDE picker TUI model. The last row is always the
// "use default command" escape hatch.
type Model struct {
	candidates []ide.Candidate
	defaultCmd string
	keys       KeyMap

	cursor    int
	confirmed bool
	cancelled bool
}

// New creates a picker over the detected candidates.
func New(candidates []ide.Candidate, defaultCmd string) Model {
	return Model{
		candidates: candidates,
		defaultCmd: defaultCmd,
		keys:       DefaultKeyMap(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// rows is the candidate count plus the default row.
func (m Model) rows() int {
	return len(m.candidates) + 1
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.cancelled = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Confirm):
		m.confirmed = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(styles.Title.Render("Choose an IDE") + "\n\n")

	for i, c := range m.candidates {
		s.WriteString(m.renderRow(i, c.DisplayName, styles.MutedText.Render(c.ExecutablePath)))
	}
	s.WriteString(m.renderRow(len(m.candidates),
		fmt.Sprintf("use default command (%s)", m.defaultCmd), ""))

	s.WriteString("\n" + styles.Help.Render("↑/↓: move  enter: choose  esc: cancel"))
	return styles.App.Render(s.String())
}

func (m Model) renderRow(i int, label, detail string) string {
	cursor := " "
	text := styles.NormalText.Render(label)
	if i == m.cursor {
		cursor = styles.Cursor.String()
		text = styles.Highlighted.Render(label)
	}
	if i == len(m.candidates) {
		text = styles.MutedText.Render(label)
		if i == m.cursor {
			text = styles.Highlighted.Render(label)
		}
	}

	row := fmt.Sprintf(" %s %s", cursor, text)
	if detail != "" {
		row += "\n     " + detail
	}
	return row + "\n"
}

// Run shows the picker and returns the executable to use: the chosen
// candidate's path or the default command. Cancellation returns
// ErrCancelled.
func Run(candidates []ide.Candidate, defaultCmd string) (string, error) {
	p := tea.NewProgram(New(candidates, defaultCmd))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("failed to run ide picker: %w", err)
	}

	result := final.(Model)
	if result.cancelled {
		return "", ErrCancelled
	}
	if result.cursor >= len(result.candidates) {
		return defaultCmd, nil
	}
	return result.candidates[result.cursor].ExecutablePath, nil
}
