// Package menu implements the top-level interactive menu shown when
// ideactl runs without a subcommand.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/ideactl/internal/ui/styles"
)

// Action is the menu entry the user picked.
type Action int

const (
	ActionQuit Action = iota
	ActionSearch
	ActionBasket
	ActionGenerate
	ActionImport
	ActionIDEs
	ActionRefresh
)

// entry pairs an action with its menu copy.
type entry struct {
	action Action
	label  string
	desc   string
}

var entries = []entry{
	{ActionSearch, "Search plugins", "search the marketplace and pick plugins"},
	{ActionBasket, "View basket", "review and edit the current selection"},
	{ActionGenerate, "Generate command", "build the installPlugins command"},
	{ActionImport, "Import command", "parse a command back into the basket"},
	{ActionIDEs, "Detected IDEs", "list installed IDE executables"},
	{ActionRefresh, "Refresh catalog", "re-fetch the popular plugin catalog"},
	{ActionQuit, "Quit", ""},
}

// KeyMap defines keyboard shortcuts for the menu
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Quit    key.Binding
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
			key.WithHelp("enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the menu TUI model.
type Model struct {
	keys      KeyMap
	cursor    int
	basketLen int
	chosen    Action
}

// New creates a menu model. basketLen is shown next to the basket
// entry so the user sees their selection size at a glance.
func New(basketLen int) Model {
	return Model{keys: DefaultKeyMap(), basketLen: basketLen, chosen: ActionQuit}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.chosen = ActionQuit
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Confirm):
		m.chosen = entries[m.cursor].action
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(entries)-1 {
			m.cursor++
		}
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(styles.Title.Render("ideactl") + "  ")
	s.WriteString(styles.Subtitle.Render("JetBrains plugin basket") + "\n\n")

	for i, e := range entries {
		cursor := " "
		label := styles.NormalText.Render(e.label)
		if i == m.cursor {
			cursor = styles.Cursor.String()
			label = styles.Highlighted.Render(e.label)
		}

		if e.action == ActionBasket && m.basketLen > 0 {
			label += styles.MutedText.Render(fmt.Sprintf(" (%d)", m.basketLen))
		}

		s.WriteString(fmt.Sprintf(" %s %s", cursor, label))
		if e.desc != "" && i == m.cursor {
			s.WriteString("  " + styles.MutedText.Render(e.desc))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n" + styles.Help.Render("↑/↓: move  enter: select  q: quit"))
	return styles.App.Render(s.String())
}

// Run shows the menu and returns the chosen action. Quitting and
// cancelling both map to ActionQuit.
func Run(basketLen int) (Action, error) {
	p := tea.NewProgram(New(basketLen))
	final, err := p.Run()
	if err != nil {
		return ActionQuit, fmt.Errorf("failed to run menu: %w", err)
	}
	return final.(Model).chosen, nil
}
