// Package basketui implements the interactive basket review screen.
package basketui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/ideactl/internal/basket"
	"github.com/bnema/ideactl/internal/ui/styles"
)

// viewState represents the current view state
type viewState int

const (
	viewList viewState = iota
	viewConfirmClear
)

// basketItem implements list.Item for basket entries
type basketItem struct {
	entry basket.Entry
}

func (i basketItem) Title() string {
	return i.entry.Name
}

func (i basketItem) Description() string {
	parts := []string{i.entry.XMLID}
	if i.entry.Organization != "" {
		parts = append(parts, "by "+i.entry.Organization)
	}
	return strings.Join(parts, " | ")
}

func (i basketItem) FilterValue() string {
	return i.entry.Name + " " + i.entry.XMLID + " " + i.entry.Organization
}

// KeyMap defines keyboard shortcuts for the basket view
type KeyMap struct {
	Remove key.Binding
	Clear  key.Binding
	Quit   key.Binding
	Back   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear all"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// Model is the TUI model for reviewing the basket.
type Model struct {
	store *basket.Store
	list  list.Model
	keys  KeyMap

	state         viewState
	width, height int

	statusMsg string
	errorMsg  string
}

// New creates a basket view model.
func New(store *basket.Store) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(styles.Primary).
		BorderForeground(styles.Primary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(styles.Muted).
		BorderForeground(styles.Primary)

	l := list.New(nil, delegate, 0, 0)
	l.Styles.Title = styles.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false) // We render our own unified footer

	m := Model{
		store: store,
		list:  l,
		keys:  DefaultKeyMap(),
		state: viewList,
	}
	m.reload()
	return m
}

// reload rebuilds the list from the store, preserving stored order.
func (m *Model) reload() {
	entries := m.store.List()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = basketItem{entry: e}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Basket (%d plugins)", len(entries))
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := styles.App.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-2)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case viewConfirmClear:
			return m.updateConfirmClear(msg)
		default:
			return m.updateList(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't process custom keys when filtering is active
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Remove):
		item, ok := m.list.SelectedItem().(basketItem)
		if !ok {
			return m, nil
		}
		if err := m.store.Remove(item.entry.XMLID); err != nil {
			m.errorMsg = "Remove failed: " + err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.statusMsg = fmt.Sprintf("Removed %s", item.entry.Name)
		m.reload()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if m.store.Len() == 0 {
			m.statusMsg = "Basket is already empty"
			return m, nil
		}
		m.state = viewConfirmClear
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.store.Clear(); err != nil {
			m.errorMsg = "Clear failed: " + err.Error()
		} else {
			m.errorMsg = ""
			m.statusMsg = "Basket cleared"
			m.reload()
		}
		m.state = viewList
		return m, nil
	case "n", "N", "esc", "q":
		m.state = viewList
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.state == viewConfirmClear {
		var s strings.Builder
		s.WriteString(styles.Title.Render("Clear basket") + "\n\n")
		s.WriteString(fmt.Sprintf("Remove all %d plugins from the basket?\n", m.store.Len()))
		s.WriteString(styles.MutedText.Render("A backup of the current basket is kept.") + "\n\n")
		s.WriteString(styles.Help.Render("y: clear  n/esc: back"))
		return styles.App.Render(s.String())
	}

	var s strings.Builder
	s.WriteString(m.list.View())

	footer := "/filter d:remove c:clear q:quit"
	if m.errorMsg != "" {
		footer = styles.ErrorText.Render(m.errorMsg) + "  " + styles.Help.Render(footer)
	} else if m.statusMsg != "" {
		footer = styles.SuccessText.Render(m.statusMsg) + "  " + styles.Help.Render(footer)
	} else {
		footer = styles.Help.Render(footer)
	}
	s.WriteString("\n" + footer)

	return styles.App.Render(s.String())
}

// Run shows the basket view until the user leaves.
func Run(store *basket.Store) error {
	p := tea.NewProgram(New(store), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run basket view: %w", err)
	}
	return nil
}
