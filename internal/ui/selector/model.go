// Package selector implements the interactive search-and-pick screen.
// It merges the cached popular catalog with debounced typeahead
// searches against the marketplace and lets the user toggle plugins
// into their basket.
package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/bnema/ideactl/internal/marketplace"
	"github.com/bnema/ideactl/internal/ui/styles"
)

// ErrCancelled is returned when the user leaves without confirming.
// Distinct from confirming an empty selection.
var ErrCancelled = errors.New("selection cancelled")

const (
	// debounceInterval is the quiet period before a remote search fires
	debounceInterval = 300 * time.Millisecond
	// visibleRows is the fixed height of the result window
	visibleRows = 8
)

// phase represents the current screen state
type phase int

const (
	phaseLoading phase = iota
	phaseReady
)

// KeyMap defines keyboard shortcuts for the selector
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Options configures a selector session.
type Options struct {
	// SeedQuery pre-fills the search buffer; the debounce fires once
	// after the catalog loads.
	SeedQuery string
	// Preselected plugins start toggled on, typically the basket.
	Preselected []marketplace.Plugin
	// ForceRefresh bypasses the catalog cache.
	ForceRefresh bool
}

// Messages
type sweepStartMsg struct{}

type categoryFetchedMsg struct {
	idx     int
	plugins []marketplace.Plugin
}

type catalogReadyMsg struct {
	plugins []marketplace.Plugin
}

type debounceMsg struct {
	seq int
}

type remoteResultsMsg struct {
	seq     int
	query   string
	plugins []marketplace.Plugin
}

// Model is the selector TUI model.
type Model struct {
	client *marketplace.Client
	cache  *marketplace.Cache
	logger *log.Logger
	opts   Options

	input   textinput.Model
	spin    spinner.Model
	bar     progress.Model
	keys    KeyMap
	width   int

	phase      phase
	categories []string
	catDone    int

	// plugins is the session cache: insertion-ordered, grown by merges,
	// never evicted. index maps xmlId to its position.
	plugins  []marketplace.Plugin
	index    map[string]int
	filtered []marketplace.Plugin
	selected map[string]bool

	cursor    int
	searchSeq int
	searching bool
	// remoteRanked is set once a remote reply contributed to the
	// current query, switching the view from cache order to relevance
	// ranking.
	remoteRanked bool

	cancelled bool
}

// New creates a selector model.
func New(client *marketplace.Client, cache *marketplace.Cache, logger *log.Logger, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = "type to search the marketplace"
	ti.SetValue(opts.SeedQuery)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	selected := make(map[string]bool)
	for _, p := range opts.Preselected {
		if p.XMLID != "" {
			selected[p.XMLID] = true
		}
	}

	return Model{
		client:     client,
		cache:      cache,
		logger:     logger,
		opts:       opts,
		input:      ti,
		spin:       sp,
		bar:        bar,
		keys:       DefaultKeyMap(),
		phase:      phaseLoading,
		categories: marketplace.Categories(),
		index:      make(map[string]int),
		selected:   selected,
	}
}

// Init starts the spinner and the catalog load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadCatalogCmd())
}

// loadCatalogCmd serves a fresh cache directly or kicks off the sweep.
func (m Model) loadCatalogCmd() tea.Cmd {
	return func() tea.Msg {
		if !m.opts.ForceRefresh {
			if cached, stale := m.cache.Load(); !stale && len(cached) > 0 {
				return catalogReadyMsg{plugins: cached}
			}
		}
		return sweepStartMsg{}
	}
}

// fetchCategoryCmd browses one sweep category. The sweep runs as a
// message chain, one category per Cmd, so the progress bar advances
// between requests.
func (m Model) fetchCategoryCmd(idx int) tea.Cmd {
	category := m.categories[idx]
	return func() tea.Msg {
		return categoryFetchedMsg{
			idx:     idx,
			plugins: m.client.BrowseSoft(context.Background(), category, marketplace.SweepPerCategory),
		}
	}
}

// finishSweepCmd orders the merged sweep, enriches the head of the
// ranking with version data and persists the catalog cache.
func (m Model) finishSweepCmd(merged []marketplace.Plugin) tea.Cmd {
	return func() tea.Msg {
		marketplace.SortByDownloads(merged)
		m.client.EnrichTop(context.Background(), merged, marketplace.EnrichCount)
		if err := m.cache.Save(merged); err != nil {
			m.logger.Warn("Failed to save catalog cache", "error", err)
		}
		return catalogReadyMsg{plugins: merged}
	}
}

// debounceCmd schedules the remote search tick for the current buffer
// state. The captured sequence number suppresses the tick if another
// keystroke lands first.
func (m Model) debounceCmd() tea.Cmd {
	seq := m.searchSeq
	return tea.Tick(debounceInterval, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

// searchCmd dispatches the typeahead search for a settled query.
func (m Model) searchCmd(seq int, query string) tea.Cmd {
	return func() tea.Msg {
		return remoteResultsMsg{
			seq:     seq,
			query:   query,
			plugins: m.client.TypeaheadSoft(context.Background(), query),
		}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.phase == phaseLoading {
			if key.Matches(msg, m.keys.Cancel) {
				m.cancelled = true
				return m, tea.Quit
			}
			return m, nil
		}
		return m.updateReady(msg)

	case sweepStartMsg:
		return m, m.fetchCategoryCmd(0)

	case categoryFetchedMsg:
		m.plugins = marketplace.MergePlugins(m.plugins, m.index, msg.plugins)
		m.catDone = msg.idx + 1
		if m.catDone < len(m.categories) {
			return m, m.fetchCategoryCmd(m.catDone)
		}
		merged := make([]marketplace.Plugin, len(m.plugins))
		copy(merged, m.plugins)
		return m, m.finishSweepCmd(merged)

	case catalogReadyMsg:
		m.plugins = nil
		m.index = make(map[string]int)
		m.plugins = marketplace.MergePlugins(m.plugins, m.index, msg.plugins)
		// Basket entries missing from the catalog still need rows so
		// their selection markers have something to attach to.
		m.plugins = marketplace.MergePlugins(m.plugins, m.index, m.opts.Preselected)
		m.phase = phaseReady
		m.refilter()
		if len([]rune(strings.TrimSpace(m.input.Value()))) >= marketplace.MinQueryLength {
			m.searchSeq++
			return m, m.debounceCmd()
		}
		return m, nil

	case debounceMsg:
		// A stale tick means the buffer changed after it was scheduled
		if msg.seq != m.searchSeq {
			return m, nil
		}
		query := strings.TrimSpace(m.input.Value())
		if len([]rune(query)) < marketplace.MinQueryLength {
			return m, nil
		}
		m.searching = true
		return m, tea.Batch(m.spin.Tick, m.searchCmd(msg.seq, query))

	case remoteResultsMsg:
		// Merge even stale replies so the session cache keeps growing,
		// but the view is re-derived from the buffer as it is now, so a
		// slow reply can never paint results for an edited query.
		m.plugins = marketplace.MergePlugins(m.plugins, m.index, msg.plugins)
		if msg.seq == m.searchSeq {
			m.searching = false
			m.remoteRanked = true
		}
		m.refilter()
		return m, nil

	case spinner.TickMsg:
		if m.phase == phaseLoading || m.searching {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// updateReady handles keystrokes on the search screen. Navigation and
// toggle keys never reach the text input.
func (m Model) updateReady(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.cancelled = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Confirm):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if m.cursor >= 0 && m.cursor < len(m.filtered) {
			id := m.filtered[m.cursor].XMLID
			if m.selected[id] {
				delete(m.selected, id)
			} else {
				m.selected[id] = true
			}
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	// Buffer changed: instant local refilter, then a fresh debounce
	// tick. Bumping the sequence suppresses any pending tick.
	m.cursor = 0
	m.searchSeq++
	m.searching = false
	m.remoteRanked = false
	m.refilter()
	return m, tea.Batch(cmd, m.debounceCmd())
}

// refilter recomputes the visible list from the session cache and the
// current buffer. Cache order until a remote reply contributes, then
// relevance ranking.
func (m *Model) refilter() {
	query := m.input.Value()
	if m.remoteRanked {
		m.filtered = rankMatches(m.plugins, query)
	} else {
		m.filtered = filterLocal(m.plugins, query)
	}

	if m.cursor > len(m.filtered)-1 {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Selected returns the chosen plugins in cache order.
func (m Model) Selected() []marketplace.Plugin {
	var out []marketplace.Plugin
	for _, p := range m.plugins {
		if m.selected[p.XMLID] {
			out = append(out, p)
		}
	}
	return out
}

// View renders the UI
func (m Model) View() string {
	if m.phase == phaseLoading {
		return styles.App.Render(m.viewLoading())
	}
	return styles.App.Render(m.viewReady())
}

func (m Model) viewLoading() string {
	var s strings.Builder

	s.WriteString(styles.Title.Render("Plugin Search") + "\n\n")
	s.WriteString(m.spin.View() + " Loading plugin catalog...\n\n")

	frac := float64(m.catDone) / float64(len(m.categories))
	s.WriteString(m.bar.ViewAs(frac) + "\n")
	if m.catDone > 0 && m.catDone <= len(m.categories) {
		s.WriteString(styles.MutedText.Render(
			fmt.Sprintf("%d/%d categories", m.catDone, len(m.categories))) + "\n")
	}
	s.WriteString("\n" + styles.Help.Render("esc: cancel"))
	return s.String()
}

func (m Model) viewReady() string {
	var s strings.Builder

	s.WriteString(styles.Title.Render("Plugin Search") + "\n\n")

	s.WriteString(m.input.View())
	if m.searching {
		s.WriteString("  " + m.spin.View())
	}
	s.WriteString("\n\n")

	if len(m.filtered) == 0 {
		s.WriteString(styles.MutedText.Render("  no matching plugins") + "\n")
	}

	start, end := visibleWindow(len(m.filtered), m.cursor, visibleRows)
	for i := start; i < end; i++ {
		s.WriteString(m.renderRow(i) + "\n")
	}

	s.WriteString("\n" + m.renderFooter())
	return s.String()
}

func (m Model) renderRow(i int) string {
	p := m.filtered[i]

	cursor := " "
	if i == m.cursor {
		cursor = styles.Cursor.String()
	}

	mark := "[ ]"
	if m.selected[p.XMLID] {
		mark = styles.SelectedMark.Render("[x]")
	}

	name := styles.PluginName.Render(p.Name)
	if i == m.cursor {
		name = styles.Highlighted.Render(p.Name)
	}

	parts := []string{cursor, mark, name, styles.PluginID.Render(p.XMLID)}
	if p.Organization != "" && p.Organization != marketplace.UnknownOrganization {
		parts = append(parts, styles.PluginVendor.Render("by "+p.Organization))
	}
	if d := styles.FormatDownloads(p.Downloads); d != "" {
		parts = append(parts, d)
	}
	return " " + strings.Join(parts, " ")
}

func (m Model) renderFooter() string {
	status := fmt.Sprintf("%d selected · %d matches", len(m.selected), len(m.filtered))
	help := "space:toggle  enter:confirm  esc:cancel"
	return styles.MutedText.Render(status) + "\n" + styles.Help.Render(help)
}

// Run shows the selector and returns the confirmed selection in cache
// order. Cancellation returns ErrCancelled.
func Run(client *marketplace.Client, cache *marketplace.Cache, logger *log.Logger, opts Options) ([]marketplace.Plugin, error) {
	p := tea.NewProgram(New(client, cache, logger, opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run selector: %w", err)
	}

	result := final.(Model)
	if result.cancelled {
		return nil, ErrCancelled
	}
	return result.Selected(), nil
}
