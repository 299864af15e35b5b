package selector

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/bnema/ideactl/internal/marketplace"
)

// readyModel builds a selector already in the search phase with the
// given plugins seeded as the session cache.
func readyModel(t *testing.T, client *marketplace.Client, seed []marketplace.Plugin) Model {
	t.Helper()

	logger := log.New(io.Discard)
	cache := marketplace.NewCache(t.TempDir(), time.Hour, logger)

	m := New(client, cache, logger, Options{})
	m.phase = phaseReady
	m.plugins = marketplace.MergePlugins(m.plugins, m.index, seed)
	m.refilter()
	return m
}

func offlineClient(t *testing.T) *marketplace.Client {
	t.Helper()
	return marketplace.New("http://127.0.0.1:1", log.New(io.Discard))
}

func typeRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// update drives one message through the model and hands back the
// concrete type.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestRapidKeystrokesCoalesceToOneRemoteSearch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.URL.Query().Get("search"); got != "abc" {
			t.Errorf("remote search for %q, want \"abc\"", got)
		}
		fmt.Fprint(w, `{"total": 1, "plugins": [{"id": 1, "xmlId": "org.abc", "name": "Abc Tools", "downloads": 7}]}`)
	}))
	defer srv.Close()

	logger := log.New(io.Discard)
	client := marketplace.New(srv.URL, logger)
	m := readyModel(t, client, nil)

	// Three keystrokes inside the debounce window. Each schedules a
	// tick; only the last sequence number stays live.
	staleSeqs := make([]int, 0, 2)
	for _, r := range "abc" {
		staleSeqs = append(staleSeqs, m.searchSeq)
		m, _ = update(t, m, typeRune(r))
	}
	staleSeqs = staleSeqs[1:] // first entry predates any keystroke

	for _, seq := range staleSeqs {
		var cmd tea.Cmd
		m, cmd = update(t, m, debounceMsg{seq: seq})
		if cmd != nil {
			t.Fatalf("stale debounce tick (seq %d) dispatched a command", seq)
		}
		if m.searching {
			t.Fatalf("stale debounce tick (seq %d) marked a search in flight", seq)
		}
	}

	m, cmd := update(t, m, debounceMsg{seq: m.searchSeq})
	if cmd == nil {
		t.Fatal("live debounce tick did not dispatch the search")
	}
	if !m.searching {
		t.Fatal("live debounce tick did not mark the search in flight")
	}

	// Run the batched command tree to actually hit the server.
	runCmds(t, cmd)

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly 1 remote search, got %d", got)
	}
}

// runCmds executes a command and any batch it expands to, discarding
// the produced messages except to recurse into nested batches.
func runCmds(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmds(t, c)
		}
	}
}

func TestStaleReplyGrowsCacheButNotView(t *testing.T) {
	m := readyModel(t, offlineClient(t), []marketplace.Plugin{
		{XMLID: "org.kotlin.tools", Name: "Kotlin Tools", Downloads: 10},
	})

	// The user typed "a...", superseded it, and settled on "kotlin".
	for _, r := range "kotlin" {
		m, _ = update(t, m, typeRune(r))
	}
	staleSeq := m.searchSeq - 1

	m, _ = update(t, m, remoteResultsMsg{
		seq:   staleSeq,
		query: "a",
		plugins: []marketplace.Plugin{
			{XMLID: "org.ancient", Name: "Ancient Search Hit", Downloads: 99},
		},
	})

	if _, ok := m.index["org.ancient"]; !ok {
		t.Error("stale reply was not merged into the session cache")
	}
	for _, p := range m.filtered {
		if p.XMLID == "org.ancient" {
			t.Errorf("stale reply leaked into the filtered view: %+v", m.filtered)
		}
	}
	if m.remoteRanked {
		t.Error("stale reply switched the view to remote ranking")
	}
}

func TestLiveReplyMergesAndRanks(t *testing.T) {
	m := readyModel(t, offlineClient(t), []marketplace.Plugin{
		{XMLID: "com.vim.mode", Name: "Editor Modes", Downloads: 9000000},
	})

	for _, r := range "vim" {
		m, _ = update(t, m, typeRune(r))
	}

	m, _ = update(t, m, remoteResultsMsg{
		seq:   m.searchSeq,
		query: "vim",
		plugins: []marketplace.Plugin{
			{XMLID: "IdeaVIM", Name: "IdeaVim", Downloads: 500},
		},
	})

	if m.searching {
		t.Error("live reply left the in-flight flag set")
	}
	if len(m.filtered) != 2 {
		t.Fatalf("expected 2 matches after merge, got %d: %+v", len(m.filtered), m.filtered)
	}
	// Name match outranks the id-only match despite fewer downloads
	if m.filtered[0].XMLID != "IdeaVIM" {
		t.Errorf("expected IdeaVIM ranked first, got %+v", m.filtered)
	}
}

func TestFirstSeenWinsOverRemoteDuplicate(t *testing.T) {
	m := readyModel(t, offlineClient(t), []marketplace.Plugin{
		{XMLID: "org.rust.lang", Name: "Rust", Organization: "JetBrains", Downloads: 100},
	})

	m, _ = update(t, m, remoteResultsMsg{
		seq:   m.searchSeq,
		query: "",
		plugins: []marketplace.Plugin{
			{XMLID: "org.rust.lang", Name: "rust (sparse)", Organization: "Unknown"},
		},
	})

	got := m.plugins[m.index["org.rust.lang"]]
	if got.Organization != "JetBrains" || got.Downloads != 100 {
		t.Errorf("sparser remote record overwrote the cached one: %+v", got)
	}
}

func TestToggleConfirmReturnsCacheOrder(t *testing.T) {
	m := readyModel(t, offlineClient(t), []marketplace.Plugin{
		{XMLID: "first", Name: "First"},
		{XMLID: "second", Name: "Second"},
		{XMLID: "third", Name: "Third"},
	})

	space := tea.KeyMsg{Type: tea.KeySpace}

	// Select third, then first: toggle order is reverse of cache order
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, space)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, space)

	got := m.Selected()
	if len(got) != 2 {
		t.Fatalf("expected 2 selected, got %d", len(got))
	}
	if got[0].XMLID != "first" || got[1].XMLID != "third" {
		t.Errorf("selection not in cache order: %+v", got)
	}

	// Toggling again deselects
	m, _ = update(t, m, space)
	if len(m.Selected()) != 1 {
		t.Errorf("second toggle did not deselect")
	}
}

func TestSpaceNeverReachesSearchBuffer(t *testing.T) {
	m := readyModel(t, offlineClient(t), []marketplace.Plugin{
		{XMLID: "a", Name: "A"},
	})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if got := m.input.Value(); got != "" {
		t.Errorf("space leaked into the buffer: %q", got)
	}
}

func TestCursorClampsAtBothEnds(t *testing.T) {
	m := readyModel(t, offlineClient(t), []marketplace.Plugin{
		{XMLID: "a", Name: "A"},
		{XMLID: "b", Name: "B"},
	})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("cursor moved above 0: %d", m.cursor)
	}

	for i := 0; i < 5; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.cursor != 1 {
		t.Errorf("cursor escaped the list: %d", m.cursor)
	}
}

func TestKeystrokeResetsCursor(t *testing.T) {
	m := readyModel(t, offlineClient(t), []marketplace.Plugin{
		{XMLID: "alpha", Name: "Alpha"},
		{XMLID: "alternate", Name: "Alternate"},
	})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, typeRune('a'))
	if m.cursor != 0 {
		t.Errorf("cursor not reset on keystroke: %d", m.cursor)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.cursor != 0 {
		t.Errorf("cursor not reset on backspace: %d", m.cursor)
	}
}

func TestShortQueryNeverDispatchesRemoteSearch(t *testing.T) {
	m := readyModel(t, offlineClient(t), nil)

	m, _ = update(t, m, typeRune('a'))
	m, cmd := update(t, m, debounceMsg{seq: m.searchSeq})
	if m.searching {
		t.Error("one-rune query marked a search in flight")
	}
	if cmd != nil {
		t.Error("one-rune query dispatched a command")
	}
}

func TestCancelIsDistinctFromEmptyConfirm(t *testing.T) {
	m := readyModel(t, offlineClient(t), nil)

	cancelled, _ := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !cancelled.cancelled {
		t.Error("esc did not cancel")
	}

	confirmed, _ := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if confirmed.cancelled {
		t.Error("enter was treated as cancellation")
	}
	if got := confirmed.Selected(); len(got) != 0 {
		t.Errorf("empty confirm returned selections: %+v", got)
	}
}

func TestCatalogReadySeedsPreselectedStubs(t *testing.T) {
	logger := log.New(io.Discard)
	cache := marketplace.NewCache(t.TempDir(), time.Hour, logger)
	m := New(offlineClient(t), cache, logger, Options{
		Preselected: []marketplace.Plugin{
			{XMLID: "org.in.catalog", Name: "stub"},
			{XMLID: "org.only.in.basket", Name: "org.only.in.basket"},
		},
	})

	next, _ := m.Update(catalogReadyMsg{plugins: []marketplace.Plugin{
		{XMLID: "org.in.catalog", Name: "Rich Catalog Record", Downloads: 42},
	}})
	got := next.(Model)

	if got.phase != phaseReady {
		t.Fatal("catalog ready did not reach the search phase")
	}
	// Catalog record wins over the basket stub, basket-only id still present
	if got.plugins[got.index["org.in.catalog"]].Name != "Rich Catalog Record" {
		t.Errorf("basket stub overwrote the catalog record: %+v", got.plugins)
	}
	if _, ok := got.index["org.only.in.basket"]; !ok {
		t.Error("basket-only entry missing from the session cache")
	}

	selected := got.Selected()
	if len(selected) != 2 {
		t.Errorf("expected both preselected ids selected, got %+v", selected)
	}
}

func TestSweepChainAdvancesThroughCategories(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query().Get("search")
		fmt.Fprintf(w, `[{"id": 1, "xmlId": "org.%s", "name": "%s", "downloads": 1}]`,
			strings.ReplaceAll(q, " ", "-"), q)
	}))
	defer srv.Close()

	logger := log.New(io.Discard)
	client := marketplace.New(srv.URL, logger)
	cache := marketplace.NewCache(t.TempDir(), time.Hour, logger)
	m := New(client, cache, logger, Options{ForceRefresh: true})

	next, cmd := m.Update(sweepStartMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("sweep start did not fetch the first category")
	}

	msg := cmd()
	fetched, ok := msg.(categoryFetchedMsg)
	if !ok {
		t.Fatalf("expected categoryFetchedMsg, got %T", msg)
	}
	if fetched.idx != 0 {
		t.Fatalf("expected category 0, got %d", fetched.idx)
	}

	next, cmd = m.Update(fetched)
	m = next.(Model)
	if m.catDone != 1 {
		t.Errorf("catDone = %d, want 1", m.catDone)
	}
	if cmd == nil {
		t.Fatal("category chain stopped after the first category")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 browse call so far, got %d", got)
	}
}
