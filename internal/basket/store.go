// Package basket persists the user's plugin selection.
package basket

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrAlreadySelected is returned when adding an xmlId that is in the basket
	ErrAlreadySelected = errors.New("plugin already selected")
	// ErrNotSelected is returned when removing an xmlId that is not in the basket
	ErrNotSelected = errors.New("plugin not selected")
)

// Entry is one selected plugin as persisted in the basket file.
type Entry struct {
	XMLID        string `json:"xmlId"`
	Name         string `json:"name"`
	Organization string `json:"organization"`
}

// fileData is the on-disk shape of the basket.
type fileData struct {
	SelectedPlugins []Entry   `json:"selectedPlugins"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Store holds the plugin selection. Order is insertion order, xmlId is
// the identity, and every successful mutation is written through to
// disk before it returns.
type Store struct {
	path    string
	logger  *log.Logger
	mu      sync.RWMutex
	entries []Entry
}

// NewStore creates a store backed by the given file path.
func NewStore(path string, logger *log.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// DefaultPath returns the basket location, derived from XDG_DATA_HOME
// with a ~/.local/share fallback.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, _ := os.UserHomeDir()
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "ideactl", "basket.json")
}

// Load reads the basket from disk. A missing, unreadable or malformed
// file behaves as an empty selection; the basket is disposable state,
// not user configuration, so recovery is silent.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("Failed to read basket, starting empty", "error", err)
		}
		s.entries = nil
		return
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		s.logger.Debug("Basket file malformed, starting empty", "error", err)
		s.entries = nil
		return
	}

	s.entries = fd.SelectedPlugins
}

// Add appends an entry, preserving insertion order. An xmlId already
// present returns ErrAlreadySelected and leaves the file untouched.
func (s *Store) Add(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(entry.XMLID) >= 0 {
		return ErrAlreadySelected
	}

	s.entries = append(s.entries, entry)
	if err := s.save(); err != nil {
		// keep memory consistent with disk
		s.entries = s.entries[:len(s.entries)-1]
		return err
	}
	return nil
}

// AddAll adds entries in order, skipping ones already selected.
// The first write failure aborts and is returned.
func (s *Store) AddAll(entries []Entry) (added, skipped int, err error) {
	for _, entry := range entries {
		switch err := s.Add(entry); {
		case err == nil:
			added++
		case errors.Is(err, ErrAlreadySelected):
			skipped++
		default:
			return added, skipped, err
		}
	}
	return added, skipped, nil
}

// Remove deletes the entry with the given xmlId, backing up the file
// first. Returns ErrNotSelected when the id is not in the basket.
func (s *Store) Remove(xmlID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(xmlID)
	if i < 0 {
		return ErrNotSelected
	}

	s.backup()

	updated := make([]Entry, 0, len(s.entries)-1)
	updated = append(updated, s.entries[:i]...)
	updated = append(updated, s.entries[i+1:]...)

	previous := s.entries
	s.entries = updated
	if err := s.save(); err != nil {
		s.entries = previous
		return err
	}
	return nil
}

// Clear empties the basket, backing up the file first.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backup()

	previous := s.entries
	s.entries = nil
	if err := s.save(); err != nil {
		s.entries = previous
		return err
	}
	return nil
}

// List returns the selection in stored order.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// IDs returns the selected xmlIds in stored order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.XMLID
	}
	return ids
}

// Contains reports whether an xmlId is in the basket.
func (s *Store) Contains(xmlID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(xmlID) >= 0
}

// Len returns the number of selected plugins.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// indexOf returns the position of an xmlId, or -1. Callers hold mu.
func (s *Store) indexOf(xmlID string) int {
	for i, e := range s.entries {
		if e.XMLID == xmlID {
			return i
		}
	}
	return -1
}

// save rewrites the whole basket file. Callers hold mu.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create basket directory: %w", err)
	}

	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.MarshalIndent(fileData{
		SelectedPlugins: entries,
		LastUpdated:     time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal basket: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write basket: %w", err)
	}
	return nil
}
