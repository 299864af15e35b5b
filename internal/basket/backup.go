package basket

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// MaxBackups is how many basket backups are kept
	MaxBackups = 3
	// backupTimestampFormat is used in backup file names
	backupTimestampFormat = "20060102-150405"
)

// backup copies the current basket file into a backups directory next
// to it before a destructive mutation, pruning old copies. Failures
// only log; a backup never blocks the mutation. Callers hold mu.
func (s *Store) backup() {
	if _, err := os.Stat(s.path); err != nil {
		return
	}

	backupDir := filepath.Join(filepath.Dir(s.path), "backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		s.logger.Warn("Failed to create backup directory", "error", err)
		return
	}

	name := "basket-" + time.Now().Format(backupTimestampFormat) + ".json"
	if err := copyFile(s.path, filepath.Join(backupDir, name)); err != nil {
		s.logger.Warn("Failed to back up basket", "error", err)
		return
	}

	s.pruneBackups(backupDir)
}

// Backups lists backup file names, newest first.
func (s *Store) Backups() []string {
	backupDir := filepath.Join(filepath.Dir(s.path), "backups")

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), "basket-") && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}

	// Timestamped names sort chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names
}

func (s *Store) pruneBackups(backupDir string) {
	names := s.Backups()
	if len(names) <= MaxBackups {
		return
	}
	for _, name := range names[MaxBackups:] {
		if err := os.Remove(filepath.Join(backupDir, name)); err != nil {
			s.logger.Warn("Failed to prune backup", "file", name, "error", err)
		}
	}
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = dstFile.Close() }()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
