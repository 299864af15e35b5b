package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

func init() {
	// Silence the default charmbracelet/log logger; everything goes
	// through the instance returned by Init.
	log.SetLevel(log.FatalLevel)
}

// logFile is the open handle for the active log file, if any.
var logFile *os.File

// Init sets up the logger. Logs always go to a file under the user
// cache directory; verbose additionally tees them to stderr and raises
// the level to debug. Setup failures fall back to stderr-only logging
// rather than returning an error.
func Init(verbose bool) *log.Logger {
	logPath := Path()

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return stderrLogger(verbose)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return stderrLogger(verbose)
	}
	logFile = f

	var output io.Writer = f
	if verbose {
		output = io.MultiWriter(f, os.Stderr)
	}

	l := log.NewWithOptions(output, log.Options{
		ReportTimestamp: true,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.InfoLevel)
	}
	return l
}

// Path returns the log file location, derived from XDG_CACHE_HOME with
// a ~/.cache fallback.
func Path() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		homeDir, _ := os.UserHomeDir()
		cacheDir = filepath.Join(homeDir, ".cache")
	}
	return filepath.Join(cacheDir, "ideactl", "ideactl.log")
}

// Close closes the log file.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

func stderrLogger(verbose bool) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.WarnLevel)
	}
	return l
}
