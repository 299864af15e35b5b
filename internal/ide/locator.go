// Package ide locates installed JetBrains IDE executables.
package ide

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Candidate is one detected IDE executable.
type Candidate struct {
	ExecutablePath string `json:"executablePath"`
	DisplayName    string `json:"displayName"`
}

// flavor selects the executable layout inside a product directory.
type flavor int

const (
	flavorLinux flavor = iota
	flavorDarwin
	flavorWindows // also used for Windows installs mounted under WSL
)

// probe is one scan instruction: a root directory plus the layout its
// entries follow. Toolbox roots get the extra version-directory level.
type probe struct {
	root    string
	flavor  flavor
	toolbox bool
}

// product matching is token based: a directory name is split into
// lowercase tokens and a product matches when its tokens appear
// consecutively. This keeps "nvidia" from matching the bare "idea"
// pattern. Ordered most specific first.
var products = []struct {
	tokens []string
	label  string
}{
	{[]string{"intellij", "idea", "ultimate"}, "IntelliJ IDEA Ultimate"},
	{[]string{"intellij", "idea", "community"}, "IntelliJ IDEA Community"},
	{[]string{"intellij", "idea", "ce"}, "IntelliJ IDEA Community"},
	{[]string{"idea", "iu"}, "IntelliJ IDEA Ultimate"},
	{[]string{"idea", "ic"}, "IntelliJ IDEA Community"},
	{[]string{"intellij", "idea"}, "IntelliJ IDEA"},
	{[]string{"idea"}, "IntelliJ IDEA"},
}

// toolboxChannels maps Toolbox channel directory names to editions.
var toolboxChannels = map[string]string{
	"IDEA-U": "IntelliJ IDEA Ultimate",
	"IDEA-C": "IntelliJ IDEA Community",
}

// Locator scans the filesystem for installed IDEs.
type Locator struct {
	probes []probe
	logger *log.Logger
}

// NewLocator creates a locator with the default probe set for the
// current platform.
func NewLocator(logger *log.Logger) *Locator {
	return &Locator{probes: defaultProbes(), logger: logger}
}

// Detect scans for installed IDEs. It never fails: unreadable roots
// and entries are skipped with a debug log, so the worst case is an
// empty result. Candidate paths are returned unquoted; quoting is the
// command encoder's job.
func (l *Locator) Detect() []Candidate {
	var candidates []Candidate
	seen := make(map[string]bool)

	for _, p := range l.probes {
		for _, c := range l.scan(p) {
			if seen[c.ExecutablePath] {
				continue
			}
			seen[c.ExecutablePath] = true
			candidates = append(candidates, c)
		}
	}

	l.logger.Debug("IDE detection finished", "candidates", len(candidates))
	return candidates
}

func (l *Locator) scan(p probe) []Candidate {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		l.logger.Debug("Skipping probe root", "root", p.root, "error", err)
		return nil
	}

	if p.toolbox {
		return l.scanToolbox(p, entries)
	}

	var out []Candidate
	for _, entry := range entries {
		dir := filepath.Join(p.root, entry.Name())
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		label := matchProduct(entry.Name())
		if label == "" {
			continue
		}

		exe := p.flavor.executableIn(dir)
		if exe == "" {
			continue
		}

		name := label
		if v := readInstallVersion(dir); v != "" {
			name += " " + v
		}
		out = append(out, Candidate{ExecutablePath: exe, DisplayName: name})
	}
	return out
}

// scanToolbox handles a Toolbox apps directory: channel directories
// one level down, version directories below those. Version names are
// ordered by plain string comparison, newest first ("2023.9" sorts
// after "2023.10"), and the newest version holding a valid executable
// yields at most one candidate per channel.
func (l *Locator) scanToolbox(p probe, entries []os.DirEntry) []Candidate {
	var out []Candidate
	for _, entry := range entries {
		label, ok := toolboxChannels[entry.Name()]
		if !ok {
			continue
		}

		channelDir := filepath.Join(p.root, entry.Name())
		versions, err := os.ReadDir(channelDir)
		if err != nil {
			l.logger.Debug("Skipping channel", "dir", channelDir, "error", err)
			continue
		}

		var names []string
		for _, v := range versions {
			if v.IsDir() {
				names = append(names, v.Name())
			}
		}
		sort.Sort(sort.Reverse(sort.StringSlice(names)))

		for _, version := range names {
			exe := p.flavor.toolboxExecutable(filepath.Join(channelDir, version))
			if exe == "" {
				continue
			}
			out = append(out, Candidate{
				ExecutablePath: exe,
				DisplayName:    fmt.Sprintf("%s %s (Toolbox)", label, version),
			})
			break
		}
	}
	return out
}

// executableIn returns the IDE executable inside a product directory,
// or "" when it does not stat-check as a regular file.
func (f flavor) executableIn(dir string) string {
	var path string
	switch f {
	case flavorDarwin:
		path = filepath.Join(dir, "Contents", "MacOS", "idea")
	case flavorWindows:
		path = filepath.Join(dir, "bin", "idea64.exe")
	default:
		path = filepath.Join(dir, "bin", "idea.sh")
	}

	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return path
	}
	return ""
}

// toolboxExecutable resolves the executable for a Toolbox version
// directory. On macOS the app bundle sits inside the version dir.
func (f flavor) toolboxExecutable(versionDir string) string {
	if f == flavorDarwin {
		return f.executableIn(filepath.Join(versionDir, "IntelliJ IDEA.app"))
	}
	return f.executableIn(versionDir)
}

var tokenSplit = regexp.MustCompile(`[\s._-]+`)

// matchProduct returns the edition label for a directory entry name,
// or "" when the entry is not a recognized IDE.
func matchProduct(name string) string {
	tokens := nameTokens(name)
	for _, p := range products {
		if containsSeq(tokens, p.tokens) {
			return p.label
		}
	}
	return ""
}

func nameTokens(name string) []string {
	var tokens []string
	for _, tok := range tokenSplit.Split(strings.ToLower(name), -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func containsSeq(tokens, pattern []string) bool {
	if len(pattern) == 0 || len(tokens) < len(pattern) {
		return false
	}
	for i := 0; i+len(pattern) <= len(tokens); i++ {
		match := true
		for j, p := range pattern {
			if tokens[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// defaultProbes builds the platform probe set.
func defaultProbes() []probe {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "darwin":
		return []probe{
			{root: "/Applications", flavor: flavorDarwin},
			{root: filepath.Join(home, "Applications"), flavor: flavorDarwin},
			{root: filepath.Join(home, "Library", "Application Support", "JetBrains", "Toolbox", "apps"), flavor: flavorDarwin, toolbox: true},
		}
	case "windows":
		probes := []probe{
			{root: `C:\Program Files\JetBrains`, flavor: flavorWindows},
		}
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			probes = append(probes, probe{
				root:    filepath.Join(localAppData, "JetBrains", "Toolbox", "apps"),
				flavor:  flavorWindows,
				toolbox: true,
			})
		}
		return probes
	default:
		probes := []probe{
			{root: "/opt", flavor: flavorLinux},
			{root: "/usr/local", flavor: flavorLinux},
			{root: filepath.Join(home, ".local", "share", "JetBrains", "Toolbox", "apps"), flavor: flavorLinux, toolbox: true},
		}
		if isWSL() {
			probes = append(probes, wslProbes()...)
		}
		return probes
	}
}

// isWSL reports whether this Linux environment is a WSL distribution.
func isWSL() bool {
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return true
	}
	data, err := os.ReadFile("/proc/version")
	return err == nil && strings.Contains(strings.ToLower(string(data)), "microsoft")
}

// wslProbes adds the Windows-side install locations reachable through
// the /mnt/c mount. Windows user directories are enumerated since the
// Windows account name rarely matches the Linux one.
func wslProbes() []probe {
	probes := []probe{
		{root: "/mnt/c/Program Files/JetBrains", flavor: flavorWindows},
	}

	users, err := os.ReadDir("/mnt/c/Users")
	if err != nil {
		return probes
	}
	for _, u := range users {
		if !u.IsDir() {
			continue
		}
		switch u.Name() {
		case "Public", "Default", "Default User", "All Users":
			continue
		}
		probes = append(probes, probe{
			root:    filepath.Join("/mnt/c/Users", u.Name(), "AppData", "Local", "JetBrains", "Toolbox", "apps"),
			flavor:  flavorWindows,
			toolbox: true,
		})
	}
	return probes
}
