package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - coherent with charmbracelet style
var (
	Primary   = lipgloss.Color("#7D56F4") // Purple (charmbracelet brand)
	Secondary = lipgloss.Color("#FF79C6") // Pink accent
	Success   = lipgloss.Color("#50FA7B") // Green
	Warning   = lipgloss.Color("#FFB86C") // Orange
	Error     = lipgloss.Color("#FF5555") // Red
	Muted     = lipgloss.Color("#6272A4") // Muted blue-gray
	Text      = lipgloss.Color("#F8F8F2") // Light text
	Subtle    = lipgloss.Color("#44475A") // Dark background accent
)

// Base styles
var (
	// Title style for headers
	Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFDF5")).
		Background(Primary).
		Padding(0, 1).
		Bold(true)

	// Subtitle style
	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Normal text
	NormalText = lipgloss.NewStyle().
			Foreground(Text)

	// Muted text
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	// Success text
	SuccessText = lipgloss.NewStyle().
			Foreground(Success)

	// Warning text
	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	// Error text
	ErrorText = lipgloss.NewStyle().
			Foreground(Error)

	// Selected item
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// Highlighted (focused)
	Highlighted = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// App container
	App = lipgloss.NewStyle().
		Padding(1, 2)

	// Box border
	Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Subtle).
		Padding(0, 1)

	// Help text
	Help = lipgloss.NewStyle().
		Foreground(Muted)

	// Spinner
	Spinner = lipgloss.NewStyle().
		Foreground(Primary)

	// Command is the style for a generated shell command
	Command = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)
)

// Symbols
var (
	CheckMark = lipgloss.NewStyle().Foreground(Success).SetString("✓")
	CrossMark = lipgloss.NewStyle().Foreground(Error).SetString("✗")
	Bullet    = lipgloss.NewStyle().Foreground(Primary).SetString("•")
	Cursor    = lipgloss.NewStyle().Foreground(Secondary).SetString("▸")
)

// Plugin list styles
var (
	PluginName = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	PluginID = lipgloss.NewStyle().
			Foreground(Muted)

	PluginVendor = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	DownloadCount = lipgloss.NewStyle().
			Foreground(Warning)

	SelectedMark = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	InBasketBadge = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)
)

// FormatSuccess formats a success message
func FormatSuccess(msg string) string {
	return CheckMark.String() + " " + SuccessText.Render(msg)
}

// FormatError formats an error message
func FormatError(msg string) string {
	return CrossMark.String() + " " + ErrorText.Render(msg)
}

// FormatWarning formats a warning message
func FormatWarning(msg string) string {
	return WarningText.Render("! " + msg)
}

// FormatDownloads formats a download count with a compact unit suffix
func FormatDownloads(count int) string {
	if count <= 0 {
		return ""
	}
	switch {
	case count >= 1000000:
		return DownloadCount.Render(fmt.Sprintf("↓ %.1fM", float64(count)/1000000))
	case count >= 1000:
		return DownloadCount.Render(fmt.Sprintf("↓ %.1fk", float64(count)/1000))
	default:
		return DownloadCount.Render(fmt.Sprintf("↓ %d", count))
	}
}

// FormatInBasketBadge returns a styled "in basket" indicator
func FormatInBasketBadge() string {
	return InBasketBadge.Render("in basket")
}

// FormatVersion formats a plugin version with its compatibility range
func FormatVersion(version, compat string) string {
	if version == "" {
		return ""
	}
	out := "v" + version
	if compat != "" {
		out += " (" + compat + ")"
	}
	return PluginID.Render(out)
}
