// Package progress renders step output for non-TUI command runs.
package progress

import (
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/ideactl/internal/ui/styles"
)

// State represents the current state of a step
type State int

const (
	StatePending State = iota
	StateInProgress
	StateComplete
	StateError
)

// Icons - Nerd Font with ASCII fallback
type Icons struct {
	Check   string
	Cross   string
	Pending string
	Warning string
	Spinner string
}

var (
	// NerdFontIcons uses Nerd Font glyphs
	NerdFontIcons = Icons{
		Check:   "",
		Cross:   "",
		Pending: "",
		Warning: "",
		Spinner: "",
	}

	// ASCIIIcons uses simple ASCII characters
	ASCIIIcons = Icons{
		Check:   "+",
		Cross:   "x",
		Pending: "o",
		Warning: "!",
		Spinner: "*",
	}
)

// GetIcons returns the appropriate icon set based on environment
func GetIcons() Icons {
	if os.Getenv("IDEACTL_NERD_FONTS") == "1" {
		return NerdFontIcons
	}
	return ASCIIIcons
}

// Icon styles
var (
	IconStyleCheck   = lipgloss.NewStyle().Foreground(styles.Success)
	IconStyleCross   = lipgloss.NewStyle().Foreground(styles.Error)
	IconStylePending = lipgloss.NewStyle().Foreground(styles.Muted)
	IconStyleWarning = lipgloss.NewStyle().Foreground(styles.Warning)
	IconStyleSpinner = lipgloss.NewStyle().Foreground(styles.Primary)
)

// StyledIcon returns a styled icon string for the given state
func StyledIcon(state State) string {
	icons := GetIcons()
	switch state {
	case StateComplete:
		return IconStyleCheck.Render(icons.Check)
	case StateError:
		return IconStyleCross.Render(icons.Cross)
	case StateInProgress:
		return IconStyleSpinner.Render(icons.Spinner)
	default:
		return IconStylePending.Render(icons.Pending)
	}
}

// StepStyle returns the appropriate text style for a step based on state
func StepStyle(state State) lipgloss.Style {
	switch state {
	case StateComplete:
		return styles.SuccessText
	case StateError:
		return styles.ErrorText
	case StateInProgress:
		return styles.NormalText.Bold(true)
	default:
		return styles.MutedText
	}
}
