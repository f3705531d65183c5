// Package styles provides the colour theme and pre-built lipgloss
// styles for the run dashboard.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the dashboard colour palette. One colour per file outcome
// keeps the row list scannable while a run is in flight.
type Theme struct {
	// Accent colours the title, spinner and row selection.
	Accent lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for paths, hints and in-progress status text.
	Muted lipgloss.Color

	// Success marks written files and the completion summary.
	Success lipgloss.Color

	// Warning marks skipped files and partial chunk failures.
	Warning lipgloss.Color

	// Error marks failed files and run errors.
	Error lipgloss.Color

	// Bar is the status bar background.
	Bar lipgloss.Color
}

// DefaultTheme returns the default colour palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#FAB387"), // Peach
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Bar:        lipgloss.Color("#181825"), // Near black
	}
}

// Styles are the pre-built styles the dashboard and status bar render
// with.
type Styles struct {
	theme *Theme

	// Title style for the dashboard header.
	Title lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for paths, hints and in-progress status.
	Muted lipgloss.Style

	// Selected style for the highlighted file row.
	Selected lipgloss.Style

	// Success style for written files.
	Success lipgloss.Style

	// Warning style for skipped files.
	Warning lipgloss.Style

	// Error style for failed files.
	Error lipgloss.Style

	// Spinner style for the progress spinner.
	Spinner lipgloss.Style

	// StatusBar style for the bottom bar.
	StatusBar lipgloss.Style
}

// NewStyles builds styles from a theme. A nil theme gets the default
// palette.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Accent),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme behind these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
