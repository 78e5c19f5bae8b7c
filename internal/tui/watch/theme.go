// Package watch implements the folio watch TUI: live counters and a table of
// recent events read from /admin/events.
package watch

import "github.com/charmbracelet/lipgloss"

// Theme centralizes all styling for the watch TUI.
type Theme struct {
	OK     lipgloss.Style
	Failed lipgloss.Style
	Warn   lipgloss.Style

	Border    lipgloss.Style
	Title     lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style

	ActivityOn  lipgloss.Style
	ActivityOff lipgloss.Style
}

func NewDefaultTheme() Theme {
	teal := lipgloss.Color("#14B8A6")

	return Theme{
		OK:     lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")),
		Failed: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		Warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EAB308")),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(teal),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8FAFC")).
			Padding(0, 1),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8")),
		Highlight: lipgloss.NewStyle().Foreground(teal),

		ActivityOn:  lipgloss.NewStyle().Foreground(teal),
		ActivityOff: lipgloss.NewStyle().Foreground(lipgloss.Color("#334155")),
	}
}
