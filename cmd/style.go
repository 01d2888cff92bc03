package cmd

import "charm.land/lipgloss/v2"

// Console palette.
var (
	primary = lipgloss.Color("#8B5CF6")
	success = lipgloss.Color("#22C55E")
	failure = lipgloss.Color("#F43F5E")
	dim     = lipgloss.Color("#94A3B8")
	accent  = lipgloss.Color("#F97316")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primary)

	questionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1)

	correctStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	wrongStyle   = lipgloss.NewStyle().Foreground(failure)
	noticeStyle  = lipgloss.NewStyle().Foreground(accent)
	hintStyle    = lipgloss.NewStyle().Foreground(dim).Italic(true)
)
