// ABOUTME: Lipgloss style constants for the run TUI: status bar, log lines, event colors.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/gamepilot/pilot"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	LogTimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	LogEventStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	LogActionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	LogRetryStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	LogErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	HelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// StyleForEvent returns the log line style for an event kind.
func StyleForEvent(kind pilot.EventKind) lipgloss.Style {
	switch kind {
	case pilot.EventActionActuated, pilot.EventDecisionComplete:
		return LogActionStyle
	case pilot.EventRetryScheduled, pilot.EventDecisionFallback:
		return LogRetryStyle
	case pilot.EventError:
		return LogErrorStyle
	default:
		return LogEventStyle
	}
}
