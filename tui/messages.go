// ABOUTME: Bubble Tea message types used in the TUI message loop.
// ABOUTME: Each type wraps domain events for the tea.Msg interface (which is interface{}).
package tui

import (
	"time"

	"github.com/2389-research/gamepilot/pilot"
)

// RunEventMsg wraps a pilot.RunEvent for the Bubble Tea message loop.
type RunEventMsg struct {
	Event pilot.RunEvent
}

// EventsClosedMsg signals that the run's event stream has ended.
type EventsClosedMsg struct{}

// TickMsg is sent periodically to refresh the status bar.
type TickMsg struct {
	Time time.Time
}
