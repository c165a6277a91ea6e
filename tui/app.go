// ABOUTME: Bubble Tea model for watching a run: status bar, scrolling event log, decision spinner.
// ABOUTME: Reads loop status on a tick and streams run events from an emitter subscription.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/gamepilot/pilot"
)

// maxLogLines bounds the in-memory event log.
const maxLogLines = 500

// StatusProvider is the slice of the control loop the TUI reads.
type StatusProvider interface {
	Status() pilot.Status
}

// AppModel is the top-level Bubble Tea model for a run.
type AppModel struct {
	loop   StatusProvider
	events <-chan pilot.RunEvent
	cancel func()

	log     viewport.Model
	spin    spinner.Model
	lines   []string
	status  pilot.Status
	width   int
	height  int
	started time.Time
	closed  bool
}

// NewAppModel creates the run TUI. cancel is invoked when the operator
// quits, so the loop shuts down (and saves state) before the program exits.
func NewAppModel(loop StatusProvider, events <-chan pilot.RunEvent, cancel func()) AppModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = LogRetryStyle

	return AppModel{
		loop:    loop,
		events:  events,
		cancel:  cancel,
		log:     viewport.New(80, 20),
		spin:    s,
		started: time.Now(),
	}
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		waitForEventCmd(m.events),
		tickCmd(),
		m.spin.Tick,
	)
}

// waitForEventCmd blocks on the next run event.
func waitForEventCmd(events <-chan pilot.RunEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return EventsClosedMsg{}
		}
		return RunEventMsg{Event: ev}
	}
}

// tickCmd schedules the next status refresh.
func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// Update implements tea.Model.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := m.height - 5
		if logHeight < 3 {
			logHeight = 3
		}
		m.log.Width = m.width - 2
		m.log.Height = logHeight
		return m, nil

	case RunEventMsg:
		m.appendEvent(msg.Event)
		return m, waitForEventCmd(m.events)

	case EventsClosedMsg:
		m.closed = true
		return m, nil

	case TickMsg:
		m.status = m.loop.Status()
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// appendEvent formats one event into the log and scrolls to the bottom.
func (m *AppModel) appendEvent(ev pilot.RunEvent) {
	line := fmt.Sprintf("%s %s",
		LogTimestampStyle.Render(ev.Timestamp.Format("15:04:05")),
		StyleForEvent(ev.Kind).Render(formatEvent(ev)),
	)
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
	m.log.SetContent(strings.Join(m.lines, "\n"))
	m.log.GotoBottom()
}

// formatEvent renders an event as a single log line.
func formatEvent(ev pilot.RunEvent) string {
	if len(ev.Data) == 0 {
		return string(ev.Kind)
	}

	keys := make([]string, 0, len(ev.Data))
	for k := range ev.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, ev.Data[k]))
	}
	return fmt.Sprintf("%s %s", ev.Kind, strings.Join(parts, " "))
}

// View implements tea.Model.
func (m AppModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	title := TitleStyle.Render("gamepilot")
	bar := m.statusBar()
	logView := BorderStyle.Render(m.log.View())
	help := HelpStyle.Render("q: quit and save  ↑/↓: scroll log")

	return lipgloss.JoinVertical(lipgloss.Left, title, bar, logView, help)
}

// statusBar renders the single-line run summary.
func (m AppModel) statusBar() string {
	phase := string(m.status.Phase)
	if m.status.Phase == pilot.PhaseAwaitingDecision {
		phase = m.spin.View() + " deciding"
	}

	elapsed := time.Since(m.started).Round(time.Second)
	text := fmt.Sprintf("%s | tick %d | queue %s (%d left) | %d decisions | %s",
		phase, m.status.Tick, m.status.Queue, m.status.Remaining, m.status.Decisions, elapsed)

	if m.closed {
		text += " | run ended"
	}
	return StatusBarStyle.Width(m.width).Render(text)
}
