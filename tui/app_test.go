// ABOUTME: Tests for the run TUI model: event logging, status refresh, quit handling.
package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/gamepilot/pilot"
)

type fixedStatus struct {
	status pilot.Status
}

func (f fixedStatus) Status() pilot.Status { return f.status }

func newTestModel(events <-chan pilot.RunEvent, cancel func()) AppModel {
	loop := fixedStatus{status: pilot.Status{Phase: pilot.PhaseIdle, Tick: 7, Queue: "[up]", Remaining: 1}}
	m := NewAppModel(loop, events, cancel)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(AppModel)
}

func TestRunEventAppendsToLog(t *testing.T) {
	m := newTestModel(make(chan pilot.RunEvent), nil)

	updated, cmd := m.Update(RunEventMsg{Event: pilot.RunEvent{
		Kind:      pilot.EventActionActuated,
		Timestamp: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		Data:      map[string]any{"action": "up"},
	}})
	m = updated.(AppModel)

	if cmd == nil {
		t.Error("no follow-up command to wait for the next event")
	}
	if len(m.lines) != 1 {
		t.Fatalf("lines = %d", len(m.lines))
	}
	if !strings.Contains(m.lines[0], "action_actuated") || !strings.Contains(m.lines[0], "action=up") {
		t.Errorf("line = %q", m.lines[0])
	}
}

func TestLogBound(t *testing.T) {
	m := newTestModel(make(chan pilot.RunEvent), nil)

	for i := 0; i < maxLogLines+50; i++ {
		updated, _ := m.Update(RunEventMsg{Event: pilot.RunEvent{Kind: pilot.EventActionActuated, Timestamp: time.Now()}})
		m = updated.(AppModel)
	}
	if len(m.lines) != maxLogLines {
		t.Errorf("lines = %d, want %d", len(m.lines), maxLogLines)
	}
}

func TestTickRefreshesStatus(t *testing.T) {
	m := newTestModel(make(chan pilot.RunEvent), nil)

	updated, cmd := m.Update(TickMsg{Time: time.Now()})
	m = updated.(AppModel)

	if cmd == nil {
		t.Error("no follow-up tick scheduled")
	}
	if m.status.Tick != 7 {
		t.Errorf("status.Tick = %d, want 7", m.status.Tick)
	}
	if !strings.Contains(m.View(), "tick 7") {
		t.Errorf("view missing status:\n%s", m.View())
	}
}

func TestQuitCancelsRun(t *testing.T) {
	cancelled := false
	m := newTestModel(make(chan pilot.RunEvent), func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !cancelled {
		t.Error("quit did not cancel the run")
	}
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("cmd() = %v, want tea.Quit", msg)
	}
}

func TestEventsClosed(t *testing.T) {
	events := make(chan pilot.RunEvent)
	close(events)
	m := newTestModel(events, nil)

	msg := waitForEventCmd(m.events)()
	if _, ok := msg.(EventsClosedMsg); !ok {
		t.Fatalf("msg = %T", msg)
	}

	updated, _ := m.Update(msg)
	m = updated.(AppModel)
	if !strings.Contains(m.View(), "run ended") {
		t.Errorf("view missing end marker:\n%s", m.View())
	}
}
