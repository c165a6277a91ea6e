// ABOUTME: Tests for the SQLite run journal using in-memory databases.

package journal

import (
	"context"
	"testing"
	"time"

	"github.com/2389-research/gamepilot/pilot"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestLogEventAndCounts(t *testing.T) {
	j := openTestJournal(t)

	for _, kind := range []pilot.EventKind{pilot.EventRunStart, pilot.EventActionActuated, pilot.EventActionActuated} {
		err := j.LogEvent(pilot.RunEvent{
			Kind:      kind,
			Timestamp: time.Now(),
			RunID:     "run-1",
			Data:      map[string]any{"action": "up"},
		})
		if err != nil {
			t.Fatalf("LogEvent: %v", err)
		}
	}

	counts, err := j.EventCounts("run-1")
	if err != nil {
		t.Fatalf("EventCounts: %v", err)
	}
	if counts[string(pilot.EventActionActuated)] != 2 {
		t.Errorf("counts = %v", counts)
	}
	if counts[string(pilot.EventRunStart)] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestConsumeRecordsDecisions(t *testing.T) {
	j := openTestJournal(t)

	ch := make(chan pilot.RunEvent, 4)
	ch <- pilot.RunEvent{
		Kind:      pilot.EventDecisionComplete,
		Timestamp: time.Now(),
		RunID:     "run-1",
		Data: map[string]any{
			"decision_id": "01ARZ3NDEKTSV4RRFFQ69G5FAV",
			"sequence":    "[up]",
			"fallback":    false,
			"response":    "Selected Action: up",
		},
	}
	close(ch)

	j.Consume(context.Background(), ch, func(err error) { t.Errorf("consume error: %v", err) })

	decisions, err := j.RecentDecisions("run-1", 10)
	if err != nil {
		t.Fatalf("RecentDecisions: %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("decisions = %d, want 1", len(decisions))
	}
	d := decisions[0]
	if d.ID != "01ARZ3NDEKTSV4RRFFQ69G5FAV" || d.Sequence != "[up]" || d.Fallback {
		t.Errorf("decision = %+v", d)
	}
	if d.Response != "Selected Action: up" {
		t.Errorf("response = %q", d.Response)
	}
}

func TestRecentDecisionsNewestFirst(t *testing.T) {
	j := openTestJournal(t)

	base := time.Now()
	for i := 0; i < 3; i++ {
		ev := pilot.RunEvent{
			Kind:      pilot.EventDecisionComplete,
			Timestamp: base.Add(time.Duration(i) * time.Second),
			RunID:     "run-1",
			Data: map[string]any{
				"decision_id": string(rune('a' + i)),
				"sequence":    "[wait]",
				"fallback":    true,
			},
		}
		if err := j.logDecision(ev); err != nil {
			t.Fatalf("logDecision: %v", err)
		}
	}

	decisions, err := j.RecentDecisions("run-1", 2)
	if err != nil {
		t.Fatalf("RecentDecisions: %v", err)
	}
	if len(decisions) != 2 {
		t.Fatalf("len = %d, want 2", len(decisions))
	}
	if decisions[0].ID != "c" || decisions[1].ID != "b" {
		t.Errorf("order = %s, %s; want c, b", decisions[0].ID, decisions[1].ID)
	}
}

func TestRecentDecisionsEmptyRun(t *testing.T) {
	j := openTestJournal(t)
	decisions, err := j.RecentDecisions("missing", 10)
	if err != nil {
		t.Fatalf("RecentDecisions: %v", err)
	}
	if len(decisions) != 0 {
		t.Errorf("decisions = %v", decisions)
	}
}
