// ABOUTME: SQLite-backed run journal: persists run events and completed decisions for later review.
// ABOUTME: Fed from an event subscription so writes stay off the control loop's hot path.

package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/2389-research/gamepilot/pilot"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id  TEXT NOT NULL,
	kind    TEXT NOT NULL,
	ts      TIMESTAMP NOT NULL,
	data    TEXT
);
CREATE TABLE IF NOT EXISTS decisions (
	id       TEXT PRIMARY KEY,
	run_id   TEXT NOT NULL,
	ts       TIMESTAMP NOT NULL,
	sequence TEXT NOT NULL,
	fallback INTEGER NOT NULL,
	response TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, ts);
CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id, ts);
`

// Journal persists run activity to a SQLite database.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral journal.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// LogEvent stores one run event.
func (j *Journal) LogEvent(ev pilot.RunEvent) error {
	var data []byte
	if ev.Data != nil {
		encoded, err := json.Marshal(ev.Data)
		if err != nil {
			return fmt.Errorf("encoding event data: %w", err)
		}
		data = encoded
	}
	_, err := j.db.Exec(
		"INSERT INTO events (run_id, kind, ts, data) VALUES (?, ?, ?, ?)",
		ev.RunID, string(ev.Kind), ev.Timestamp, string(data),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// DecisionRow is one persisted decision.
type DecisionRow struct {
	ID        string
	RunID     string
	Timestamp time.Time
	Sequence  string
	Fallback  bool
	Response  string
}

// logDecision stores the decision carried by a decision_complete event.
func (j *Journal) logDecision(ev pilot.RunEvent) error {
	id, _ := ev.Data["decision_id"].(string)
	if id == "" {
		return nil
	}
	sequence, _ := ev.Data["sequence"].(string)
	fallback, _ := ev.Data["fallback"].(bool)
	response, _ := ev.Data["response"].(string)

	_, err := j.db.Exec(
		"INSERT OR REPLACE INTO decisions (id, run_id, ts, sequence, fallback, response) VALUES (?, ?, ?, ?, ?, ?)",
		id, ev.RunID, ev.Timestamp, sequence, fallback, response,
	)
	if err != nil {
		return fmt.Errorf("inserting decision: %w", err)
	}
	return nil
}

// Consume drains events from ch into the journal until ch closes or ctx
// is cancelled. Decision completions are additionally recorded in the
// decisions table. Storage errors are returned; callers typically log
// and keep running, since the journal is observability, not control.
func (j *Journal) Consume(ctx context.Context, ch <-chan pilot.RunEvent, onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := j.LogEvent(ev); err != nil && onError != nil {
				onError(err)
			}
			if ev.Kind == pilot.EventDecisionComplete {
				if err := j.logDecision(ev); err != nil && onError != nil {
					onError(err)
				}
			}
		}
	}
}

// RecentDecisions returns up to limit decisions for the run, newest first.
func (j *Journal) RecentDecisions(runID string, limit int) ([]DecisionRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.Query(
		"SELECT id, run_id, ts, sequence, fallback, response FROM decisions WHERE run_id = ? ORDER BY ts DESC, id DESC LIMIT ?",
		runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionRow
	for rows.Next() {
		var d DecisionRow
		if err := rows.Scan(&d.ID, &d.RunID, &d.Timestamp, &d.Sequence, &d.Fallback, &d.Response); err != nil {
			return nil, fmt.Errorf("scanning decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// EventCounts returns how many events of each kind the run produced.
func (j *Journal) EventCounts(runID string) (map[string]int, error) {
	rows, err := j.db.Query("SELECT kind, COUNT(*) FROM events WHERE run_id = ? GROUP BY kind", runID)
	if err != nil {
		return nil, fmt.Errorf("querying event counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning event count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
