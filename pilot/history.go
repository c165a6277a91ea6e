// ABOUTME: Bounded FIFO record of past decisions, rendered into context for future requests.
// ABOUTME: Capacity 10; the context digest covers the 3 most recent with the newest in full detail.

package pilot

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// HistoryBound is the maximum number of decisions retained.
const HistoryBound = 10

// DefaultContextDepth is how many recent decisions the digest covers.
const DefaultContextDepth = 3

// Decision is one completed policy call: the raw reply, the sequence
// parsed from it, and when it resolved. Never mutated after creation.
type Decision struct {
	ID        string
	Response  string
	Sequence  Sequence
	Fallback  bool
	Timestamp time.Time
}

// NewDecision stamps a decision with a sortable unique ID and the current time.
func NewDecision(response string, seq Sequence, fallback bool) Decision {
	return Decision{
		ID:        ulid.Make().String(),
		Response:  response,
		Sequence:  seq,
		Fallback:  fallback,
		Timestamp: time.Now(),
	}
}

// History holds the bounded decision record. Safe for concurrent use by
// the decision task and observers.
type History struct {
	mu      sync.Mutex
	entries []Decision
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Record appends a decision, evicting the oldest entry once the bound is
// reached.
func (h *History) Record(d Decision) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, d)
	if len(h.entries) > HistoryBound {
		h.entries = h.entries[len(h.entries)-HistoryBound:]
	}
}

// Len returns the number of retained decisions.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of the retained decisions, oldest first.
func (h *History) Entries() []Decision {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Decision, len(h.entries))
	copy(out, h.entries)
	return out
}

// Context renders the most recent maxRecent decisions for the next
// request. The newest entry carries its full reasoning text; older ones
// are summarized to their first line. Safe to call on an empty history.
func (h *History) Context(maxRecent int) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return "No previous decisions."
	}
	if maxRecent <= 0 {
		maxRecent = DefaultContextDepth
	}

	start := len(h.entries) - maxRecent
	if start < 0 {
		start = 0
	}
	recent := h.entries[start:]

	var b strings.Builder
	b.WriteString("Previous decisions (oldest first):\n")
	for i, d := range recent {
		newest := i == len(recent)-1
		if newest {
			fmt.Fprintf(&b, "%d. %s -> %s\n%s\n", i+1, d.Timestamp.Format("15:04:05"), d.Sequence, strings.TrimSpace(d.Response))
		} else {
			fmt.Fprintf(&b, "%d. %s -> %s (%s)\n", i+1, d.Timestamp.Format("15:04:05"), d.Sequence, firstLine(d.Response))
		}
	}
	return b.String()
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(line)
}
