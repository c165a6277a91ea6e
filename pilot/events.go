// ABOUTME: Event system for the pilot run, enabling real-time observation of the control loop.
// ABOUTME: Provides EventEmitter with subscribe/emit/unsubscribe pattern and typed RunEvent delivery.

package pilot

import (
	"sync"
	"time"
)

// EventKind discriminates the type of run event.
type EventKind string

const (
	EventRunStart          EventKind = "run_start"
	EventRunEnd            EventKind = "run_end"
	EventDecisionStart     EventKind = "decision_start"
	EventDecisionComplete  EventKind = "decision_complete"
	EventDecisionFallback  EventKind = "decision_fallback"
	EventRetryScheduled    EventKind = "retry_scheduled"
	EventActionActuated    EventKind = "action_actuated"
	EventSuggestionStored  EventKind = "suggestion_stored"
	EventSuggestionApplied EventKind = "suggestion_applied"
	EventSuggestionCleared EventKind = "suggestion_cleared"
	EventStateSaved        EventKind = "state_saved"
	EventError             EventKind = "error"
)

// RunEvent represents a typed event emitted by the control loop.
type RunEvent struct {
	Kind      EventKind      `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventEmitter delivers run events to subscribed channels.
type EventEmitter struct {
	mu          sync.RWMutex
	runID       string
	subscribers []chan RunEvent
	closed      bool
}

// NewEventEmitter creates an emitter stamping every event with runID.
func NewEventEmitter(runID string) *EventEmitter {
	return &EventEmitter{
		runID:       runID,
		subscribers: make([]chan RunEvent, 0),
	}
}

// Subscribe registers a new subscriber channel and returns it.
// The channel has a buffer of 64 to reduce the likelihood of blocking.
func (e *EventEmitter) Subscribe() <-chan RunEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan RunEvent, 64)
	e.subscribers = append(e.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (e *EventEmitter) Unsubscribe(ch <-chan RunEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, sub := range e.subscribers {
		// Cast the bidirectional channel to receive-only for comparison
		if (<-chan RunEvent)(sub) == ch {
			close(sub)
			e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
			return
		}
	}
}

// Emit sends an event to all subscribers. Non-blocking: if a subscriber's
// channel buffer is full, the event is dropped for that subscriber.
func (e *EventEmitter) Emit(kind EventKind, data map[string]any) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return
	}

	event := RunEvent{
		Kind:      kind,
		Timestamp: time.Now(),
		RunID:     e.runID,
		Data:      data,
	}
	for _, ch := range e.subscribers {
		select {
		case ch <- event:
		default:
			// Drop event for slow subscribers rather than blocking
		}
	}
}

// Close closes the emitter and all subscriber channels.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true

	for _, ch := range e.subscribers {
		close(ch)
	}
	e.subscribers = nil
}
