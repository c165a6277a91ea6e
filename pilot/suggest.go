// ABOUTME: Operator suggestion channel: bounded queue, non-blocking publish, consume-once reads.
// ABOUTME: Shared between the suggestion watcher (producer) and the decision task (consumer).

package pilot

import "sync"

// suggestionQueueBound caps how many unconsumed suggestions are kept.
// When the queue is full the oldest is dropped so the freshest hint wins.
const suggestionQueueBound = 8

// SuggestionBox holds pending operator hints. Each suggestion is
// delivered to at most one decision request.
type SuggestionBox struct {
	mu      sync.Mutex
	pending []string
}

// NewSuggestionBox creates an empty box.
func NewSuggestionBox() *SuggestionBox {
	return &SuggestionBox{}
}

// Publish enqueues a suggestion without blocking. Empty text is ignored.
func (s *SuggestionBox) Publish(text string) {
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, text)
	if len(s.pending) > suggestionQueueBound {
		s.pending = s.pending[len(s.pending)-suggestionQueueBound:]
	}
}

// Consume removes and returns the oldest pending suggestion. The second
// return is false when nothing is pending; that is not an error.
func (s *SuggestionBox) Consume() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return "", false
	}
	text := s.pending[0]
	s.pending = s.pending[1:]
	return text, true
}

// Clear discards all pending suggestions.
func (s *SuggestionBox) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Pending returns how many suggestions are waiting.
func (s *SuggestionBox) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
