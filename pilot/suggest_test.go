// ABOUTME: Tests for the suggestion channel: consume-once, clearing, concurrent publish/consume.

package pilot

import (
	"sync"
	"testing"
)

func TestConsumeOnce(t *testing.T) {
	box := NewSuggestionBox()
	box.Publish("go to the lab")

	text, ok := box.Consume()
	if !ok || text != "go to the lab" {
		t.Fatalf("Consume = %q, %v", text, ok)
	}
	if _, ok := box.Consume(); ok {
		t.Error("second Consume returned a suggestion")
	}
}

func TestConsumeEmptyIsNotAnError(t *testing.T) {
	box := NewSuggestionBox()
	if text, ok := box.Consume(); ok || text != "" {
		t.Errorf("Consume on empty = %q, %v", text, ok)
	}
}

func TestPublishOrderAndClear(t *testing.T) {
	box := NewSuggestionBox()
	box.Publish("first")
	box.Publish("second")

	if text, _ := box.Consume(); text != "first" {
		t.Errorf("Consume = %q, want first", text)
	}

	box.Publish("third")
	box.Clear()
	if _, ok := box.Consume(); ok {
		t.Error("Consume after Clear returned a suggestion")
	}
	if box.Pending() != 0 {
		t.Errorf("Pending = %d after Clear", box.Pending())
	}
}

func TestPublishIgnoresEmpty(t *testing.T) {
	box := NewSuggestionBox()
	box.Publish("")
	if box.Pending() != 0 {
		t.Error("empty publish was stored")
	}
}

func TestQueueBoundDropsOldest(t *testing.T) {
	box := NewSuggestionBox()
	for i := 0; i < suggestionQueueBound+3; i++ {
		box.Publish(string(rune('a' + i)))
	}
	if box.Pending() != suggestionQueueBound {
		t.Fatalf("Pending = %d, want %d", box.Pending(), suggestionQueueBound)
	}
	// The oldest three were dropped, so the head is now "d".
	if text, _ := box.Consume(); text != "d" {
		t.Errorf("head = %q, want d", text)
	}
}

func TestConcurrentPublishConsume(t *testing.T) {
	box := NewSuggestionBox()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			box.Publish("hint")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			box.Consume()
		}
	}()
	wg.Wait()

	// Drain whatever is left; the point is no race or corruption.
	for {
		if _, ok := box.Consume(); !ok {
			break
		}
	}
	if box.Pending() != 0 {
		t.Errorf("Pending = %d after drain", box.Pending())
	}
}
