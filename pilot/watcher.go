// ABOUTME: Watches the operator suggestion file and feeds its contents into the SuggestionBox.
// ABOUTME: Writing text publishes a hint; truncating the file to empty clears pending hints.

package pilot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// SuggestionWatcher is the background task bridging a watched file to the
// suggestion channel. It is purely advisory and runs for the process
// lifetime.
type SuggestionWatcher struct {
	path   string
	box    *SuggestionBox
	events *EventEmitter

	// selfTruncated marks that the next empty read is the echo of our own
	// truncation, not an operator clearing pending hints.
	selfTruncated bool
}

// NewSuggestionWatcher watches path and publishes into box.
func NewSuggestionWatcher(path string, box *SuggestionBox, events *EventEmitter) *SuggestionWatcher {
	return &SuggestionWatcher{path: path, box: box, events: events}
}

// Run blocks until ctx is cancelled. The parent directory is watched
// rather than the file itself so editors that replace the file atomically
// still trigger notifications.
func (w *SuggestionWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating suggestion watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	// Pick up anything written before the watch started.
	w.ingest()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.ingest()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.events.Emit(EventError, map[string]any{"source": "suggestion_watcher", "error": err.Error()})
		}
	}
}

// ingest reads the file, publishes or clears, and truncates it so the
// same text is never delivered twice.
func (w *SuggestionWatcher) ingest() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.events.Emit(EventError, map[string]any{"source": "suggestion_watcher", "error": err.Error()})
		}
		return
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		if w.selfTruncated {
			w.selfTruncated = false
			return
		}
		if w.box.Pending() > 0 {
			w.box.Clear()
			w.events.Emit(EventSuggestionCleared, nil)
		}
		return
	}

	w.box.Publish(text)
	w.events.Emit(EventSuggestionStored, map[string]any{"text": text})

	w.selfTruncated = true
	if err := os.Truncate(w.path, 0); err != nil {
		w.events.Emit(EventError, map[string]any{"source": "suggestion_watcher", "error": err.Error()})
	}
}
