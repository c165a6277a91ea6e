// ABOUTME: Parsers for free-form policy replies: locate the decision marker line, tokenize, validate.
// ABOUTME: Two variants share one interface: a single-action parser and a bracketed-sequence parser.

package pilot

import "strings"

// ReplyParser extracts an action sequence from a policy reply. The second
// return is false when the reply held no usable decision; the caller is
// expected to fall back to DefaultSequence.
type ReplyParser interface {
	Mode() string
	Parse(text string) (Sequence, bool)
}

// singleMarkers are the decision marker prefixes accepted in single-action
// mode, checked in order against each line scanned from the end.
var singleMarkers = []string{
	"selected action:",
	"chosen action:",
	"recommended action:",
	"action:",
}

// sequenceMarker is the decision marker prefix for sequence mode.
const sequenceMarker = "action sequence:"

// SingleActionParser reads replies that conclude with one action keyword
// after a marker line, falling back to a whole-text token scan.
type SingleActionParser struct{}

func (SingleActionParser) Mode() string { return "single" }

// Parse scans lines from the end for a marker, takes the first valid token
// after it, and otherwise falls back to scanning every word of the reply.
func (SingleActionParser) Parse(text string) (Sequence, bool) {
	lines := splitLines(text)
	for i := len(lines) - 1; i >= 0; i-- {
		rest, ok := matchMarker(lines[i], singleMarkers)
		if !ok {
			continue
		}
		for _, token := range strings.Fields(rest) {
			if action, ok := ParseAction(token); ok {
				return Sequence{action}, true
			}
		}
		// Marker line with no valid token: keep scanning earlier lines.
	}

	// No usable marker line. Scan the whole reply for the first word that
	// is itself a valid token.
	for _, word := range strings.Fields(text) {
		if action, ok := ParseAction(word); ok {
			return Sequence{action}, true
		}
	}
	return nil, false
}

// SequenceParser reads replies that conclude with a bracketed, comma
// separated action list after the sequence marker. There is no fallback
// scan: without the marker the reply is unusable.
type SequenceParser struct{}

func (SequenceParser) Mode() string { return "sequence" }

func (SequenceParser) Parse(text string) (Sequence, bool) {
	lines := splitLines(text)
	for i := len(lines) - 1; i >= 0; i-- {
		rest, ok := matchMarker(lines[i], []string{sequenceMarker})
		if !ok {
			continue
		}

		rest = strings.TrimSpace(rest)
		rest = strings.TrimPrefix(rest, "[")
		rest = strings.TrimSuffix(rest, "]")

		var seq Sequence
		for _, token := range strings.Split(rest, ",") {
			if action, ok := ParseAction(token); ok {
				seq = append(seq, action)
			}
			// Unrecognized tokens are dropped, not substituted.
		}
		if len(seq) > 0 {
			return seq, true
		}
	}
	return nil, false
}

// matchMarker reports whether the line begins with one of the markers,
// case-insensitively, and returns the remainder after it.
func matchMarker(line string, markers []string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	lower := strings.ToLower(trimmed)
	for _, marker := range markers {
		if strings.HasPrefix(lower, marker) {
			return trimmed[len(marker):], true
		}
	}
	return "", false
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
