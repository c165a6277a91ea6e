// ABOUTME: The closed action vocabulary the control loop can actuate, plus parsing and sequences.
// ABOUTME: Anything outside this set never reaches the emulator; unknown tokens are dropped at parse time.

package pilot

import "strings"

// Action is one discrete input the control loop can actuate.
type Action string

const (
	ActionUp        Action = "up"
	ActionDown      Action = "down"
	ActionLeft      Action = "left"
	ActionRight     Action = "right"
	ActionPrimary   Action = "primary"
	ActionSecondary Action = "secondary"
	ActionMenu      Action = "menu"
	ActionAltMenu   Action = "alt-menu"
	ActionWait      Action = "wait"
)

// actionAliases maps the button names the policy model tends to use onto
// the canonical action set.
var actionAliases = map[string]Action{
	"up":        ActionUp,
	"down":      ActionDown,
	"left":      ActionLeft,
	"right":     ActionRight,
	"primary":   ActionPrimary,
	"a":         ActionPrimary,
	"secondary": ActionSecondary,
	"b":         ActionSecondary,
	"menu":      ActionMenu,
	"start":     ActionMenu,
	"alt-menu":  ActionAltMenu,
	"select":    ActionAltMenu,
	"wait":      ActionWait,
}

// ParseAction resolves a single token, case-insensitively, to a member of
// the action set. Surrounding quotes and punctuation are stripped first.
func ParseAction(token string) (Action, bool) {
	cleaned := strings.ToLower(strings.Trim(token, " \t\"'`.,;:!"))
	action, ok := actionAliases[cleaned]
	return action, ok
}

// Button returns the emulator button name for the action, or "" for wait.
func (a Action) Button() string {
	switch a {
	case ActionPrimary:
		return "a"
	case ActionSecondary:
		return "b"
	case ActionMenu:
		return "start"
	case ActionAltMenu:
		return "select"
	case ActionWait:
		return ""
	default:
		return string(a)
	}
}

// Sequence is an ordered list of actions produced by one decision.
// Immutable once produced; the loop consumes it one element at a time.
type Sequence []Action

// DefaultSequence is the fallback when a decision cannot be obtained or
// parsed. Wait is a no-op at the emulator, so the loop just idles a beat.
func DefaultSequence() Sequence {
	return Sequence{ActionWait}
}

// String renders the sequence in the bracketed form used in logs.
func (s Sequence) String() string {
	tokens := make([]string, len(s))
	for i, a := range s {
		tokens[i] = string(a)
	}
	return "[" + strings.Join(tokens, ", ") + "]"
}
