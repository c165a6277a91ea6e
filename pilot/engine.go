// ABOUTME: Decision engine: composes policy requests from snapshot, history, and suggestions,
// ABOUTME: retries transient failures with backoff, and parses replies into action sequences.

package pilot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2389-research/gamepilot/llm"
)

// Observation is the input to one decision: the encoded frame and the
// rendered condition text. Produced fresh per decision cycle and not
// retained afterwards.
type Observation struct {
	FramePNG  []byte
	Condition string
}

// Policy is the slice of the LLM client the engine needs.
type Policy interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// EngineConfig carries the knobs for a decision engine.
type EngineConfig struct {
	Model       string
	Provider    string
	MaxTokens   int
	Temperature float64

	// Sequence selects the bracketed-list reply format instead of a
	// single action per decision.
	Sequence bool

	Retry llm.RetryPolicy
}

// Engine turns observations into action sequences. Its contract is
// total: Decide never returns an error, only a decision whose sequence
// falls back to [wait] on any failure path.
type Engine struct {
	policy      Policy
	parser      ReplyParser
	history     *History
	suggestions *SuggestionBox
	events      *EventEmitter
	cfg         EngineConfig
}

// NewEngine wires a decision engine.
func NewEngine(policy Policy, history *History, suggestions *SuggestionBox, events *EventEmitter, cfg EngineConfig) *Engine {
	var parser ReplyParser = SingleActionParser{}
	if cfg.Sequence {
		parser = SequenceParser{}
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.BaseDelay == 0 {
		cfg.Retry = llm.DefaultRetryPolicy()
	}
	return &Engine{
		policy:      policy,
		parser:      parser,
		history:     history,
		suggestions: suggestions,
		events:      events,
		cfg:         cfg,
	}
}

// Decide runs one full decision cycle. All failure paths resolve to the
// default [wait] sequence; successful calls are appended to history.
func (e *Engine) Decide(ctx context.Context, obs Observation) Decision {
	suggestion, hasSuggestion := e.suggestions.Consume()
	if hasSuggestion {
		e.events.Emit(EventSuggestionApplied, map[string]any{"text": suggestion})
	}

	req := e.buildRequest(obs, suggestion)
	e.events.Emit(EventDecisionStart, map[string]any{
		"model": e.cfg.Model,
		"mode":  e.parser.Mode(),
	})

	policy := e.cfg.Retry
	policy.OnRetry = func(err error, attempt int, delay time.Duration) {
		e.events.Emit(EventRetryScheduled, map[string]any{
			"attempt": attempt,
			"delay":   delay.String(),
			"error":   err.Error(),
		})
	}

	var resp *llm.Response
	err := llm.Retry(ctx, policy, func() error {
		r, callErr := e.policy.Complete(ctx, req)
		if callErr != nil {
			return callErr
		}
		resp = r
		return nil
	})
	if err != nil {
		e.events.Emit(EventDecisionFallback, map[string]any{
			"reason": "policy call failed",
			"error":  err.Error(),
		})
		return Decision{Sequence: DefaultSequence(), Fallback: true, Timestamp: time.Now()}
	}

	seq, ok := e.parser.Parse(resp.Text)
	if !ok {
		// Uninformative reply, not an error. Fall back to wait and keep
		// the reply in history so the next request sees what happened.
		e.events.Emit(EventDecisionFallback, map[string]any{
			"reason":   "no decision found in reply",
			"response": truncateText(resp.Text, 200),
		})
		seq = DefaultSequence()
	}

	decision := NewDecision(resp.Text, seq, !ok)
	e.history.Record(decision)
	e.events.Emit(EventDecisionComplete, map[string]any{
		"decision_id": decision.ID,
		"sequence":    seq.String(),
		"fallback":    decision.Fallback,
		"response":    truncateText(resp.Text, 2000),
	})
	return decision
}

// buildRequest assembles the multi-part policy payload: instruction text,
// condition record, history digest, optional suggestion, encoded frame.
func (e *Engine) buildRequest(obs Observation, suggestion string) llm.Request {
	var b strings.Builder
	b.WriteString(obs.Condition)
	b.WriteString("\n\n")
	b.WriteString(e.history.Context(DefaultContextDepth))
	if suggestion != "" {
		fmt.Fprintf(&b, "\nOperator suggestion: %s\n", suggestion)
	}
	b.WriteString("\nWhat should the player do next?\n")

	parts := []llm.ContentPart{llm.TextPart(b.String())}
	if len(obs.FramePNG) > 0 {
		parts = append(parts, llm.ImagePart(obs.FramePNG, "image/png"))
	}

	req := llm.Request{
		Model: e.cfg.Model,
		Messages: []llm.Message{
			llm.SystemMessage(e.systemPrompt()),
			llm.UserMessage(parts...),
		},
		MaxTokens: e.cfg.MaxTokens,
		Provider:  e.cfg.Provider,
	}
	if e.cfg.Temperature > 0 {
		t := e.cfg.Temperature
		req.Temperature = &t
	}
	return req
}

// systemPrompt states the game objective and the reply format contract
// for the active parser mode.
func (e *Engine) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are playing Pokemon Red on a Game Boy. ")
	b.WriteString("You see the current screen and a summary of the game state. ")
	b.WriteString("Think briefly about the situation, then commit to an input.\n\n")
	b.WriteString("Valid actions: up, down, left, right, a, b, start, select, wait.\n\n")
	if e.cfg.Sequence {
		b.WriteString("End your reply with exactly one line of the form:\n")
		b.WriteString("Action Sequence: [action, action, ...]\n")
	} else {
		b.WriteString("End your reply with exactly one line of the form:\n")
		b.WriteString("Selected Action: action\n")
	}
	return b.String()
}

// truncateText bounds raw reply text for logs and events.
func truncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
