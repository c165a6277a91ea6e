// ABOUTME: The control loop: fixed-cadence emulator stepping, single-flight decision dispatch,
// ABOUTME: queued action actuation, and state persistence on shutdown.

package pilot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/2389-research/gamepilot/emu"
	"github.com/2389-research/gamepilot/gamestate"
	"github.com/2389-research/gamepilot/screen"
)

// Phase is the decision-request state of the loop.
type Phase string

const (
	// PhaseIdle means no policy call is outstanding.
	PhaseIdle Phase = "idle"
	// PhaseAwaitingDecision means a policy call is in flight. A new
	// capture-and-dispatch is suppressed until it resolves.
	PhaseAwaitingDecision Phase = "awaiting_decision"
)

// DecisionMaker is the slice of the engine the loop depends on.
type DecisionMaker interface {
	Decide(ctx context.Context, obs Observation) Decision
}

// LoopConfig carries the loop's cadence and persistence knobs.
type LoopConfig struct {
	// TickInterval is the wall-clock spacing of scheduling ticks.
	TickInterval time.Duration

	// FrameInterval is how many ticks pass between qualifying points for
	// actuation or decision dispatch. The emulator still steps every tick.
	FrameInterval int

	// ButtonHold is how long each actuated button is held.
	ButtonHold time.Duration

	// SavePath, when set, receives a saved state on shutdown.
	SavePath string
}

// DefaultLoopConfig returns the cadence used by the CLI.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		TickInterval:  100 * time.Millisecond,
		FrameInterval: 10,
		ButtonHold:    200 * time.Millisecond,
	}
}

// Status is a point-in-time view of the loop for observers.
type Status struct {
	Phase     Phase
	Tick      uint64
	Queue     string
	Remaining int
	Decisions int
}

// Loop drives the emulator at a fixed cadence and asks the engine for a
// new action sequence whenever the current one is exhausted. Only one
// decision call is ever in flight.
type Loop struct {
	emulator emu.Emulator
	engine   DecisionMaker
	history  *History
	events   *EventEmitter
	cfg      LoopConfig

	mu     sync.Mutex
	status Status
}

// NewLoop wires a control loop.
func NewLoop(emulator emu.Emulator, engine DecisionMaker, history *History, events *EventEmitter, cfg LoopConfig) *Loop {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultLoopConfig().TickInterval
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultLoopConfig().FrameInterval
	}
	if cfg.ButtonHold <= 0 {
		cfg.ButtonHold = DefaultLoopConfig().ButtonHold
	}
	return &Loop{
		emulator: emulator,
		engine:   engine,
		history:  history,
		events:   events,
		cfg:      cfg,
		status:   Status{Phase: PhaseIdle},
	}
}

// Status returns a snapshot of the loop's current state.
func (l *Loop) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *Loop) setStatus(update func(*Status)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	update(&l.status)
}

// Run drives the loop until ctx is cancelled, then persists emulator
// state and returns. All loop state (phase, queue, consumption index)
// is owned by this goroutine; decision results arrive on a channel.
func (l *Loop) Run(ctx context.Context) error {
	l.events.Emit(EventRunStart, map[string]any{
		"tick_interval":  l.cfg.TickInterval.String(),
		"frame_interval": l.cfg.FrameInterval,
	})

	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()

	var (
		phase   = PhaseIdle
		queue   Sequence
		index   int
		tick    uint64
		results = make(chan Decision, 1)
	)

	for {
		select {
		case <-ctx.Done():
			return l.shutdown()

		case decision := <-results:
			// Install the new sequence atomically with the phase change.
			queue = decision.Sequence
			index = 0
			phase = PhaseIdle
			l.setStatus(func(s *Status) {
				s.Phase = PhaseIdle
				s.Queue = queue.String()
				s.Remaining = len(queue)
				s.Decisions = l.history.Len()
			})

		case <-ticker.C:
			tick++
			l.setStatus(func(s *Status) { s.Tick = tick })

			// The emulator advances every tick, even while a decision is
			// in flight, so the game stays responsive.
			if err := l.emulator.Step(ctx, 1); err != nil && ctx.Err() == nil {
				l.events.Emit(EventError, map[string]any{"source": "step", "error": err.Error()})
			}

			if tick%uint64(l.cfg.FrameInterval) != 0 {
				continue
			}

			if index < len(queue) {
				l.actuate(ctx, queue[index])
				index++
				l.setStatus(func(s *Status) { s.Remaining = len(queue) - index })
				continue
			}

			if phase == PhaseIdle {
				obs, err := l.observe(ctx)
				if err != nil {
					if ctx.Err() == nil {
						l.events.Emit(EventError, map[string]any{"source": "snapshot", "error": err.Error()})
					}
					continue
				}
				phase = PhaseAwaitingDecision
				l.setStatus(func(s *Status) { s.Phase = PhaseAwaitingDecision })
				go func() {
					results <- l.engine.Decide(ctx, obs)
				}()
			}
		}
	}
}

// actuate applies one action to the emulator. Wait is a deliberate no-op
// beyond the tick's normal step.
func (l *Loop) actuate(ctx context.Context, action Action) {
	button := action.Button()
	if button == "" {
		l.events.Emit(EventActionActuated, map[string]any{"action": string(action)})
		return
	}
	if err := l.emulator.Press(ctx, button, l.cfg.ButtonHold); err != nil {
		if ctx.Err() == nil {
			l.events.Emit(EventError, map[string]any{"source": "press", "error": err.Error()})
		}
		return
	}
	l.events.Emit(EventActionActuated, map[string]any{"action": string(action), "button": button})
}

// observe captures a snapshot and renders it into the decision input.
// Partial failures degrade the condition text rather than aborting.
func (l *Loop) observe(ctx context.Context) (Observation, error) {
	snap, err := l.emulator.Snapshot(ctx)
	if err != nil {
		return Observation{}, fmt.Errorf("capturing snapshot: %w", err)
	}

	var cond strings.Builder
	if state, err := gamestate.Decode(snap.WRAM); err == nil {
		cond.WriteString(state.Render())
	} else {
		l.events.Emit(EventError, map[string]any{"source": "gamestate", "error": err.Error()})
	}
	if img, err := screen.DecodePNG(snap.FramePNG); err == nil {
		cond.WriteString("\n")
		cond.WriteString(screen.Describe(img))
	} else {
		l.events.Emit(EventError, map[string]any{"source": "screen", "error": err.Error()})
	}

	return Observation{FramePNG: snap.FramePNG, Condition: cond.String()}, nil
}

// shutdown persists emulator state if configured. Uses a fresh context
// because the loop's own context is already cancelled.
func (l *Loop) shutdown() error {
	defer l.events.Emit(EventRunEnd, nil)

	if l.cfg.SavePath == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := l.emulator.SaveState(ctx, l.cfg.SavePath); err != nil {
		l.events.Emit(EventError, map[string]any{"source": "save_state", "error": err.Error()})
		return fmt.Errorf("saving state on shutdown: %w", err)
	}
	l.events.Emit(EventStateSaved, map[string]any{"path": l.cfg.SavePath})
	return nil
}
