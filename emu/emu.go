// ABOUTME: Emulator boundary for gamepilot: snapshot capture, input actuation, stepping, and state persistence.
// ABOUTME: The emulator itself is an external process; this package defines the narrow contract the loop drives.

package emu

import (
	"context"
	"time"
)

// WRAMBase is the first address of the work-RAM window included in snapshots.
// The gamestate package indexes into the window relative to this base.
const WRAMBase = 0xC000

// WRAMSize is the length of the work-RAM window included in snapshots.
const WRAMSize = 0x2000

// Snapshot is one observation of the running game: the rendered frame as a
// PNG and the work-RAM window holding the decodable game state. Snapshots
// are ephemeral; the loop takes a fresh one per decision cycle.
type Snapshot struct {
	FramePNG []byte
	WRAM     []byte
	Taken    time.Time
}

// Emulator is the contract between the control loop and the emulation
// backend. Press applies one button for the given hold duration and runs
// enough frames to observe the effect. Step advances the emulation clock
// without input.
type Emulator interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	Press(ctx context.Context, button string, hold time.Duration) error
	Step(ctx context.Context, frames int) error
	SaveState(ctx context.Context, path string) error
	LoadState(ctx context.Context, path string) error
	Stop(ctx context.Context) error
}
