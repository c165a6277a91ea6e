// ABOUTME: HTTP client for the emulator bridge process implementing the Emulator interface.
// ABOUTME: Small JSON-over-HTTP protocol: /snapshot, /input, /step, /state/save, /state/load, /stop.

package emu

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BridgeClient talks to an emulator bridge process over HTTP. The bridge
// owns the actual emulation (frame stepping, rendering, memory layout) and
// exposes it through a handful of JSON endpoints.
type BridgeClient struct {
	baseURL    string
	httpClient *http.Client
}

// BridgeOption is a functional option for configuring a BridgeClient.
type BridgeOption func(*BridgeClient)

// WithBridgeTimeout sets the per-request HTTP timeout.
func WithBridgeTimeout(timeout time.Duration) BridgeOption {
	return func(b *BridgeClient) {
		b.httpClient = &http.Client{Timeout: timeout}
	}
}

// NewBridgeClient creates a BridgeClient for the bridge at baseURL.
func NewBridgeClient(baseURL string, opts ...BridgeOption) *BridgeClient {
	client := &BridgeClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// bridgeError is the bridge's error envelope.
type bridgeError struct {
	Error string `json:"error"`
}

// doRequest executes a JSON request against the bridge and decodes the
// response into out (when non-nil). Non-2xx responses are unwrapped into
// the bridge's error message.
func (b *BridgeClient) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding bridge request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating bridge request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bridge %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading bridge response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var be bridgeError
		if json.Unmarshal(respBody, &be) == nil && be.Error != "" {
			return fmt.Errorf("bridge %s %s: %s", method, path, be.Error)
		}
		return fmt.Errorf("bridge %s %s: HTTP %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding bridge response: %w", err)
		}
	}
	return nil
}

// snapshotResponse is the wire shape of GET /snapshot.
type snapshotResponse struct {
	FramePNG string `json:"frame_png"`
	WRAM     string `json:"wram"`
}

// Snapshot captures the current frame and work-RAM window.
func (b *BridgeClient) Snapshot(ctx context.Context) (*Snapshot, error) {
	var sr snapshotResponse
	if err := b.doRequest(ctx, http.MethodGet, "/snapshot", nil, &sr); err != nil {
		return nil, err
	}

	frame, err := base64.StdEncoding.DecodeString(sr.FramePNG)
	if err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}
	wram, err := base64.StdEncoding.DecodeString(sr.WRAM)
	if err != nil {
		return nil, fmt.Errorf("decoding wram: %w", err)
	}

	return &Snapshot{FramePNG: frame, WRAM: wram, Taken: time.Now()}, nil
}

// Press applies one button press for the given hold duration.
func (b *BridgeClient) Press(ctx context.Context, button string, hold time.Duration) error {
	body := map[string]any{
		"button":  button,
		"hold_ms": hold.Milliseconds(),
	}
	return b.doRequest(ctx, http.MethodPost, "/input", body, nil)
}

// LoadROM asks the bridge to load the ROM at path, rendered with the named
// display palette. Called once at startup, before the loop runs.
func (b *BridgeClient) LoadROM(ctx context.Context, path, paletteName string) error {
	body := map[string]any{
		"path":    path,
		"palette": paletteName,
	}
	return b.doRequest(ctx, http.MethodPost, "/rom", body, nil)
}

// Step advances the emulation by the given number of frames without input.
func (b *BridgeClient) Step(ctx context.Context, frames int) error {
	return b.doRequest(ctx, http.MethodPost, "/step", map[string]any{"frames": frames}, nil)
}

// SaveState persists the emulator state to path on the bridge host.
func (b *BridgeClient) SaveState(ctx context.Context, path string) error {
	return b.doRequest(ctx, http.MethodPost, "/state/save", map[string]any{"path": path}, nil)
}

// LoadState restores emulator state from path on the bridge host.
func (b *BridgeClient) LoadState(ctx context.Context, path string) error {
	return b.doRequest(ctx, http.MethodPost, "/state/load", map[string]any{"path": path}, nil)
}

// Stop shuts the emulation down, flushing cartridge RAM to disk.
func (b *BridgeClient) Stop(ctx context.Context) error {
	return b.doRequest(ctx, http.MethodPost, "/stop", nil, nil)
}
