// ABOUTME: Tests for the emulator bridge client using an httptest server.

package emu

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBridgeSnapshot(t *testing.T) {
	frame := []byte{0x89, 'P', 'N', 'G'}
	wram := make([]byte, WRAMSize)
	wram[0xD362-WRAMBase] = 12 // player X

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/snapshot" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"frame_png": base64.StdEncoding.EncodeToString(frame),
			"wram":      base64.StdEncoding.EncodeToString(wram),
		})
	}))
	defer server.Close()

	client := NewBridgeClient(server.URL)
	snap, err := client.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if string(snap.FramePNG) != string(frame) {
		t.Errorf("FramePNG = %v, want %v", snap.FramePNG, frame)
	}
	if len(snap.WRAM) != WRAMSize {
		t.Errorf("WRAM length = %d, want %d", len(snap.WRAM), WRAMSize)
	}
	if snap.WRAM[0xD362-WRAMBase] != 12 {
		t.Errorf("player X byte = %d, want 12", snap.WRAM[0xD362-WRAMBase])
	}
	if snap.Taken.IsZero() {
		t.Error("Taken should be set")
	}
}

func TestBridgePress(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/input" {
			t.Errorf("path = %s, want /input", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&captured)
	}))
	defer server.Close()

	client := NewBridgeClient(server.URL)
	if err := client.Press(context.Background(), "a", 200*time.Millisecond); err != nil {
		t.Fatalf("Press: %v", err)
	}

	if captured["button"] != "a" {
		t.Errorf("button = %v, want a", captured["button"])
	}
	if captured["hold_ms"] != float64(200) {
		t.Errorf("hold_ms = %v, want 200", captured["hold_ms"])
	}
}

func TestBridgeErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "unknown button: q"})
	}))
	defer server.Close()

	client := NewBridgeClient(server.URL)
	err := client.Press(context.Background(), "q", time.Millisecond)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unknown button: q") {
		t.Errorf("error = %v, want bridge message surfaced", err)
	}
}

func TestBridgeLoadROM(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rom" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&captured)
	}))
	defer server.Close()

	client := NewBridgeClient(server.URL)
	if err := client.LoadROM(context.Background(), "red_color.gb", "classic"); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if captured["path"] != "red_color.gb" || captured["palette"] != "classic" {
		t.Errorf("body = %v", captured)
	}
}

func TestBridgeStateRoundTripPaths(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		paths = append(paths, r.URL.Path+":"+body["path"].(string))
	}))
	defer server.Close()

	client := NewBridgeClient(server.URL)
	ctx := context.Background()
	if err := client.SaveState(ctx, "red.state"); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if err := client.LoadState(ctx, "red.state"); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	want := []string{"/state/save:red.state", "/state/load:red.state"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("request %d = %s, want %s", i, paths[i], want[i])
		}
	}
}
