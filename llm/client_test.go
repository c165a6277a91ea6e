// ABOUTME: Tests for provider routing in the Client.

package llm

import (
	"context"
	"errors"
	"testing"
)

type stubAdapter struct {
	name  string
	calls int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	s.calls++
	return &Response{Text: "from " + s.name, Provider: s.name}, nil
}

func TestClientRoutesToNamedProvider(t *testing.T) {
	a := &stubAdapter{name: "anthropic"}
	o := &stubAdapter{name: "openai"}
	client := NewClient(
		WithProvider("anthropic", a),
		WithProvider("openai", o),
	)

	resp, err := client.Complete(context.Background(), Request{Provider: "openai"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "from openai" {
		t.Errorf("Text = %q", resp.Text)
	}
	if a.calls != 0 || o.calls != 1 {
		t.Errorf("calls = anthropic:%d openai:%d, want 0/1", a.calls, o.calls)
	}
}

func TestClientFirstProviderIsDefault(t *testing.T) {
	a := &stubAdapter{name: "anthropic"}
	client := NewClient(WithProvider("anthropic", a))

	if _, err := client.Complete(context.Background(), Request{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if a.calls != 1 {
		t.Errorf("calls = %d, want 1", a.calls)
	}
}

func TestClientUnknownProvider(t *testing.T) {
	client := NewClient()
	_, err := client.Complete(context.Background(), Request{Provider: "nope"})

	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %T, want *ConfigurationError", err)
	}
}
