// ABOUTME: Client with provider routing for the policy-service SDK.
// ABOUTME: Provides NewClient with functional options and per-request provider selection.

package llm

import (
	"context"
	"fmt"
)

// ProviderAdapter is the interface all policy provider adapters implement.
type ProviderAdapter interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Client routes completion requests to a registered provider adapter.
type Client struct {
	providers       map[string]ProviderAdapter
	defaultProvider string
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithProvider registers a ProviderAdapter under the given name. The first
// registered provider becomes the default unless one is set explicitly.
func WithProvider(name string, adapter ProviderAdapter) ClientOption {
	return func(c *Client) {
		c.providers[name] = adapter
		if c.defaultProvider == "" {
			c.defaultProvider = name
		}
	}
}

// WithDefaultProvider sets the provider used when a Request does not name one.
func WithDefaultProvider(name string) ClientOption {
	return func(c *Client) {
		c.defaultProvider = name
	}
}

// NewClient creates a Client with the given options applied.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		providers: make(map[string]ProviderAdapter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete routes the request to the named (or default) provider adapter.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	name := req.Provider
	if name == "" {
		name = c.defaultProvider
	}
	adapter, ok := c.providers[name]
	if !ok {
		return nil, &ConfigurationError{
			SDKError: SDKError{Message: fmt.Sprintf("no provider registered under %q", name)},
		}
	}
	return adapter.Complete(ctx, req)
}
