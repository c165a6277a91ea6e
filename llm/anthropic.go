// ABOUTME: Anthropic provider adapter translating unified requests to the Messages API (/v1/messages).
// ABOUTME: Sends the captured frame as a base64 PNG image block alongside the condition text.

package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicDefaultVersion = "2023-06-01"
	anthropicDefaultMaxToks = 4096
)

// AnthropicAdapter implements ProviderAdapter for the Anthropic Messages API.
type AnthropicAdapter struct {
	apiKey     string
	baseURL    string
	version    string
	httpClient *http.Client
}

// AnthropicOption is a functional option for configuring an AnthropicAdapter.
type AnthropicOption func(*AnthropicAdapter)

// WithAnthropicBaseURL overrides the default Anthropic API base URL.
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(a *AnthropicAdapter) {
		a.baseURL = url
	}
}

// WithAnthropicTimeout sets the HTTP request timeout.
func WithAnthropicTimeout(timeout time.Duration) AnthropicOption {
	return func(a *AnthropicAdapter) {
		a.httpClient = &http.Client{Timeout: timeout}
	}
}

// WithAnthropicVersion sets the anthropic-version header value.
func WithAnthropicVersion(version string) AnthropicOption {
	return func(a *AnthropicAdapter) {
		a.version = version
	}
}

// NewAnthropicAdapter creates an AnthropicAdapter with the given API key.
// Authentication uses the x-api-key header, not Bearer auth.
func NewAnthropicAdapter(apiKey string, opts ...AnthropicOption) *AnthropicAdapter {
	adapter := &AnthropicAdapter{
		apiKey:     apiKey,
		baseURL:    anthropicDefaultBaseURL,
		version:    anthropicDefaultVersion,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter
}

// Name returns the provider name "anthropic".
func (a *AnthropicAdapter) Name() string {
	return "anthropic"
}

// Complete sends a synchronous completion request to the Anthropic Messages API.
func (a *AnthropicAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	body := a.buildRequestBody(req)

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", a.version)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "anthropic request failed", Cause: err}}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, a.parseError(resp.StatusCode, respBody, resp.Header)
	}

	return a.parseResponse(respBody)
}

// buildRequestBody translates a unified Request into the Anthropic wire format.
// System messages are lifted into the top-level system field.
func (a *AnthropicAdapter) buildRequestBody(req Request) map[string]any {
	body := map[string]any{
		"model": req.Model,
	}

	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	} else {
		body["max_tokens"] = anthropicDefaultMaxToks
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}

	var system string
	messages := make([]map[string]any, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			for _, part := range msg.Content {
				if part.Kind == ContentText {
					if system != "" {
						system += "\n\n"
					}
					system += part.Text
				}
			}
			continue
		}
		messages = append(messages, map[string]any{
			"role":    string(msg.Role),
			"content": a.translateContentParts(msg.Content),
		})
	}

	if system != "" {
		body["system"] = system
	}
	body["messages"] = messages

	return body
}

// translateContentParts converts unified content parts to Anthropic content blocks.
func (a *AnthropicAdapter) translateContentParts(parts []ContentPart) []map[string]any {
	blocks := make([]map[string]any, 0, len(parts))
	for _, part := range parts {
		switch part.Kind {
		case ContentText:
			blocks = append(blocks, map[string]any{
				"type": "text",
				"text": part.Text,
			})
		case ContentImage:
			if part.Image != nil {
				blocks = append(blocks, map[string]any{
					"type": "image",
					"source": map[string]any{
						"type":       "base64",
						"media_type": part.Image.MediaType,
						"data":       base64.StdEncoding.EncodeToString(part.Image.Data),
					},
				})
			}
		}
	}
	return blocks
}

// anthropicResponse mirrors the subset of the Messages API response we consume.
type anthropicResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// parseResponse converts an Anthropic response body into a unified Response,
// concatenating all text content blocks.
func (a *AnthropicAdapter) parseResponse(body []byte) (*Response, error) {
	var ar anthropicResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return nil, fmt.Errorf("decoding anthropic response: %w", err)
	}

	var text string
	for _, block := range ar.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &Response{
		ID:    ar.ID,
		Model: ar.Model,
		Text:  text,
		Usage: Usage{
			InputTokens:  ar.Usage.InputTokens,
			OutputTokens: ar.Usage.OutputTokens,
		},
		Provider:  "anthropic",
		CreatedAt: time.Now(),
	}, nil
}

// anthropicErrorResponse mirrors the Messages API error envelope.
type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseError maps an Anthropic error response onto the SDK error hierarchy.
// A retry-after header, when present, is attached as a backoff hint.
func (a *AnthropicAdapter) parseError(statusCode int, body []byte, headers http.Header) error {
	var retryAfter *float64
	if v := headers.Get("retry-after"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			retryAfter = &secs
		}
	}

	var errResp anthropicErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return ErrorFromStatusCode(statusCode, fmt.Sprintf("HTTP %d", statusCode), "anthropic", "", json.RawMessage(body), retryAfter)
	}

	return ErrorFromStatusCode(
		statusCode,
		errResp.Error.Message,
		"anthropic",
		errResp.Error.Type,
		json.RawMessage(body),
		retryAfter,
	)
}
