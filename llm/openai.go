// ABOUTME: OpenAI provider adapter built on the official openai-go SDK (Chat Completions).
// ABOUTME: Supports custom base URLs for OpenAI-compatible services; frames travel as data-URL image parts.

package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIAdapter implements ProviderAdapter using the OpenAI Chat Completions
// API (/v1/chat/completions), the endpoint supported by all OpenAI-compatible
// providers.
type OpenAIAdapter struct {
	client openai.Client
}

// NewOpenAIAdapter creates an OpenAIAdapter with the given API key. A non-empty
// baseURL redirects requests to an OpenAI-compatible service.
func NewOpenAIAdapter(apiKey, baseURL string) *OpenAIAdapter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIAdapter{
		client: openai.NewClient(opts...),
	}
}

// Name returns the provider name "openai".
func (o *OpenAIAdapter) Name() string {
	return "openai"
}

// Complete sends a synchronous completion request via the SDK.
func (o *OpenAIAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: translateOpenAIMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, translateOpenAIError(err)
	}

	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}

	return &Response{
		ID:    resp.ID,
		Model: resp.Model,
		Text:  text,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		Provider:  "openai",
		CreatedAt: time.Now(),
	}, nil
}

// translateOpenAIMessages converts unified messages to SDK message params.
// Images are embedded as base64 data URLs.
func translateOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			for _, part := range msg.Content {
				if part.Kind == ContentText {
					result = append(result, openai.SystemMessage(part.Text))
				}
			}
		case RoleAssistant:
			for _, part := range msg.Content {
				if part.Kind == ContentText {
					result = append(result, openai.AssistantMessage(part.Text))
				}
			}
		case RoleUser:
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(msg.Content))
			for _, part := range msg.Content {
				switch part.Kind {
				case ContentText:
					parts = append(parts, openai.TextContentPart(part.Text))
				case ContentImage:
					if part.Image != nil {
						dataURL := fmt.Sprintf("data:%s;base64,%s",
							part.Image.MediaType,
							base64.StdEncoding.EncodeToString(part.Image.Data))
						parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL: dataURL,
						}))
					}
				}
			}
			result = append(result, openai.UserMessage(parts))
		}
	}

	return result
}

// translateOpenAIError maps SDK errors onto the unified error hierarchy so
// the retry policy classifies them uniformly across providers.
func translateOpenAIError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return ErrorFromStatusCode(
			apierr.StatusCode,
			apierr.Message,
			"openai",
			apierr.Code,
			json.RawMessage(apierr.RawJSON()),
			nil,
		)
	}
	return &NetworkError{SDKError: SDKError{Message: "openai request failed", Cause: err}}
}
