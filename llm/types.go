// ABOUTME: Core data model for the policy-service client: messages, content parts, requests, responses.
// ABOUTME: Only the shapes the gamepilot decision engine needs: text and image content, no tool calling.

package llm

import "time"

// Role represents who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentKind discriminates the type of content in a ContentPart.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
)

// ImageData holds image content as raw bytes plus a media type.
type ImageData struct {
	Data      []byte `json:"data,omitempty"`
	MediaType string `json:"media_type,omitempty"`
}

// ContentPart is a single piece of content within a message.
// The Kind field determines which data field is populated.
type ContentPart struct {
	Kind  ContentKind `json:"kind"`
	Text  string      `json:"text,omitempty"`
	Image *ImageData  `json:"image,omitempty"`
}

// TextPart creates a text ContentPart.
func TextPart(text string) ContentPart {
	return ContentPart{Kind: ContentText, Text: text}
}

// ImagePart creates an image ContentPart from raw bytes.
func ImagePart(data []byte, mediaType string) ContentPart {
	return ContentPart{Kind: ContentImage, Image: &ImageData{Data: data, MediaType: mediaType}}
}

// Message is a single conversation message with a role and one or more content parts.
type Message struct {
	Role    Role          `json:"role"`
	Content []ContentPart `json:"content"`
}

// SystemMessage creates a system message with a single text part.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: []ContentPart{TextPart(text)}}
}

// UserMessage creates a user message from the given content parts.
func UserMessage(parts ...ContentPart) Message {
	return Message{Role: RoleUser, Content: parts}
}

// Request is a unified completion request routed to a provider adapter.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Provider    string    `json:"provider,omitempty"`
}

// Usage reports token accounting for a completed request.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the unified result of a completion request.
type Response struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Text      string    `json:"text"`
	Usage     Usage     `json:"usage"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// RateLimitInfo carries rate limit state parsed from provider response headers.
type RateLimitInfo struct {
	RequestsRemaining *int
	TokensRemaining   *int
	RetryAfter        *float64
}
