// Package ai contains the chat-completion provider abstraction and the
// registry that resolves provider names to configured implementations.
package ai

import "context"

// Chat message roles shared by all providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SettingsGetter is the minimal settings surface providers need, so this
// package does not import the services package.
type SettingsGetter interface {
	Get(key, defaultValue string) string
}

// ChatMessage is a provider-agnostic role/content pair.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tunes a single chat call. Unset fields fall back to the
// provider defaults: nil Temperature means 0.7, zero MaxTokens means
// 2048, empty Model means the provider's configured default. An explicit
// Temperature of 0 requests deterministic output and is honored.
type ChatOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
	JSONMode    bool
}

// MediaAttachment is a base64-encoded file blob for multimodal calls.
type MediaAttachment struct {
	MimeType string
	Data     string
}

// Result is the normalized outcome of any provider call. Exactly one of
// the two states holds: Success with Content, or failure with Error.
type Result struct {
	Success          bool    `json:"success"`
	Content          string  `json:"content,omitempty"`
	Error            string  `json:"error,omitempty"`
	Model            string  `json:"model,omitempty"`
	PromptTokens     int     `json:"prompt_tokens,omitempty"`
	CompletionTokens int     `json:"completion_tokens,omitempty"`
	ResponseTime     float64 `json:"response_time_seconds,omitempty"`
}

// Failure builds a failed Result with the given message.
func Failure(message string) *Result {
	return &Result{Success: false, Error: message}
}

// Provider is a concrete integration with one chat-completion API.
// Chat and ChatWithMedia never return Go errors: every transport or
// upstream failure is folded into a failed Result.
type Provider interface {
	Name() string
	IsConfigured() bool
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) *Result
	ChatWithMedia(ctx context.Context, messages []ChatMessage, media MediaAttachment, opts ChatOptions) *Result
	TestConnection(ctx context.Context) *Result
	AvailableModels() map[string]string
}

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2048
)

func (o ChatOptions) temperature() float64 {
	if o.Temperature != nil {
		return *o.Temperature
	}
	return defaultTemperature
}

func (o ChatOptions) maxTokens() int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return defaultMaxTokens
}
