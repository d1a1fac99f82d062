package ai

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/mediwise/carehub/pkg/logger"
)

const (
	groqBaseURL       = "https://api.groq.com/openai/v1"
	groqFallbackModel = "llama-3.3-70b-versatile"

	groqTimeout     = 60 * time.Second
	groqJSONTimeout = 120 * time.Second
	groqPingTimeout = 30 * time.Second
)

// groqModels maps supported model identifiers to display names. Used for
// configuration UIs only; the model option is never validated against it.
var groqModels = map[string]string{
	"llama-3.3-70b-versatile": "Llama 3.3 70B Versatile",
	"llama-3.1-8b-instant":    "Llama 3.1 8B Instant",
	"mixtral-8x7b-32768":      "Mixtral 8x7B",
	"gemma2-9b-it":            "Gemma 2 9B",
}

// GroqProvider calls Groq's OpenAI-compatible chat completions API.
type GroqProvider struct {
	settings SettingsGetter
}

func NewGroqProvider(settings SettingsGetter) *GroqProvider {
	return &GroqProvider{settings: settings}
}

func (p *GroqProvider) Name() string { return "groq" }

// IsConfigured reports whether an API key is present. No network call is
// made to verify the key.
func (p *GroqProvider) IsConfigured() bool {
	return p.settings.Get("ai_groq_api_key", "") != ""
}

func (p *GroqProvider) AvailableModels() map[string]string {
	return groqModels
}

func (p *GroqProvider) defaultModel() string {
	return p.settings.Get("ai_groq_default_model", groqFallbackModel)
}

// toGroqMessages translates the universal message list into the
// OpenAI-compatible shape. Roles map one to one.
func toGroqMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}

func (p *GroqProvider) Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) *Result {
	model := opts.Model
	if model == "" {
		model = p.defaultModel()
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toGroqMessages(messages),
		Temperature: float32(opts.temperature()),
		MaxTokens:   opts.maxTokens(),
	}

	timeout := groqTimeout
	if opts.JSONMode {
		// Structured output takes longer to generate
		timeout = groqJSONTimeout
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	return p.complete(ctx, req, timeout)
}

// ChatWithMedia is not supported by Groq's chat completions endpoint.
func (p *GroqProvider) ChatWithMedia(_ context.Context, _ []ChatMessage, _ MediaAttachment, _ ChatOptions) *Result {
	return Failure("Provider 'groq' does not support media attachments.")
}

func (p *GroqProvider) TestConnection(ctx context.Context) *Result {
	req := openai.ChatCompletionRequest{
		Model:     p.defaultModel(),
		Messages:  toGroqMessages([]ChatMessage{{Role: RoleUser, Content: "ping"}}),
		MaxTokens: 10,
	}
	return p.complete(ctx, req, groqPingTimeout)
}

func (p *GroqProvider) complete(ctx context.Context, req openai.ChatCompletionRequest, timeout time.Duration) *Result {
	clientConfig := openai.DefaultConfig(p.settings.Get("ai_groq_api_key", ""))
	clientConfig.BaseURL = groqBaseURL
	client := openai.NewClientWithConfig(clientConfig)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, req)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			message := apiErr.Message
			if message == "" {
				message = "Unknown error"
			}
			logger.Warnf("[AI] Groq API error (status %d): %s", apiErr.HTTPStatusCode, message)
			return &Result{Success: false, Error: message, Model: req.Model, ResponseTime: elapsed}
		}
		logger.Errorf("[AI] Groq connection failed: %v", err)
		return &Result{Success: false, Error: "Connection failed: " + err.Error(), Model: req.Model, ResponseTime: elapsed}
	}

	if len(resp.Choices) == 0 {
		logger.Warnf("[AI] Groq returned no choices for model %s", req.Model)
		return &Result{Success: false, Error: "Unknown error", Model: req.Model, ResponseTime: elapsed}
	}

	return &Result{
		Success:          true,
		Content:          resp.Choices[0].Message.Content,
		Model:            req.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		ResponseTime:     elapsed,
	}
}
