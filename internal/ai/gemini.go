package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/mediwise/carehub/pkg/logger"
)

const (
	geminiFallbackModel = "gemini-2.0-flash"

	geminiTimeout     = 90 * time.Second
	geminiJSONTimeout = 120 * time.Second
	geminiPingTimeout = 30 * time.Second
)

// Gemini's role vocabulary: "user" and "model" (not "assistant").
const (
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

var geminiModels = map[string]string{
	"gemini-2.0-flash":      "Gemini 2.0 Flash",
	"gemini-2.0-flash-lite": "Gemini 2.0 Flash Lite",
	"gemini-1.5-pro":        "Gemini 1.5 Pro",
	"gemini-1.5-flash":      "Gemini 1.5 Flash",
}

// GeminiProvider calls Google's Gemini generateContent API.
type GeminiProvider struct {
	settings SettingsGetter
}

func NewGeminiProvider(settings SettingsGetter) *GeminiProvider {
	return &GeminiProvider{settings: settings}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) IsConfigured() bool {
	return p.settings.Get("ai_gemini_api_key", "") != ""
}

func (p *GeminiProvider) AvailableModels() map[string]string {
	return geminiModels
}

func (p *GeminiProvider) defaultModel() string {
	return p.settings.Get("ai_gemini_default_model", geminiFallbackModel)
}

// toGeminiContents translates the universal message list into Gemini's
// contents shape. Gemini has no system role: system text is folded into
// the start of the first user turn, and the assistant role becomes "model".
func toGeminiContents(messages []ChatMessage) []*genai.Content {
	var systemParts []string
	for _, m := range messages {
		if m.Role == RoleSystem {
			systemParts = append(systemParts, m.Content)
		}
	}
	systemText := strings.Join(systemParts, "\n\n")

	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			continue
		case RoleUser:
			text := m.Content
			if systemText != "" {
				text = systemText + "\n\n" + text
				systemText = ""
			}
			contents = append(contents, &genai.Content{
				Role:  geminiRoleUser,
				Parts: []*genai.Part{{Text: text}},
			})
		case RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  geminiRoleModel,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}

	// System prompt with no user turn to fold into
	if systemText != "" {
		contents = append(contents, &genai.Content{
			Role:  geminiRoleUser,
			Parts: []*genai.Part{{Text: systemText}},
		})
	}

	return contents
}

func (p *GeminiProvider) Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) *Result {
	timeout := geminiTimeout
	if opts.JSONMode {
		timeout = geminiJSONTimeout
	}
	return p.generate(ctx, toGeminiContents(messages), opts, timeout)
}

// ChatWithMedia attaches a base64-encoded blob alongside the concatenated
// user-turn text in a single user content.
func (p *GeminiProvider) ChatWithMedia(ctx context.Context, messages []ChatMessage, media MediaAttachment, opts ChatOptions) *Result {
	data, err := base64.StdEncoding.DecodeString(media.Data)
	if err != nil {
		return Failure("Invalid media attachment: " + err.Error())
	}

	var texts []string
	for _, m := range messages {
		if m.Role == RoleSystem || m.Role == RoleUser {
			texts = append(texts, m.Content)
		}
	}

	content := &genai.Content{
		Role: geminiRoleUser,
		Parts: []*genai.Part{
			{Text: strings.Join(texts, "\n\n")},
			{InlineData: &genai.Blob{MIMEType: media.MimeType, Data: data}},
		},
	}

	timeout := geminiTimeout
	if opts.JSONMode {
		timeout = geminiJSONTimeout
	}
	return p.generate(ctx, []*genai.Content{content}, opts, timeout)
}

func (p *GeminiProvider) TestConnection(ctx context.Context) *Result {
	contents := toGeminiContents([]ChatMessage{{Role: RoleUser, Content: "ping"}})
	return p.generate(ctx, contents, ChatOptions{MaxTokens: 10}, geminiPingTimeout)
}

func (p *GeminiProvider) generate(ctx context.Context, contents []*genai.Content, opts ChatOptions, timeout time.Duration) *Result {
	model := opts.Model
	if model == "" {
		model = p.defaultModel()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: p.settings.Get("ai_gemini_api_key", ""),
	})
	if err != nil {
		logger.Errorf("[AI] Gemini client error: %v", err)
		return &Result{Success: false, Error: "Connection failed: " + err.Error(), Model: model}
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     float32Ptr(float32(opts.temperature())),
		MaxOutputTokens: int32(opts.maxTokens()),
	}
	if opts.JSONMode {
		genConfig.ResponseMIMEType = "application/json"
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, genConfig)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			message := apiErr.Message
			if message == "" {
				message = "Unknown error"
			}
			logger.Warnf("[AI] Gemini API error (status %d): %s", apiErr.Code, message)
			return &Result{Success: false, Error: message, Model: model, ResponseTime: elapsed}
		}
		logger.Errorf("[AI] Gemini connection failed: %v", err)
		return &Result{Success: false, Error: "Connection failed: " + err.Error(), Model: model, ResponseTime: elapsed}
	}

	content := resp.Text()
	if content == "" {
		logger.Warnf("[AI] Gemini returned no candidates for model %s", model)
		return &Result{Success: false, Error: "Unknown error", Model: model, ResponseTime: elapsed}
	}

	result := &Result{
		Success:      true,
		Content:      content,
		Model:        model,
		ResponseTime: elapsed,
	}
	if resp.UsageMetadata != nil {
		result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return result
}

func float32Ptr(v float32) *float32 { return &v }
