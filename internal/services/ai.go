package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediwise/carehub/internal/ai"
	"github.com/mediwise/carehub/pkg/logger"
)

// ProviderResolver resolves a provider name to an implementation.
// Satisfied by ai.Manager; substituted in tests.
type ProviderResolver interface {
	Provider(name string) (ai.Provider, error)
}

// AIService maps business-meaningful use-case names to fully-resolved
// provider calls, enforcing the gate chain: global toggle, use-case
// enablement, provider readiness. It adds no success/failure semantics
// beyond gating: the provider's result is returned unmodified.
type AIService struct {
	settings  *SettingsService
	providers ProviderResolver
	usage     *AIUsageService
}

func NewAIService(settings *SettingsService, providers ProviderResolver, usage *AIUsageService) *AIService {
	return &AIService{settings: settings, providers: providers, usage: usage}
}

// IsEnabled reports the global AI toggle.
func (s *AIService) IsEnabled() bool {
	return s.settings.GetBool("ai_enabled", false)
}

// GetUseCaseConfig returns the stored policy for a use case, with
// defaults applied at the decode boundary. Unknown names yield the
// disabled baseline.
func (s *AIService) GetUseCaseConfig(useCase string) UseCaseConfig {
	raw := s.settings.Get("ai_usecase_"+useCase, "")
	return decodeUseCaseConfig(raw)
}

func (s *AIService) IsUseCaseEnabled(useCase string) bool {
	return s.GetUseCaseConfig(useCase).Enabled
}

// IsProviderConfigured reports whether the named provider holds an API
// key. Unknown provider names report false.
func (s *AIService) IsProviderConfigured(name string) bool {
	provider, err := s.providers.Provider(name)
	if err != nil {
		return false
	}
	return provider.IsConfigured()
}

// ExecuteForUseCase runs a chat completion under the named use case's
// policy. The composed message order is: optional system prompt, then
// extraMessages, then the user message.
func (s *AIService) ExecuteForUseCase(ctx context.Context, useCase, userMessage string, extraMessages []ai.ChatMessage) *ai.Result {
	return s.execute(ctx, useCase, userMessage, extraMessages, false)
}

// ExecuteForUseCaseJSON is ExecuteForUseCase in structured-output mode:
// the provider is instructed to emit a JSON document, and the default
// max_tokens is raised to 4096 when the use case leaves it unset.
func (s *AIService) ExecuteForUseCaseJSON(ctx context.Context, useCase, userMessage string, extraMessages []ai.ChatMessage) *ai.Result {
	return s.execute(ctx, useCase, userMessage, extraMessages, true)
}

const (
	plainModeMaxTokens = 2048
	jsonModeMaxTokens  = 4096
)

func (s *AIService) execute(ctx context.Context, useCase, userMessage string, extraMessages []ai.ChatMessage, jsonMode bool) *ai.Result {
	if !s.IsEnabled() {
		return ai.Failure("AI features are disabled.")
	}

	cfg := s.GetUseCaseConfig(useCase)
	if !cfg.Enabled {
		return ai.Failure(fmt.Sprintf("Use case '%s' is disabled.", useCase))
	}

	provider, err := s.providers.Provider(cfg.Provider)
	if err != nil {
		logger.Errorf("[AI] Use case %s references unknown provider %q", useCase, cfg.Provider)
		return ai.Failure(fmt.Sprintf("Unknown provider '%s' configured for use case '%s'.", cfg.Provider, useCase))
	}
	if !provider.IsConfigured() {
		return ai.Failure(fmt.Sprintf("Provider '%s' is not configured (missing API key).", cfg.Provider))
	}

	messages := composeMessages(cfg.SystemPrompt, extraMessages, userMessage)

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		if jsonMode {
			maxTokens = jsonModeMaxTokens
		} else {
			maxTokens = plainModeMaxTokens
		}
	}

	// Temperature was already defaulted at the decode boundary; pass it
	// explicitly so the provider never re-defaults an intentional 0.
	result := provider.Chat(ctx, messages, ai.ChatOptions{
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		MaxTokens:   maxTokens,
		JSONMode:    jsonMode,
	})

	s.recordUsage(useCase, cfg.Provider, result)
	return result
}

// composeMessages builds the provider message list in the fixed order:
// [optional system] + extra messages + final user message.
func composeMessages(systemPrompt string, extraMessages []ai.ChatMessage, userMessage string) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(extraMessages)+2)
	if systemPrompt != "" {
		messages = append(messages, ai.ChatMessage{Role: ai.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, extraMessages...)
	messages = append(messages, ai.ChatMessage{Role: ai.RoleUser, Content: userMessage})
	return messages
}

// Chat dispatches a raw chat completion to the named provider, bypassing
// use-case policy but still honoring the global toggle and provider
// readiness.
func (s *AIService) Chat(ctx context.Context, providerName string, messages []ai.ChatMessage, opts ai.ChatOptions) *ai.Result {
	if !s.IsEnabled() {
		return ai.Failure("AI features are disabled.")
	}
	provider, err := s.providers.Provider(providerName)
	if err != nil {
		return ai.Failure(fmt.Sprintf("Unknown provider '%s'.", providerName))
	}
	if !provider.IsConfigured() {
		return ai.Failure(fmt.Sprintf("Provider '%s' is not configured (missing API key).", providerName))
	}

	result := provider.Chat(ctx, messages, opts)
	s.recordUsage("", providerName, result)
	return result
}

// TestProvider issues a minimal completion against the named provider to
// verify connectivity and key validity.
func (s *AIService) TestProvider(ctx context.Context, providerName string) *ai.Result {
	provider, err := s.providers.Provider(providerName)
	if err != nil {
		return ai.Failure(fmt.Sprintf("Unknown provider '%s'.", providerName))
	}
	if !provider.IsConfigured() {
		return ai.Failure(fmt.Sprintf("Provider '%s' is not configured (missing API key).", providerName))
	}
	return provider.TestConnection(ctx)
}

func (s *AIService) recordUsage(useCase, providerName string, result *ai.Result) {
	if s.usage == nil {
		return
	}
	s.usage.Record(&usageEntry{
		RequestID:        uuid.NewString(),
		UseCase:          useCase,
		Provider:         providerName,
		Model:            result.Model,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		LatencyMs:        int64(result.ResponseTime * 1000),
		Success:          result.Success,
		ErrorMessage:     result.Error,
	})
}
