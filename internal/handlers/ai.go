package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mediwise/carehub/internal/ai"
	"github.com/mediwise/carehub/internal/services"
	"github.com/mediwise/carehub/pkg/response"
)

// AIHandler exposes the AI feature surface: status, provider management,
// use-case execution and direct chat.
type AIHandler struct {
	aiService *services.AIService
	manager   *ai.Manager
}

func NewAIHandler(aiService *services.AIService, manager *ai.Manager) *AIHandler {
	return &AIHandler{aiService: aiService, manager: manager}
}

// GetStatus reports the global toggle, provider readiness and per-use-case
// enablement in one call, for the settings screen.
func (h *AIHandler) GetStatus(c *gin.Context) {
	providers := gin.H{}
	for _, name := range h.manager.Names() {
		providers[name] = gin.H{
			"configured": h.aiService.IsProviderConfigured(name),
		}
	}

	useCases := gin.H{}
	for _, info := range services.UseCaseCatalog {
		cfg := h.aiService.GetUseCaseConfig(info.Name)
		useCases[info.Name] = gin.H{
			"enabled":  cfg.Enabled,
			"provider": cfg.Provider,
		}
	}

	response.Success(c, gin.H{
		"enabled":   h.aiService.IsEnabled(),
		"providers": providers,
		"use_cases": useCases,
	})
}

// ListProviders returns each registered provider with its readiness and
// model catalog.
func (h *AIHandler) ListProviders(c *gin.Context) {
	type providerInfo struct {
		Name       string            `json:"name"`
		Configured bool              `json:"configured"`
		Models     map[string]string `json:"models"`
	}

	var providers []providerInfo
	for _, name := range h.manager.Names() {
		provider, err := h.manager.Provider(name)
		if err != nil {
			continue
		}
		providers = append(providers, providerInfo{
			Name:       name,
			Configured: provider.IsConfigured(),
			Models:     provider.AvailableModels(),
		})
	}
	response.Success(c, providers)
}

// TestProvider issues a minimal completion against one provider to verify
// the stored API key.
func (h *AIHandler) TestProvider(c *gin.Context) {
	result := h.aiService.TestProvider(c.Request.Context(), c.Param("name"))
	response.Success(c, result)
}

// GetUseCases returns the catalog merged with each use case's stored
// configuration.
func (h *AIHandler) GetUseCases(c *gin.Context) {
	type useCaseEntry struct {
		services.UseCaseInfo
		Config services.UseCaseConfig `json:"config"`
	}

	entries := make([]useCaseEntry, 0, len(services.UseCaseCatalog))
	for _, info := range services.UseCaseCatalog {
		entries = append(entries, useCaseEntry{
			UseCaseInfo: info,
			Config:      h.aiService.GetUseCaseConfig(info.Name),
		})
	}
	response.Success(c, entries)
}

// GetUseCaseConfig returns one use case's effective configuration.
func (h *AIHandler) GetUseCaseConfig(c *gin.Context) {
	response.Success(c, h.aiService.GetUseCaseConfig(c.Param("name")))
}

type executeUseCaseRequest struct {
	Message  string           `json:"message" binding:"required"`
	Context  []ai.ChatMessage `json:"context"`
	JSONMode bool             `json:"json_mode"`
}

// ExecuteUseCase runs a chat completion under a named use case's policy.
// Gating failures come back as a failed result with HTTP 200; the caller
// distinguishes outcomes by the success flag.
func (h *AIHandler) ExecuteUseCase(c *gin.Context) {
	var req executeUseCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	name := c.Param("name")
	var result *ai.Result
	if req.JSONMode {
		result = h.aiService.ExecuteForUseCaseJSON(c.Request.Context(), name, req.Message, req.Context)
	} else {
		result = h.aiService.ExecuteForUseCase(c.Request.Context(), name, req.Message, req.Context)
	}
	response.Success(c, result)
}

type chatRequest struct {
	Provider string           `json:"provider" binding:"required"`
	Messages []ai.ChatMessage `json:"messages" binding:"required"`
	Model    string           `json:"model"`
	// Pointer so an explicit temperature of 0 survives to the provider.
	Temperature *float64 `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	JSONMode    bool     `json:"json_mode"`
}

// Chat dispatches a raw completion to a named provider.
func (h *AIHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result := h.aiService.Chat(c.Request.Context(), req.Provider, req.Messages, ai.ChatOptions{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		JSONMode:    req.JSONMode,
	})
	response.Success(c, result)
}
