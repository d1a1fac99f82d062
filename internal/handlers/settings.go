package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mediwise/carehub/internal/models"
	"github.com/mediwise/carehub/internal/services"
	"github.com/mediwise/carehub/pkg/response"
)

// maskedValue replaces encrypted setting values in API responses. Clients
// send it back unchanged to mean "keep the stored secret".
const maskedValue = "********"

// SettingsHandler exposes grouped settings for the admin screens.
type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

type settingView struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Type        string `json:"type"`
	IsEncrypted bool   `json:"is_encrypted"`
}

// GetGroup returns all settings in a group. Encrypted values are masked;
// only their presence is revealed.
func (h *SettingsHandler) GetGroup(c *gin.Context) {
	settings, err := h.settingsService.GetGroup(c.Param("group"))
	if err != nil {
		response.ServerError(c, "failed to load settings: "+err.Error())
		return
	}

	views := make([]settingView, 0, len(settings))
	for _, s := range settings {
		view := settingView{Key: s.Key, Value: s.Value, Type: s.Type, IsEncrypted: s.IsEncrypted}
		if s.IsEncrypted && s.Value != "" {
			view.Value = maskedValue
		}
		views = append(views, view)
	}
	response.Success(c, views)
}

type updateSettingsRequest struct {
	Values map[string]interface{} `json:"values" binding:"required"`
}

// UpdateGroup writes a batch of settings into a group. Masked values are
// dropped so stored secrets survive a round trip through the UI.
func (h *SettingsHandler) UpdateGroup(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	for key, value := range req.Values {
		if s, ok := value.(string); ok && s == maskedValue {
			delete(req.Values, key)
		}
	}

	if err := h.settingsService.SetMany(req.Values, c.Param("group")); err != nil {
		response.ServerError(c, "failed to update settings: "+err.Error())
		return
	}
	response.Success(c, gin.H{"message": "settings updated successfully"})
}

type updateAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

// UpdateProviderKey stores a provider API key encrypted at rest. An empty
// key clears the stored credential.
func (h *SettingsHandler) UpdateProviderKey(c *gin.Context) {
	provider := c.Param("name")
	if provider != "groq" && provider != "gemini" {
		response.NotFound(c, "unknown provider")
		return
	}

	var req updateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.APIKey == maskedValue {
		response.Success(c, gin.H{"message": "api key unchanged"})
		return
	}

	key := "ai_" + provider + "_api_key"
	if err := h.settingsService.SetTyped(key, req.APIKey, "ai", models.SettingTypeString, true); err != nil {
		response.ServerError(c, "failed to store api key: "+err.Error())
		return
	}
	response.Success(c, gin.H{"message": "api key updated successfully"})
}

// FlushCache drops all cached settings, forcing rereads from the
// database. Useful after editing rows out of band.
func (h *SettingsHandler) FlushCache(c *gin.Context) {
	h.settingsService.InvalidateAll()
	response.Success(c, gin.H{"message": "settings cache flushed"})
}

// UpdateUseCaseConfig replaces one use case's stored policy.
func (h *SettingsHandler) UpdateUseCaseConfig(c *gin.Context) {
	var cfg services.UseCaseConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	key := "ai_usecase_" + c.Param("name")
	if err := h.settingsService.SetTyped(key, cfg, "ai", models.SettingTypeJSON, false); err != nil {
		response.ServerError(c, "failed to update use case: "+err.Error())
		return
	}
	response.Success(c, gin.H{"message": "use case updated successfully"})
}
