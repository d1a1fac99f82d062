package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediwise/carehub/internal/services"
	"github.com/mediwise/carehub/pkg/response"
)

// AIUsageHandler serves AI usage statistics for the admin dashboard.
type AIUsageHandler struct {
	usageService *services.AIUsageService
}

func NewAIUsageHandler(usageService *services.AIUsageService) *AIUsageHandler {
	return &AIUsageHandler{usageService: usageService}
}

func windowDays(c *gin.Context) int {
	days := 30
	if raw := c.Query("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}
	return days
}

// GetStats returns aggregated usage over the requested window.
func (h *AIUsageHandler) GetStats(c *gin.Context) {
	days := windowDays(c)
	stats, err := h.usageService.GetStats(time.Now().AddDate(0, 0, -days))
	if err != nil {
		response.ServerError(c, "failed to get AI usage stats: "+err.Error())
		return
	}
	response.Success(c, stats)
}

// GetDailyTrend returns per-day usage counts for charting.
func (h *AIUsageHandler) GetDailyTrend(c *gin.Context) {
	trend, err := h.usageService.GetDailyTrend(windowDays(c))
	if err != nil {
		response.ServerError(c, "failed to get AI usage trend: "+err.Error())
		return
	}
	response.Success(c, trend)
}

// GetProviderBreakdown returns usage grouped by provider.
func (h *AIUsageHandler) GetProviderBreakdown(c *gin.Context) {
	days := windowDays(c)
	providers, err := h.usageService.GetProviderBreakdown(time.Now().AddDate(0, 0, -days))
	if err != nil {
		response.ServerError(c, "failed to get provider breakdown: "+err.Error())
		return
	}
	response.Success(c, providers)
}
