package main

import (
	"github.com/gin-gonic/gin"

	"github.com/mediwise/carehub/internal/middleware"
	"github.com/mediwise/carehub/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for completion routes; provider calls are expensive.
	completionLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// AI status and providers
		ai := api.Group("/ai")
		{
			ai.GET("/status", svc.aiHandler.GetStatus)
			ai.GET("/providers", svc.aiHandler.ListProviders)
			ai.POST("/providers/:name/test", svc.aiHandler.TestProvider)
			ai.PUT("/providers/:name/key", svc.settingsHandler.UpdateProviderKey)

			// Use cases
			ai.GET("/use-cases", svc.aiHandler.GetUseCases)
			ai.GET("/use-cases/:name", svc.aiHandler.GetUseCaseConfig)
			ai.PUT("/use-cases/:name", svc.settingsHandler.UpdateUseCaseConfig)
			ai.POST("/use-cases/:name/execute", completionLimiter.Middleware(), svc.aiHandler.ExecuteUseCase)

			// Direct chat
			ai.POST("/chat", completionLimiter.Middleware(), svc.aiHandler.Chat)

			// Usage statistics
			ai.GET("/usage/stats", svc.usageHandler.GetStats)
			ai.GET("/usage/trend", svc.usageHandler.GetDailyTrend)
			ai.GET("/usage/providers", svc.usageHandler.GetProviderBreakdown)
		}

		// Settings
		api.GET("/settings/:group", svc.settingsHandler.GetGroup)
		api.PUT("/settings/:group", svc.settingsHandler.UpdateGroup)
		api.POST("/settings-cache/flush", svc.settingsHandler.FlushCache)
	}
}
