package main

import (
	"github.com/robfig/cron/v3"

	"github.com/mediwise/carehub/internal/ai"
	"github.com/mediwise/carehub/internal/cache"
	"github.com/mediwise/carehub/internal/config"
	"github.com/mediwise/carehub/internal/handlers"
	"github.com/mediwise/carehub/internal/models"
	"github.com/mediwise/carehub/internal/services"
	"github.com/mediwise/carehub/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	settingsService *services.SettingsService
	aiService       *services.AIService
	usageService    *services.AIUsageService
	manager         *ai.Manager
	retentionCron   *cron.Cron

	healthHandler   *handlers.HealthHandler
	aiHandler       *handlers.AIHandler
	settingsHandler *handlers.SettingsHandler
	usageHandler    *handlers.AIUsageHandler
}

// bootstrap initializes all application dependencies: database, cache,
// services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default settings")
	}

	// Settings cache: Redis when configured, in-process memory otherwise.
	var store cache.Cache
	cacheName := "memory"
	if cfg.Cache.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, falling back to memory cache")
		} else {
			store = redisCache
			cacheName = "redis"
		}
	}
	if store == nil {
		store = cache.NewMemoryCache()
	}

	settingsService := services.NewSettingsService(models.GetDB(), store, cfg.Encryption.Secret)
	manager := ai.NewManager(settingsService)
	usageService := services.NewAIUsageService(models.GetDB(), settingsService)
	aiService := services.NewAIService(settingsService, manager, usageService)

	retentionCron := usageService.StartRetentionScheduler()

	return &appServices{
		settingsService: settingsService,
		aiService:       aiService,
		usageService:    usageService,
		manager:         manager,
		retentionCron:   retentionCron,
		healthHandler:   handlers.NewHealthHandler(models.GetDB(), cacheName),
		aiHandler:       handlers.NewAIHandler(aiService, manager),
		settingsHandler: handlers.NewSettingsHandler(settingsService),
		usageHandler:    handlers.NewAIUsageHandler(usageService),
	}
}

func (s *appServices) shutdown() {
	if s.retentionCron != nil {
		s.retentionCron.Stop()
	}
}
