package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/mediwise/carehub/internal/models"
	"github.com/mediwise/carehub/pkg/logger"
)

// usageEntry is the write-side view of one dispatch outcome.
type usageEntry struct {
	RequestID        string
	UseCase          string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMs        int64
	Success          bool
	ErrorMessage     string
}

// AIUsageService records per-request AI usage and serves aggregate
// statistics. Writes happen off the request path so a slow database
// never delays a chat response.
type AIUsageService struct {
	db       *gorm.DB
	settings *SettingsService
}

func NewAIUsageService(db *gorm.DB, settings *SettingsService) *AIUsageService {
	return &AIUsageService{db: db, settings: settings}
}

// Record persists one usage entry asynchronously.
func (s *AIUsageService) Record(entry *usageEntry) {
	go func() {
		log := models.AIUsageLog{
			RequestID:        entry.RequestID,
			UseCase:          entry.UseCase,
			Provider:         entry.Provider,
			Model:            entry.Model,
			PromptTokens:     entry.PromptTokens,
			CompletionTokens: entry.CompletionTokens,
			TotalTokens:      entry.PromptTokens + entry.CompletionTokens,
			LatencyMs:        entry.LatencyMs,
			Success:          entry.Success,
			ErrorMessage:     entry.ErrorMessage,
		}
		if err := s.db.Create(&log).Error; err != nil {
			logger.Errorf("[AIUsage] Failed to record usage: %v", err)
		}
	}()
}

// UsageStats aggregates usage over a window.
type UsageStats struct {
	TotalRequests   int64   `json:"total_requests"`
	SuccessfulCount int64   `json:"successful_count"`
	FailedCount     int64   `json:"failed_count"`
	TotalTokens     int64   `json:"total_tokens"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	SuccessRate     float64 `json:"success_rate"`
}

// GetStats aggregates usage since the given time.
func (s *AIUsageService) GetStats(since time.Time) (*UsageStats, error) {
	var stats UsageStats

	if err := s.db.Model(&models.AIUsageLog{}).
		Where("created_at >= ?", since).
		Count(&stats.TotalRequests).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.AIUsageLog{}).
		Where("created_at >= ? AND success = ?", since, true).
		Count(&stats.SuccessfulCount).Error; err != nil {
		return nil, err
	}
	stats.FailedCount = stats.TotalRequests - stats.SuccessfulCount

	row := struct {
		TotalTokens  int64
		AvgLatencyMs float64
	}{}
	if err := s.db.Model(&models.AIUsageLog{}).
		Where("created_at >= ?", since).
		Select("COALESCE(SUM(total_tokens), 0) AS total_tokens, COALESCE(AVG(latency_ms), 0) AS avg_latency_ms").
		Scan(&row).Error; err != nil {
		return nil, err
	}
	stats.TotalTokens = row.TotalTokens
	stats.AvgLatencyMs = row.AvgLatencyMs

	if stats.TotalRequests > 0 {
		stats.SuccessRate = float64(stats.SuccessfulCount) / float64(stats.TotalRequests) * 100
	}
	return &stats, nil
}

// ProviderUsage is one row of the per-provider breakdown.
type ProviderUsage struct {
	Provider    string `json:"provider"`
	Requests    int64  `json:"requests"`
	TotalTokens int64  `json:"total_tokens"`
}

// GetProviderBreakdown groups usage by provider since the given time.
func (s *AIUsageService) GetProviderBreakdown(since time.Time) ([]ProviderUsage, error) {
	var rows []ProviderUsage
	err := s.db.Model(&models.AIUsageLog{}).
		Where("created_at >= ?", since).
		Select("provider, COUNT(*) AS requests, COALESCE(SUM(total_tokens), 0) AS total_tokens").
		Group("provider").
		Order("requests DESC").
		Scan(&rows).Error
	return rows, err
}

// DailyUsage is one day of the usage trend.
type DailyUsage struct {
	Date     string `json:"date"`
	Requests int64  `json:"requests"`
	Tokens   int64  `json:"tokens"`
}

// GetDailyTrend returns per-day request and token counts for the last
// N days.
func (s *AIUsageService) GetDailyTrend(days int) ([]DailyUsage, error) {
	since := time.Now().AddDate(0, 0, -days)
	var rows []DailyUsage
	err := s.db.Model(&models.AIUsageLog{}).
		Where("created_at >= ?", since).
		Select("DATE(created_at) AS date, COUNT(*) AS requests, COALESCE(SUM(total_tokens), 0) AS tokens").
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// CleanupBefore deletes usage logs older than the cutoff and returns
// the number of rows removed.
func (s *AIUsageService) CleanupBefore(cutoff time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AIUsageLog{})
	return result.RowsAffected, result.Error
}

// RunRetentionCleanup applies the configured retention window. A
// non-positive setting disables cleanup.
func (s *AIUsageService) RunRetentionCleanup() {
	days := s.settings.GetInt("usage_log_retention_days", 90)
	if days <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	removed, err := s.CleanupBefore(cutoff)
	if err != nil {
		logger.Errorf("[AIUsage] Retention cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		logger.Infof("[AIUsage] Retention cleanup removed %d usage logs older than %d days", removed, days)
	}
}

// StartRetentionScheduler runs the retention cleanup daily at 03:30.
// The returned cron is already started; stop it on shutdown.
func (s *AIUsageService) StartRetentionScheduler() *cron.Cron {
	c := cron.New()
	if _, err := c.AddFunc("30 3 * * *", s.RunRetentionCleanup); err != nil {
		logger.Errorf("[AIUsage] Failed to schedule retention cleanup: %v", err)
		return c
	}
	c.Start()
	logger.Infof("[AIUsage] Retention cleanup scheduled daily at 03:30")
	return c
}
