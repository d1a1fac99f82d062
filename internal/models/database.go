package models

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mediwise/carehub/internal/config"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&Setting{},
		&AIUsageLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// defaultUseCaseConfig is the JSON seeded for each AI use case. Disabled
// until an administrator fills in provider keys and flips the switch.
const defaultUseCaseConfig = `{"enabled":false,"provider":"groq","model":"llama-3.3-70b-versatile","temperature":0.7,"max_tokens":2048,"system_prompt":""}`

// SeedDefaultData creates default settings if not exists.
func SeedDefaultData() error {
	defaults := []Setting{
		{Key: "ai_enabled", Value: "false", Type: SettingTypeBoolean, Group: "ai"},
		{Key: "ai_groq_api_key", Value: "", Type: SettingTypeString, Group: "ai", IsEncrypted: true},
		{Key: "ai_groq_default_model", Value: "llama-3.3-70b-versatile", Type: SettingTypeString, Group: "ai"},
		{Key: "ai_gemini_api_key", Value: "", Type: SettingTypeString, Group: "ai", IsEncrypted: true},
		{Key: "ai_gemini_default_model", Value: "gemini-2.0-flash", Type: SettingTypeString, Group: "ai"},
		{Key: "ai_usecase_discharge_reporting", Value: defaultUseCaseConfig, Type: SettingTypeJSON, Group: "ai"},
		{Key: "ai_usecase_therapy_reporting", Value: defaultUseCaseConfig, Type: SettingTypeJSON, Group: "ai"},
		{Key: "ai_usecase_incident_summary", Value: defaultUseCaseConfig, Type: SettingTypeJSON, Group: "ai"},
		{Key: "ai_usecase_report_generation", Value: defaultUseCaseConfig, Type: SettingTypeJSON, Group: "ai"},
		{Key: "usage_log_retention_days", Value: "90", Type: SettingTypeInteger, Group: "system"},
	}

	for _, setting := range defaults {
		var count int64
		DB.Model(&Setting{}).Where("`key` = ?", setting.Key).Count(&count)
		if count == 0 {
			if err := DB.Create(&setting).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
