package services

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mediwise/carehub/internal/cache"
	"github.com/mediwise/carehub/internal/models"
)

const testSecret = "settings-test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}, &models.AIUsageLog{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func newTestSettings(t *testing.T) *SettingsService {
	t.Helper()
	return NewSettingsService(newTestDB(t), cache.NewMemoryCache(), testSecret)
}

func TestSettingsGetMissingReturnsDefault(t *testing.T) {
	svc := newTestSettings(t)

	if got := svc.Get("nonexistent", "fallback"); got != "fallback" {
		t.Errorf("Get() = %q, want %q", got, "fallback")
	}
	if got := svc.GetBool("nonexistent", true); !got {
		t.Error("GetBool() = false, want default true")
	}
	if got := svc.GetInt("nonexistent", 42); got != 42 {
		t.Errorf("GetInt() = %d, want 42", got)
	}
}

func TestSettingsStringRoundTrip(t *testing.T) {
	svc := newTestSettings(t)

	if err := svc.Set("site_name", "Sunrise Care Home"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if got := svc.Get("site_name", ""); got != "Sunrise Care Home" {
		t.Errorf("Get() = %q, want %q", got, "Sunrise Care Home")
	}
}

func TestSettingsBoolCoercion(t *testing.T) {
	svc := newTestSettings(t)

	tests := []struct {
		stored string
		want   bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"TRUE", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if err := svc.Set("flag", tt.stored); err != nil {
			t.Fatalf("Set(%q) error: %v", tt.stored, err)
		}
		if got := svc.GetBool("flag", false); got != tt.want {
			t.Errorf("GetBool() with stored %q = %v, want %v", tt.stored, got, tt.want)
		}
	}
}

func TestSettingsIntCoercion(t *testing.T) {
	svc := newTestSettings(t)

	if err := svc.Set("retention", 30); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if got := svc.GetInt("retention", 0); got != 30 {
		t.Errorf("GetInt() = %d, want 30", got)
	}

	if err := svc.Set("retention", "not-a-number"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if got := svc.GetInt("retention", 7); got != 7 {
		t.Errorf("GetInt() with malformed value = %d, want default 7", got)
	}
}

func TestSettingsJSONRoundTrip(t *testing.T) {
	svc := newTestSettings(t)

	in := map[string]interface{}{"enabled": true, "provider": "groq"}
	if err := svc.SetTyped("ai_usecase_x", in, "ai", models.SettingTypeJSON, false); err != nil {
		t.Fatalf("SetTyped() error: %v", err)
	}

	var out map[string]interface{}
	if err := svc.GetJSON("ai_usecase_x", &out); err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}
	if out["provider"] != "groq" {
		t.Errorf("GetJSON() provider = %v, want groq", out["provider"])
	}
}

func TestSettingsJSONMalformedFailsClosed(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db, cache.NewMemoryCache(), testSecret)

	db.Create(&models.Setting{Key: "broken", Group: "ai", Value: "{not json", Type: models.SettingTypeJSON})

	var out map[string]interface{}
	if err := svc.GetJSON("broken", &out); err == nil {
		t.Error("GetJSON() with malformed value returned nil error, want failure")
	}
}

func TestSettingsJSONMissingKey(t *testing.T) {
	svc := newTestSettings(t)

	var out map[string]interface{}
	if err := svc.GetJSON("missing", &out); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("GetJSON() error = %v, want ErrSettingNotFound", err)
	}
}

func TestSettingsEncryptedAtRest(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db, cache.NewMemoryCache(), testSecret)

	const apiKey = "gsk_live_abc123"
	if err := svc.SetTyped("ai_groq_api_key", apiKey, "ai", models.SettingTypeString, true); err != nil {
		t.Fatalf("SetTyped() error: %v", err)
	}

	var row models.Setting
	if err := db.Where("`key` = ?", "ai_groq_api_key").First(&row).Error; err != nil {
		t.Fatalf("Failed to load raw row: %v", err)
	}
	if row.Value == apiKey {
		t.Error("Stored value equals plaintext, want ciphertext")
	}
	if !row.IsEncrypted {
		t.Error("IsEncrypted = false, want true")
	}

	if got := svc.Get("ai_groq_api_key", ""); got != apiKey {
		t.Errorf("Get() = %q, want decrypted %q", got, apiKey)
	}
}

func TestSettingsSetInvalidatesCache(t *testing.T) {
	svc := newTestSettings(t)

	if err := svc.Set("theme", "light"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	// Prime the cache, then overwrite within the TTL.
	if got := svc.Get("theme", ""); got != "light" {
		t.Fatalf("Get() = %q, want light", got)
	}
	if err := svc.Set("theme", "dark"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if got := svc.Get("theme", ""); got != "dark" {
		t.Errorf("Get() after overwrite = %q, want dark", got)
	}
}

func TestSettingsSetPreservesMetadata(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db, cache.NewMemoryCache(), testSecret)

	if err := svc.SetTyped("ai_gemini_api_key", "old-key", "ai", models.SettingTypeString, true); err != nil {
		t.Fatalf("SetTyped() error: %v", err)
	}
	// Plain Set on an existing key keeps its group and encryption flag.
	if err := svc.Set("ai_gemini_api_key", "new-key"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	var row models.Setting
	if err := db.Where("`key` = ?", "ai_gemini_api_key").First(&row).Error; err != nil {
		t.Fatalf("Failed to load raw row: %v", err)
	}
	if row.Group != "ai" {
		t.Errorf("Group = %q, want ai", row.Group)
	}
	if !row.IsEncrypted {
		t.Error("IsEncrypted lost on overwrite")
	}
	if got := svc.Get("ai_gemini_api_key", ""); got != "new-key" {
		t.Errorf("Get() = %q, want new-key", got)
	}
}

func TestSettingsSetManyAndGetGroup(t *testing.T) {
	svc := newTestSettings(t)

	err := svc.SetMany(map[string]interface{}{
		"ai_enabled":               true,
		"ai_groq_default_model":    "llama-3.3-70b-versatile",
		"usage_log_retention_days": 30,
	}, "ai")
	if err != nil {
		t.Fatalf("SetMany() error: %v", err)
	}

	group, err := svc.GetGroup("ai")
	if err != nil {
		t.Fatalf("GetGroup() error: %v", err)
	}
	if len(group) != 3 {
		t.Fatalf("GetGroup() returned %d settings, want 3", len(group))
	}

	if !svc.GetBool("ai_enabled", false) {
		t.Error("GetBool(ai_enabled) = false after SetMany")
	}
	if got := svc.GetInt("usage_log_retention_days", 0); got != 30 {
		t.Errorf("GetInt(usage_log_retention_days) = %d, want 30", got)
	}
}

func TestSettingsGetGroupCacheInvalidatedBySet(t *testing.T) {
	svc := newTestSettings(t)

	if err := svc.SetTyped("ai_enabled", false, "ai", models.SettingTypeBoolean, false); err != nil {
		t.Fatalf("SetTyped() error: %v", err)
	}
	// Prime the group cache.
	if _, err := svc.GetGroup("ai"); err != nil {
		t.Fatalf("GetGroup() error: %v", err)
	}

	if err := svc.SetTyped("ai_groq_default_model", "mixtral-8x7b-32768", "ai", models.SettingTypeString, false); err != nil {
		t.Fatalf("SetTyped() error: %v", err)
	}

	group, err := svc.GetGroup("ai")
	if err != nil {
		t.Fatalf("GetGroup() error: %v", err)
	}
	if len(group) != 2 {
		t.Errorf("GetGroup() returned %d settings after write, want 2", len(group))
	}
}

func TestSettingsEmptyValueReturnsDefault(t *testing.T) {
	svc := newTestSettings(t)

	if err := svc.Set("ai_groq_api_key", ""); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if got := svc.Get("ai_groq_api_key", "none"); got != "none" {
		t.Errorf("Get() with empty stored value = %q, want default", got)
	}
}
