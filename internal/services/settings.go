package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mediwise/carehub/internal/cache"
	"github.com/mediwise/carehub/internal/models"
	"github.com/mediwise/carehub/pkg/encrypt"
	"github.com/mediwise/carehub/pkg/logger"
)

const settingsCacheTTL = time.Hour

var ErrSettingNotFound = errors.New("setting not found")

// SettingsService provides durable, cached, typed access to named
// configuration values. Reads are cached with a fixed TTL; writes go
// straight to the database and invalidate the key and group cache
// entries (read-through, not write-through).
type SettingsService struct {
	db     *gorm.DB
	cache  cache.Cache
	secret string
}

func NewSettingsService(db *gorm.DB, c cache.Cache, secret string) *SettingsService {
	return &SettingsService{db: db, cache: c, secret: secret}
}

func settingCacheKey(key string) string { return "setting:" + key }

func groupCacheKey(group string) string { return "settings:group:" + group }

// cachedSetting is the cache envelope for one row. The value is stored in
// its raw (possibly encrypted) form; decryption happens after cache reads
// so secrets never sit decrypted in a shared cache.
type cachedSetting struct {
	Value     string `json:"v"`
	Type      string `json:"t"`
	Encrypted bool   `json:"e"`
}

// load returns the decrypted raw value and declared type for key, going
// through the cache. ok is false when the key is absent or undecryptable.
func (s *SettingsService) load(key string) (value, typ string, ok bool) {
	ctx := context.Background()

	var entry cachedSetting
	if raw, hit := s.cache.Get(ctx, settingCacheKey(key)); hit {
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			s.cache.Delete(ctx, settingCacheKey(key))
			return "", "", false
		}
	} else {
		var setting models.Setting
		if err := s.db.Where("`key` = ?", key).First(&setting).Error; err != nil {
			return "", "", false
		}
		entry = cachedSetting{Value: setting.Value, Type: setting.Type, Encrypted: setting.IsEncrypted}
		if encoded, err := json.Marshal(entry); err == nil {
			s.cache.Set(ctx, settingCacheKey(key), string(encoded), settingsCacheTTL)
		}
	}

	value = entry.Value
	if entry.Encrypted && value != "" {
		decrypted, err := encrypt.Decrypt(s.secret, value)
		if err != nil {
			logger.Warnf("[Settings] Failed to decrypt %s: %v", key, err)
			return "", "", false
		}
		value = decrypted
	}
	return value, entry.Type, true
}

// Get returns the value for key as a string, or defaultValue if the key
// is absent or unset. Never returns an error on missing keys.
func (s *SettingsService) Get(key, defaultValue string) string {
	value, _, ok := s.load(key)
	if !ok || value == "" {
		return defaultValue
	}
	return value
}

// GetBool coerces the stored value permissively: "1", "true", "yes" and
// "on" (any case) are truthy; everything else is falsy.
func (s *SettingsService) GetBool(key string, defaultValue bool) bool {
	value, _, ok := s.load(key)
	if !ok || value == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func (s *SettingsService) GetInt(key string, defaultValue int) int {
	value, _, ok := s.load(key)
	if !ok || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logger.Warnf("[Settings] %s is not an integer: %q", key, value)
		return defaultValue
	}
	return n
}

// GetJSON parses the stored value into out. Malformed stored JSON fails
// closed: the error is returned and out is left untouched, so callers
// fall back to their defaults.
func (s *SettingsService) GetJSON(key string, out interface{}) error {
	value, _, ok := s.load(key)
	if !ok {
		return ErrSettingNotFound
	}
	if value == "" {
		return ErrSettingNotFound
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		logger.Warnf("[Settings] %s holds malformed JSON: %v", key, err)
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// GetGroup returns all settings in a group, cache-backed. Values are
// returned in their raw stored form; encrypted values stay encrypted.
func (s *SettingsService) GetGroup(group string) ([]models.Setting, error) {
	ctx := context.Background()

	if raw, hit := s.cache.Get(ctx, groupCacheKey(group)); hit {
		var settings []models.Setting
		if err := json.Unmarshal([]byte(raw), &settings); err == nil {
			return settings, nil
		}
		s.cache.Delete(ctx, groupCacheKey(group))
	}

	var settings []models.Setting
	if err := s.db.Where("`group` = ?", group).Order("`key` ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(settings); err == nil {
		s.cache.Set(ctx, groupCacheKey(group), string(encoded), settingsCacheTTL)
	}
	return settings, nil
}

// serializeValue converts a write value to its raw storage form: strings
// pass through, scalars are stringified, everything else is JSON-encoded.
// nil becomes the empty string.
func serializeValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("serializing setting value: %w", err)
		}
		return string(encoded), nil
	}
}

// Set persists value under key, preserving the existing row's group,
// type and encryption flag. New keys default to a plain string setting
// in the "general" group.
func (s *SettingsService) Set(key string, value interface{}) error {
	return s.set(key, value, nil, false)
}

// SetTyped persists value with explicit group, type and encryption flag,
// creating or re-flagging the row as needed.
func (s *SettingsService) SetTyped(key string, value interface{}, group, typ string, encrypted bool) error {
	meta := &settingMeta{group: group, typ: typ, encrypted: encrypted}
	return s.set(key, value, meta, false)
}

type settingMeta struct {
	group     string
	typ       string
	encrypted bool
}

func (s *SettingsService) set(key string, value interface{}, meta *settingMeta, skipGroupInvalidation bool) error {
	raw, err := serializeValue(value)
	if err != nil {
		return err
	}

	var setting models.Setting
	err = s.db.Where("`key` = ?", key).First(&setting).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return err
	}

	if isNew {
		setting = models.Setting{
			Key:   key,
			Group: "general",
			Type:  models.SettingTypeString,
		}
	}
	if meta != nil {
		setting.Group = meta.group
		setting.Type = meta.typ
		setting.IsEncrypted = meta.encrypted
	}

	if setting.IsEncrypted && raw != "" {
		raw, err = encrypt.Encrypt(s.secret, raw)
		if err != nil {
			return fmt.Errorf("encrypting setting %s: %w", key, err)
		}
	}
	setting.Value = raw

	if isNew {
		if err := s.db.Create(&setting).Error; err != nil {
			return err
		}
	} else if err := s.db.Save(&setting).Error; err != nil {
		return err
	}

	ctx := context.Background()
	s.cache.Delete(ctx, settingCacheKey(key))
	if !skipGroupInvalidation {
		s.cache.Delete(ctx, groupCacheKey(setting.Group))
	}
	return nil
}

// SetMany applies Set for each entry under the given group, then
// invalidates the group cache once.
func (s *SettingsService) SetMany(values map[string]interface{}, group string) error {
	for key, value := range values {
		var meta *settingMeta

		var existing models.Setting
		err := s.db.Where("`key` = ?", key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			meta = &settingMeta{group: group, typ: models.SettingTypeString}
		} else if err != nil {
			return err
		} else {
			meta = &settingMeta{group: group, typ: existing.Type, encrypted: existing.IsEncrypted}
		}

		if err := s.set(key, value, meta, true); err != nil {
			return err
		}
	}
	s.cache.Delete(context.Background(), groupCacheKey(group))
	return nil
}

// Cache invalidation only; persisted data is never touched.

func (s *SettingsService) InvalidateKey(key string) {
	s.cache.Delete(context.Background(), settingCacheKey(key))
}

func (s *SettingsService) InvalidateGroup(group string) {
	s.cache.Delete(context.Background(), groupCacheKey(group))
}

func (s *SettingsService) InvalidateAll() {
	s.cache.Flush(context.Background())
}
