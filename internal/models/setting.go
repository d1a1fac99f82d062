package models

import "time"

// Setting value types. Coercion is applied on read based on the declared type.
const (
	SettingTypeString  = "string"
	SettingTypeInteger = "integer"
	SettingTypeBoolean = "boolean"
	SettingTypeJSON    = "json"
	SettingTypeImage   = "image"
)

// Setting represents a named configuration value (stored in database).
// Encrypted settings hold base64 AES-GCM ciphertext in Value.
type Setting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"column:key;uniqueIndex;size:100;not null" json:"key"`
	Group       string    `gorm:"column:group;size:50;index;default:general" json:"group"`
	Value       string    `gorm:"type:text" json:"value"`
	Type        string    `gorm:"size:20;default:string" json:"type"`
	IsEncrypted bool      `gorm:"default:false" json:"is_encrypted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }
