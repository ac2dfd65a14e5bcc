package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SettingKindSwitch = "switch"
	SettingKindValue  = "value"
)

// SystemSetting is a runtime key/value row. Switch rows hold a JSON boolean
// and gate the background jobs; value rows hold any JSON document.
type SystemSetting struct {
	ID    uint64         `gorm:"primaryKey;autoIncrement"`
	Key   string         `gorm:"type:varchar(120);not null;uniqueIndex"`
	Kind  string         `gorm:"type:varchar(16);not null;default:value;index"`
	Value datatypes.JSON `gorm:"type:jsonb;not null"`

	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}
