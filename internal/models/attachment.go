package models

import "time"

type Attachment struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	OperationID uint64    `gorm:"not null;index"`
	FilePath    string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:varchar(255)"`
	UploadedAt  time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Attachment) TableName() string {
	return "attachments"
}
