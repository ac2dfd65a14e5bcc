package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MovementEntry = "ENTRY"
	MovementExit  = "EXIT"
)

// Movement is a single fill inside an operation.
type Movement struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	OperationID uint64 `gorm:"not null;index"`

	Type       string          `gorm:"type:varchar(5);not null"`
	OccurredAt *time.Time      `gorm:"type:timestamptz"`
	Quantity   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Price      decimal.Decimal `gorm:"type:numeric(12,5);not null"`
	Costs      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Movement) TableName() string {
	return "movements"
}
