package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a brokerage or bank account. Its current balance is never
// stored; it is replayed from transactions and closed operations.
type Account struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID uint64 `gorm:"not null;index"`

	Name           string          `gorm:"type:varchar(100);not null"`
	Currency       string          `gorm:"type:varchar(3);not null;default:BRL"`
	InitialBalance decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true;index"`

	Transactions []Transaction `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}
