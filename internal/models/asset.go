package models

import "time"

var Markets = []string{"B3_STOCKS", "B3_FUTURES", "FOREX_PAIRS", "FOREX_COMMODITIES", "FOREX_INDICES"}

// Asset is reference data for a tradable instrument.
type Asset struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Ticker      string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Market      string    `gorm:"type:varchar(20);not null;index"`
	Currency    string    `gorm:"type:varchar(3);not null;default:BRL"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Asset) TableName() string {
	return "assets"
}
