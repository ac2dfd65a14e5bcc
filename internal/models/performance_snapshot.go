package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PerformanceSnapshot freezes a user's KPI set for one day. Summary holds
// the full KPI object; the headline figures are copied into columns.
type PerformanceSnapshot struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UserID       uint64    `gorm:"not null;uniqueIndex:idx_perf_snapshot_user_day"`
	SnapshotDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_perf_snapshot_user_day"`

	Trades   int             `gorm:"not null"`
	TotalPnL decimal.Decimal `gorm:"column:total_pnl;type:numeric(15,2);not null"`
	WinRate  decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	Currency string          `gorm:"type:varchar(3);not null"`

	Summary datatypes.JSON `gorm:"type:jsonb;not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (PerformanceSnapshot) TableName() string {
	return "performance_snapshots"
}
