package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OperationOpen   = "OPEN"
	OperationClosed = "CLOSED"

	DirectionBuy  = "BUY"
	DirectionSell = "SELL"
)

var Sentiments = []string{"CONFIDENT", "ANXIOUS", "AFRAID", "FOCUSED", "EUPHORIC"}

// Operation is one trade. Status, StartDate and EndDate are derived from the
// movements and only written by the lifecycle recalculation.
type Operation struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID uint64 `gorm:"not null;index"`

	AccountID  uint64    `gorm:"not null;index"`
	Account    *Account  `gorm:"foreignKey:AccountID;constraint:OnDelete:RESTRICT"`
	AssetID    uint64    `gorm:"not null;index"`
	Asset      *Asset    `gorm:"foreignKey:AssetID;constraint:OnDelete:RESTRICT"`
	StrategyID *uint64   `gorm:"index"`
	Strategy   *Strategy `gorm:"foreignKey:StrategyID;constraint:OnDelete:SET NULL"`
	Tags       []Tag     `gorm:"many2many:operation_tags;constraint:OnDelete:CASCADE"`

	Status    string     `gorm:"type:varchar(10);not null;default:OPEN;index"`
	StartDate *time.Time `gorm:"type:timestamptz"`
	EndDate   *time.Time `gorm:"type:timestamptz;index"`

	InitialOperationType string           `gorm:"type:varchar(4);not null"`
	NetFinancialResult   *decimal.Decimal `gorm:"type:numeric(12,2)"`
	PointsResult         *decimal.Decimal `gorm:"type:numeric(12,2)"`

	InitialStopPrice   *decimal.Decimal `gorm:"type:numeric(10,5)"`
	InitialTargetPrice *decimal.Decimal `gorm:"type:numeric(10,5)"`

	EntryReason     string `gorm:"type:text"`
	GeneralNotes    string `gorm:"type:text"`
	EntrySentiment  string `gorm:"type:varchar(10)"`
	ExecutionRating *int   `gorm:"type:smallint"`

	Movements   []Movement   `gorm:"foreignKey:OperationID;constraint:OnDelete:CASCADE"`
	Attachments []Attachment `gorm:"foreignKey:OperationID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Operation) TableName() string {
	return "operations"
}
