package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finboard/internal/models"
)

// Repository is the persistence collaborator. Methods with a Tx suffix run on
// the given transaction, or on the base connection when tx is nil. Lookups
// return (nil, nil) when the row does not exist.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Accounts and their transactions.
	CreateAccount(ctx context.Context, item *models.Account) error
	GetAccount(ctx context.Context, userID, id uint64) (*models.Account, error)
	ListAccounts(ctx context.Context, params ListAccountsParams) ([]models.Account, error)
	CountAccounts(ctx context.Context, params ListAccountsParams) (int64, error)
	ListAccountUserIDs(ctx context.Context) ([]uint64, error)
	DeleteAccountTx(ctx context.Context, tx *gorm.DB, id uint64) error
	CreateTransaction(ctx context.Context, item *models.Transaction) error
	GetTransaction(ctx context.Context, id uint64) (*models.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID uint64) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, id uint64) error

	// Operations.
	CreateOperationTx(ctx context.Context, tx *gorm.DB, item *models.Operation) error
	GetOperation(ctx context.Context, userID, id uint64) (*models.Operation, error)
	LockOperationTx(ctx context.Context, tx *gorm.DB, userID, id uint64) (*models.Operation, error)
	ListOperations(ctx context.Context, params ListOperationsParams) ([]models.Operation, error)
	CountOperations(ctx context.Context, params ListOperationsParams) (int64, error)
	CountOperationsTx(ctx context.Context, tx *gorm.DB, ref OperationRef) (int64, error)
	UpdateOperationTx(ctx context.Context, tx *gorm.DB, item *models.Operation) error
	SaveOperationStateTx(ctx context.Context, tx *gorm.DB, id uint64, state OperationState) error
	ReplaceOperationTagsTx(ctx context.Context, tx *gorm.DB, operationID uint64, tagIDs []uint64) error
	DeleteOperationTx(ctx context.Context, tx *gorm.DB, id uint64) error
	ListClosedTrades(ctx context.Context, params ClosedTradesParams) ([]ClosedTradeRow, error)

	// Movements.
	ListMovementsTx(ctx context.Context, tx *gorm.DB, operationID uint64) ([]models.Movement, error)
	CreateMovementTx(ctx context.Context, tx *gorm.DB, item *models.Movement) error
	UpdateMovementTx(ctx context.Context, tx *gorm.DB, item *models.Movement) (int64, error)
	DeleteMovementTx(ctx context.Context, tx *gorm.DB, operationID, id uint64) (int64, error)

	// Reference data.
	CreateAsset(ctx context.Context, item *models.Asset) error
	GetAsset(ctx context.Context, id uint64) (*models.Asset, error)
	ListAssets(ctx context.Context, params ListReferenceParams) ([]models.Asset, error)
	DeleteAssetTx(ctx context.Context, tx *gorm.DB, id uint64) error
	CreateStrategy(ctx context.Context, item *models.Strategy) error
	GetStrategy(ctx context.Context, id uint64) (*models.Strategy, error)
	ListStrategies(ctx context.Context, params ListReferenceParams) ([]models.Strategy, error)
	ClearStrategyTx(ctx context.Context, tx *gorm.DB, strategyID uint64) (int64, error)
	DeleteStrategyTx(ctx context.Context, tx *gorm.DB, id uint64) error
	CreateTag(ctx context.Context, item *models.Tag) error
	ListTags(ctx context.Context, params ListReferenceParams) ([]models.Tag, error)
	ListTagsByIDs(ctx context.Context, ids []uint64) ([]models.Tag, error)
	DeleteTagTx(ctx context.Context, tx *gorm.DB, id uint64) error

	// Performance snapshots.
	UpsertPerformanceSnapshot(ctx context.Context, item *models.PerformanceSnapshot) error
	ListPerformanceSnapshots(ctx context.Context, params ListSnapshotsParams) ([]models.PerformanceSnapshot, error)

	// System settings.
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	ListSystemSettings(ctx context.Context, params ListSystemSettingsParams) ([]models.SystemSetting, error)
	CountSystemSettings(ctx context.Context, params ListSystemSettingsParams) (int64, error)
}

type ListAccountsParams struct {
	Limit    int
	Offset   int
	UserID   uint64
	IsActive *bool
	OrderBy  string
	Asc      *bool
}

type ListOperationsParams struct {
	Limit      int
	Offset     int
	UserID     uint64
	AccountID  *uint64
	AssetID    *uint64
	StrategyID *uint64
	Status     *string
	Since      *time.Time
	Until      *time.Time
	OrderBy    string
	Asc        *bool
}

// OperationRef selects operations referencing one account, asset or strategy.
// Exactly one field is expected to be set.
type OperationRef struct {
	AccountID  uint64
	AssetID    uint64
	StrategyID uint64
}

type OperationState struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// ClosedTradesParams filters closed operations on end_date in [From, To).
type ClosedTradesParams struct {
	UserID    uint64
	AccountID *uint64
	From      *time.Time
	To        *time.Time
}

// ClosedTradeRow is a closed operation joined with its classification.
type ClosedTradeRow struct {
	OperationID        uint64
	AccountID          uint64
	Currency           string
	Ticker             string
	StrategyName       *string
	Direction          string
	StartDate          *time.Time
	EndDate            *time.Time
	NetFinancialResult *decimal.Decimal
}

type ListReferenceParams struct {
	Limit   int
	Offset  int
	Query   *string
	OrderBy string
	Asc     *bool
}

type ListSnapshotsParams struct {
	Limit   int
	Offset  int
	UserID  uint64
	Since   *time.Time
	Until   *time.Time
	OrderBy string
	Asc     *bool
}

type ListSystemSettingsParams struct {
	Limit   int
	Offset  int
	Prefix  *string
	Kind    *string
	OrderBy string
	Asc     *bool
}
