package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"finboard/internal/models"
	"finboard/internal/repository"
)

// stubRepo is an in-memory repository.Repository. InTx restores the previous
// state when fn fails, which stands in for a database rollback.
type stubRepo struct {
	nextID       uint64
	accounts     map[uint64]models.Account
	transactions map[uint64]models.Transaction
	operations   map[uint64]models.Operation
	movements    map[uint64]models.Movement
	opTags       map[uint64][]uint64
	assets       map[uint64]models.Asset
	strategies   map[uint64]models.Strategy
	tags         map[uint64]models.Tag
	snapshots    map[string]models.PerformanceSnapshot
	settings     map[string]models.SystemSetting
	txCount      int
	stateSaves   int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		accounts:     map[uint64]models.Account{},
		transactions: map[uint64]models.Transaction{},
		operations:   map[uint64]models.Operation{},
		movements:    map[uint64]models.Movement{},
		opTags:       map[uint64][]uint64{},
		assets:       map[uint64]models.Asset{},
		strategies:   map[uint64]models.Strategy{},
		tags:         map[uint64]models.Tag{},
		snapshots:    map[string]models.PerformanceSnapshot{},
		settings:     map[string]models.SystemSetting{},
	}
}

func (s *stubRepo) id() uint64 {
	s.nextID++
	return s.nextID
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.txCount++
	saved := *s
	saved.accounts = copyMap(s.accounts)
	saved.transactions = copyMap(s.transactions)
	saved.operations = copyMap(s.operations)
	saved.movements = copyMap(s.movements)
	saved.opTags = copyMap(s.opTags)
	saved.assets = copyMap(s.assets)
	saved.strategies = copyMap(s.strategies)
	saved.tags = copyMap(s.tags)
	saved.snapshots = copyMap(s.snapshots)
	saved.settings = copyMap(s.settings)
	if err := fn(nil); err != nil {
		saved.txCount = s.txCount
		*s = saved
		return err
	}
	return nil
}

func (s *stubRepo) CreateAccount(ctx context.Context, item *models.Account) error {
	item.ID = s.id()
	s.accounts[item.ID] = *item
	return nil
}

func (s *stubRepo) GetAccount(ctx context.Context, userID, id uint64) (*models.Account, error) {
	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	return &a, nil
}

func (s *stubRepo) ListAccounts(ctx context.Context, params repository.ListAccountsParams) ([]models.Account, error) {
	var out []models.Account
	for _, a := range s.accounts {
		if a.UserID != params.UserID {
			continue
		}
		if params.IsActive != nil && a.IsActive != *params.IsActive {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) CountAccounts(ctx context.Context, params repository.ListAccountsParams) (int64, error) {
	items, _ := s.ListAccounts(ctx, params)
	return int64(len(items)), nil
}

func (s *stubRepo) ListAccountUserIDs(ctx context.Context) ([]uint64, error) {
	seen := map[uint64]bool{}
	var out []uint64
	for _, a := range s.accounts {
		if !seen[a.UserID] {
			seen[a.UserID] = true
			out = append(out, a.UserID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *stubRepo) DeleteAccountTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	for tid, t := range s.transactions {
		if t.AccountID == id {
			delete(s.transactions, tid)
		}
	}
	delete(s.accounts, id)
	return nil
}

func (s *stubRepo) CreateTransaction(ctx context.Context, item *models.Transaction) error {
	item.ID = s.id()
	s.transactions[item.ID] = *item
	return nil
}

func (s *stubRepo) GetTransaction(ctx context.Context, id uint64) (*models.Transaction, error) {
	t, ok := s.transactions[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *stubRepo) ListTransactionsByAccount(ctx context.Context, accountID uint64) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range s.transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) DeleteTransaction(ctx context.Context, id uint64) error {
	delete(s.transactions, id)
	return nil
}

func (s *stubRepo) CreateOperationTx(ctx context.Context, tx *gorm.DB, item *models.Operation) error {
	item.ID = s.id()
	s.operations[item.ID] = *item
	return nil
}

func (s *stubRepo) GetOperation(ctx context.Context, userID, id uint64) (*models.Operation, error) {
	op, ok := s.operations[id]
	if !ok || op.UserID != userID {
		return nil, nil
	}
	op.Movements, _ = s.ListMovementsTx(ctx, nil, id)
	op.Tags = nil
	for _, tid := range s.opTags[id] {
		op.Tags = append(op.Tags, s.tags[tid])
	}
	return &op, nil
}

func (s *stubRepo) LockOperationTx(ctx context.Context, tx *gorm.DB, userID, id uint64) (*models.Operation, error) {
	op, ok := s.operations[id]
	if !ok || op.UserID != userID {
		return nil, nil
	}
	return &op, nil
}

func (s *stubRepo) ListOperations(ctx context.Context, params repository.ListOperationsParams) ([]models.Operation, error) {
	var out []models.Operation
	for _, op := range s.operations {
		if op.UserID == params.UserID {
			out = append(out, op)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) CountOperations(ctx context.Context, params repository.ListOperationsParams) (int64, error) {
	items, _ := s.ListOperations(ctx, params)
	return int64(len(items)), nil
}

func (s *stubRepo) CountOperationsTx(ctx context.Context, tx *gorm.DB, ref repository.OperationRef) (int64, error) {
	var n int64
	for _, op := range s.operations {
		switch {
		case ref.AccountID != 0 && op.AccountID == ref.AccountID,
			ref.AssetID != 0 && op.AssetID == ref.AssetID,
			ref.StrategyID != 0 && op.StrategyID != nil && *op.StrategyID == ref.StrategyID:
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) UpdateOperationTx(ctx context.Context, tx *gorm.DB, item *models.Operation) error {
	op := s.operations[item.ID]
	op.AccountID = item.AccountID
	op.AssetID = item.AssetID
	op.StrategyID = item.StrategyID
	op.InitialOperationType = item.InitialOperationType
	op.NetFinancialResult = item.NetFinancialResult
	op.PointsResult = item.PointsResult
	op.InitialStopPrice = item.InitialStopPrice
	op.InitialTargetPrice = item.InitialTargetPrice
	op.EntryReason = item.EntryReason
	op.GeneralNotes = item.GeneralNotes
	op.EntrySentiment = item.EntrySentiment
	op.ExecutionRating = item.ExecutionRating
	s.operations[item.ID] = op
	return nil
}

func (s *stubRepo) SaveOperationStateTx(ctx context.Context, tx *gorm.DB, id uint64, state repository.OperationState) error {
	s.stateSaves++
	op := s.operations[id]
	op.Status = state.Status
	op.StartDate = state.StartDate
	op.EndDate = state.EndDate
	s.operations[id] = op
	return nil
}

func (s *stubRepo) ReplaceOperationTagsTx(ctx context.Context, tx *gorm.DB, operationID uint64, tagIDs []uint64) error {
	s.opTags[operationID] = append([]uint64(nil), tagIDs...)
	return nil
}

func (s *stubRepo) DeleteOperationTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	for mid, m := range s.movements {
		if m.OperationID == id {
			delete(s.movements, mid)
		}
	}
	delete(s.opTags, id)
	delete(s.operations, id)
	return nil
}

func (s *stubRepo) ListClosedTrades(ctx context.Context, params repository.ClosedTradesParams) ([]repository.ClosedTradeRow, error) {
	var out []repository.ClosedTradeRow
	for _, op := range s.operations {
		if op.UserID != params.UserID || op.Status != models.OperationClosed {
			continue
		}
		if params.AccountID != nil && op.AccountID != *params.AccountID {
			continue
		}
		if op.EndDate != nil {
			if params.From != nil && op.EndDate.Before(*params.From) {
				continue
			}
			if params.To != nil && !op.EndDate.Before(*params.To) {
				continue
			}
		}
		row := repository.ClosedTradeRow{
			OperationID:        op.ID,
			AccountID:          op.AccountID,
			Currency:           s.accounts[op.AccountID].Currency,
			Ticker:             s.assets[op.AssetID].Ticker,
			Direction:          op.InitialOperationType,
			StartDate:          op.StartDate,
			EndDate:            op.EndDate,
			NetFinancialResult: op.NetFinancialResult,
		}
		if op.StrategyID != nil {
			name := s.strategies[*op.StrategyID].Name
			row.StrategyName = &name
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OperationID < out[j].OperationID })
	return out, nil
}

func (s *stubRepo) ListMovementsTx(ctx context.Context, tx *gorm.DB, operationID uint64) ([]models.Movement, error) {
	var out []models.Movement
	for _, m := range s.movements {
		if m.OperationID == operationID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) CreateMovementTx(ctx context.Context, tx *gorm.DB, item *models.Movement) error {
	item.ID = s.id()
	s.movements[item.ID] = *item
	return nil
}

func (s *stubRepo) UpdateMovementTx(ctx context.Context, tx *gorm.DB, item *models.Movement) (int64, error) {
	m, ok := s.movements[item.ID]
	if !ok || m.OperationID != item.OperationID {
		return 0, nil
	}
	s.movements[item.ID] = *item
	return 1, nil
}

func (s *stubRepo) DeleteMovementTx(ctx context.Context, tx *gorm.DB, operationID, id uint64) (int64, error) {
	m, ok := s.movements[id]
	if !ok || m.OperationID != operationID {
		return 0, nil
	}
	delete(s.movements, id)
	return 1, nil
}

func (s *stubRepo) CreateAsset(ctx context.Context, item *models.Asset) error {
	item.ID = s.id()
	s.assets[item.ID] = *item
	return nil
}

func (s *stubRepo) GetAsset(ctx context.Context, id uint64) (*models.Asset, error) {
	a, ok := s.assets[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *stubRepo) ListAssets(ctx context.Context, params repository.ListReferenceParams) ([]models.Asset, error) {
	var out []models.Asset
	for _, a := range s.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}

func (s *stubRepo) DeleteAssetTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	delete(s.assets, id)
	return nil
}

func (s *stubRepo) CreateStrategy(ctx context.Context, item *models.Strategy) error {
	item.ID = s.id()
	s.strategies[item.ID] = *item
	return nil
}

func (s *stubRepo) GetStrategy(ctx context.Context, id uint64) (*models.Strategy, error) {
	st, ok := s.strategies[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *stubRepo) ListStrategies(ctx context.Context, params repository.ListReferenceParams) ([]models.Strategy, error) {
	var out []models.Strategy
	for _, st := range s.strategies {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *stubRepo) ClearStrategyTx(ctx context.Context, tx *gorm.DB, strategyID uint64) (int64, error) {
	var n int64
	for id, op := range s.operations {
		if op.StrategyID != nil && *op.StrategyID == strategyID {
			op.StrategyID = nil
			s.operations[id] = op
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) DeleteStrategyTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	delete(s.strategies, id)
	return nil
}

func (s *stubRepo) CreateTag(ctx context.Context, item *models.Tag) error {
	for _, t := range s.tags {
		if strings.EqualFold(t.Name, item.Name) {
			return gorm.ErrDuplicatedKey
		}
	}
	item.ID = s.id()
	s.tags[item.ID] = *item
	return nil
}

func (s *stubRepo) ListTags(ctx context.Context, params repository.ListReferenceParams) ([]models.Tag, error) {
	var out []models.Tag
	for _, t := range s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *stubRepo) ListTagsByIDs(ctx context.Context, ids []uint64) ([]models.Tag, error) {
	var out []models.Tag
	for _, id := range uniqueIDs(ids) {
		if t, ok := s.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubRepo) DeleteTagTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	delete(s.tags, id)
	return nil
}

func (s *stubRepo) UpsertPerformanceSnapshot(ctx context.Context, item *models.PerformanceSnapshot) error {
	key := snapshotKey(item.UserID, item.SnapshotDate.Format("2006-01-02"))
	if existing, ok := s.snapshots[key]; ok {
		item.ID = existing.ID
	} else {
		item.ID = s.id()
	}
	s.snapshots[key] = *item
	return nil
}

func (s *stubRepo) ListPerformanceSnapshots(ctx context.Context, params repository.ListSnapshotsParams) ([]models.PerformanceSnapshot, error) {
	var out []models.PerformanceSnapshot
	for _, snap := range s.snapshots {
		if snap.UserID == params.UserID {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SnapshotDate.Before(out[j].SnapshotDate) })
	return out, nil
}

func (s *stubRepo) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	s.settings[item.Key] = *item
	return nil
}

func (s *stubRepo) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	item, ok := s.settings[key]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *stubRepo) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	var out []models.SystemSetting
	for _, item := range s.settings {
		if params.Prefix != nil && !strings.HasPrefix(item.Key, *params.Prefix) {
			continue
		}
		if params.Kind != nil && item.Kind != *params.Kind {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *stubRepo) CountSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) (int64, error) {
	items, _ := s.ListSystemSettings(ctx, params)
	return int64(len(items)), nil
}

func snapshotKey(userID uint64, day string) string {
	return fmt.Sprintf("%d/%s", userID, day)
}

var _ repository.Repository = (*stubRepo)(nil)
