package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finboard/internal/models"
	"finboard/internal/repository"
)

// Columns a user edit may touch. Status and dates belong to the lifecycle.
var editableOperationColumns = []string{
	"account_id",
	"asset_id",
	"strategy_id",
	"initial_operation_type",
	"net_financial_result",
	"points_result",
	"initial_stop_price",
	"initial_target_price",
	"entry_reason",
	"general_notes",
	"entry_sentiment",
	"execution_rating",
	"updated_at",
}

func (s *Store) CreateOperationTx(ctx context.Context, tx *gorm.DB, item *models.Operation) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.conn(ctx, tx).Omit(clause.Associations).Create(item).Error
}

func (s *Store) GetOperation(ctx context.Context, userID, id uint64) (*models.Operation, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Operation
	err := s.db.WithContext(ctx).
		Preload("Asset").
		Preload("Strategy").
		Preload("Tags").
		Preload("Attachments").
		Preload("Movements", func(db *gorm.DB) *gorm.DB {
			return db.Order("occurred_at asc").Order("id asc")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// LockOperationTx reads the operation with SELECT ... FOR UPDATE so movement
// batches on the same operation serialize.
func (s *Store) LockOperationTx(ctx context.Context, tx *gorm.DB, userID, id uint64) (*models.Operation, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Operation
	err := s.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) operationsQuery(ctx context.Context, params repository.ListOperationsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Operation{}).Where("user_id = ?", params.UserID)
	if params.AccountID != nil {
		query = query.Where("account_id = ?", *params.AccountID)
	}
	if params.AssetID != nil {
		query = query.Where("asset_id = ?", *params.AssetID)
	}
	if params.StrategyID != nil {
		query = query.Where("strategy_id = ?", *params.StrategyID)
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.ToUpper(strings.TrimSpace(*params.Status)))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("start_date >= ?", *params.Since)
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("start_date < ?", *params.Until)
	}
	return query
}

func (s *Store) ListOperations(ctx context.Context, params repository.ListOperationsParams) ([]models.Operation, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyOrder(s.operationsQuery(ctx, params), params.OrderBy, params.Asc, "id")
	var items []models.Operation
	if err := query.
		Preload("Asset").
		Preload("Strategy").
		Preload("Tags").
		Limit(normalizeLimit(params.Limit, 50)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountOperations(ctx context.Context, params repository.ListOperationsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.operationsQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) CountOperationsTx(ctx context.Context, tx *gorm.DB, ref repository.OperationRef) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.conn(ctx, tx).Model(&models.Operation{})
	switch {
	case ref.AccountID != 0:
		query = query.Where("account_id = ?", ref.AccountID)
	case ref.AssetID != 0:
		query = query.Where("asset_id = ?", ref.AssetID)
	case ref.StrategyID != 0:
		query = query.Where("strategy_id = ?", ref.StrategyID)
	default:
		return 0, nil
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpdateOperationTx(ctx context.Context, tx *gorm.DB, item *models.Operation) error {
	if s == nil || s.db == nil || item == nil || item.ID == 0 {
		return nil
	}
	return s.conn(ctx, tx).
		Model(&models.Operation{ID: item.ID}).
		Select(editableOperationColumns).
		Updates(item).Error
}

func (s *Store) SaveOperationStateTx(ctx context.Context, tx *gorm.DB, id uint64, state repository.OperationState) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.conn(ctx, tx).
		Model(&models.Operation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     state.Status,
			"start_date": state.StartDate,
			"end_date":   state.EndDate,
		}).Error
}

func (s *Store) ReplaceOperationTagsTx(ctx context.Context, tx *gorm.DB, operationID uint64, tagIDs []uint64) error {
	if s == nil || s.db == nil || operationID == 0 {
		return nil
	}
	tags := make([]models.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		tags = append(tags, models.Tag{ID: id})
	}
	return s.conn(ctx, tx).Model(&models.Operation{ID: operationID}).Association("Tags").Replace(tags)
}

// DeleteOperationTx removes the operation with its movements, attachments
// and tag links.
func (s *Store) DeleteOperationTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	db := s.conn(ctx, tx)
	if err := db.Where("operation_id = ?", id).Delete(&models.Movement{}).Error; err != nil {
		return err
	}
	if err := db.Where("operation_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM operation_tags WHERE operation_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&models.Operation{}, id).Error
}

func (s *Store) ListClosedTrades(ctx context.Context, params repository.ClosedTradesParams) ([]repository.ClosedTradeRow, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Table("operations AS o").
		Select(`o.id AS operation_id,
			o.account_id AS account_id,
			a.currency AS currency,
			s.ticker AS ticker,
			st.name AS strategy_name,
			o.initial_operation_type AS direction,
			o.start_date AS start_date,
			o.end_date AS end_date,
			o.net_financial_result AS net_financial_result`).
		Joins("JOIN accounts AS a ON a.id = o.account_id").
		Joins("JOIN assets AS s ON s.id = o.asset_id").
		Joins("LEFT JOIN strategies AS st ON st.id = o.strategy_id").
		Where("o.user_id = ?", params.UserID).
		Where("o.status = ?", models.OperationClosed)
	if params.AccountID != nil {
		query = query.Where("o.account_id = ?", *params.AccountID)
	}
	if params.From != nil && !params.From.IsZero() {
		query = query.Where("o.end_date >= ?", *params.From)
	}
	if params.To != nil && !params.To.IsZero() {
		query = query.Where("o.end_date < ?", *params.To)
	}
	var rows []repository.ClosedTradeRow
	if err := query.Order("o.end_date asc").Order("o.id asc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ListMovementsTx(ctx context.Context, tx *gorm.DB, operationID uint64) ([]models.Movement, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Movement
	if err := s.conn(ctx, tx).
		Where("operation_id = ?", operationID).
		Order("occurred_at asc").
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreateMovementTx(ctx context.Context, tx *gorm.DB, item *models.Movement) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.conn(ctx, tx).Create(item).Error
}

func (s *Store) UpdateMovementTx(ctx context.Context, tx *gorm.DB, item *models.Movement) (int64, error) {
	if s == nil || s.db == nil || item == nil || item.ID == 0 {
		return 0, nil
	}
	res := s.conn(ctx, tx).
		Model(&models.Movement{}).
		Where("id = ? AND operation_id = ?", item.ID, item.OperationID).
		Updates(map[string]any{
			"type":        item.Type,
			"occurred_at": item.OccurredAt,
			"quantity":    item.Quantity,
			"price":       item.Price,
			"costs":       item.Costs,
		})
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteMovementTx(ctx context.Context, tx *gorm.DB, operationID, id uint64) (int64, error) {
	if s == nil || s.db == nil || id == 0 {
		return 0, nil
	}
	res := s.conn(ctx, tx).
		Where("id = ? AND operation_id = ?", id, operationID).
		Delete(&models.Movement{})
	return res.RowsAffected, res.Error
}
