package gormrepository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"finboard/internal/models"
	"finboard/internal/repository"
)

func (s *Store) CreateAsset(ctx context.Context, item *models.Asset) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetAsset(ctx context.Context, id uint64) (*models.Asset, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Asset
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListAssets(ctx context.Context, params repository.ListReferenceParams) ([]models.Asset, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Asset{})
	if pattern := likePattern(params.Query); pattern != "" {
		query = query.Where("ticker ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "ticker")
	var items []models.Asset
	if err := query.Limit(normalizeLimit(params.Limit, 200)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteAssetTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.conn(ctx, tx).Delete(&models.Asset{}, id).Error
}

func (s *Store) CreateStrategy(ctx context.Context, item *models.Strategy) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetStrategy(ctx context.Context, id uint64) (*models.Strategy, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Strategy
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListStrategies(ctx context.Context, params repository.ListReferenceParams) ([]models.Strategy, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Strategy{})
	if pattern := likePattern(params.Query); pattern != "" {
		query = query.Where("name ILIKE ?", pattern)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "name")
	var items []models.Strategy
	if err := query.Limit(normalizeLimit(params.Limit, 200)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ClearStrategyTx detaches the strategy from every operation using it.
func (s *Store) ClearStrategyTx(ctx context.Context, tx *gorm.DB, strategyID uint64) (int64, error) {
	if s == nil || s.db == nil || strategyID == 0 {
		return 0, nil
	}
	res := s.conn(ctx, tx).
		Model(&models.Operation{}).
		Where("strategy_id = ?", strategyID).
		Update("strategy_id", nil)
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteStrategyTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.conn(ctx, tx).Delete(&models.Strategy{}, id).Error
}

func (s *Store) CreateTag(ctx context.Context, item *models.Tag) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListTags(ctx context.Context, params repository.ListReferenceParams) ([]models.Tag, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Tag{})
	if pattern := likePattern(params.Query); pattern != "" {
		query = query.Where("name ILIKE ?", pattern)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "name")
	var items []models.Tag
	if err := query.Limit(normalizeLimit(params.Limit, 200)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListTagsByIDs(ctx context.Context, ids []uint64) ([]models.Tag, error) {
	if s == nil || s.db == nil || len(ids) == 0 {
		return nil, nil
	}
	var items []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteTagTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	db := s.conn(ctx, tx)
	if err := db.Exec("DELETE FROM operation_tags WHERE tag_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&models.Tag{}, id).Error
}
