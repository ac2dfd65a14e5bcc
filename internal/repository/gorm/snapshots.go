package gormrepository

import (
	"context"

	"gorm.io/gorm/clause"

	"finboard/internal/models"
	"finboard/internal/repository"
)

func (s *Store) UpsertPerformanceSnapshot(ctx context.Context, item *models.PerformanceSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"trades",
			"total_pnl",
			"win_rate",
			"currency",
			"summary",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListPerformanceSnapshots(ctx context.Context, params repository.ListSnapshotsParams) ([]models.PerformanceSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.PerformanceSnapshot{}).Where("user_id = ?", params.UserID)
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("snapshot_date >= ?", *params.Since)
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("snapshot_date < ?", *params.Until)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "snapshot_date")
	var items []models.PerformanceSnapshot
	if err := query.Limit(normalizeLimit(params.Limit, 90)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
