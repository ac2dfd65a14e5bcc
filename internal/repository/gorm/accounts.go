package gormrepository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"finboard/internal/models"
	"finboard/internal/repository"
)

func (s *Store) CreateAccount(ctx context.Context, item *models.Account) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Omit("Transactions").Create(item).Error
}

func (s *Store) GetAccount(ctx context.Context, userID, id uint64) (*models.Account, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Account
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) accountsQuery(ctx context.Context, params repository.ListAccountsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Account{}).Where("user_id = ?", params.UserID)
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	return query
}

func (s *Store) ListAccounts(ctx context.Context, params repository.ListAccountsParams) ([]models.Account, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyOrder(s.accountsQuery(ctx, params), params.OrderBy, params.Asc, "id")
	var items []models.Account
	if err := query.Limit(normalizeLimit(params.Limit, 200)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountAccounts(ctx context.Context, params repository.ListAccountsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.accountsQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListAccountUserIDs(ctx context.Context) ([]uint64, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var ids []uint64
	if err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Distinct("user_id").
		Order("user_id asc").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteAccountTx removes the account and its transactions.
func (s *Store) DeleteAccountTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	db := s.conn(ctx, tx)
	if err := db.Where("account_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Account{}, id).Error
}

func (s *Store) CreateTransaction(ctx context.Context, item *models.Transaction) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetTransaction(ctx context.Context, id uint64) (*models.Transaction, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Transaction
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID uint64) ([]models.Transaction, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("occurred_at asc").
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.Transaction{}, id).Error
}
