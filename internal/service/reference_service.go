package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"finboard/internal/models"
	"finboard/internal/repository"
)

// ReferenceService manages assets, strategies and tags.
type ReferenceService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

type AssetInput struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	Market      string `json:"market"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type NamedInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *ReferenceService) CreateAsset(ctx context.Context, in AssetInput) (*models.Asset, error) {
	item := &models.Asset{
		Ticker:      strings.ToUpper(strings.TrimSpace(in.Ticker)),
		Name:        strings.TrimSpace(in.Name),
		Market:      strings.ToUpper(strings.TrimSpace(in.Market)),
		Currency:    strings.ToUpper(strings.TrimSpace(in.Currency)),
		Description: in.Description,
	}
	if item.Currency == "" {
		item.Currency = "BRL"
	}
	switch {
	case item.Ticker == "":
		return nil, fmt.Errorf("%w: ticker is required", ErrInvalidInput)
	case item.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case !contains(models.Markets, item.Market):
		return nil, fmt.Errorf("%w: market must be one of %s", ErrInvalidInput, strings.Join(models.Markets, ", "))
	case len(item.Currency) != 3:
		return nil, fmt.Errorf("%w: currency must be a 3 letter code", ErrInvalidInput)
	}
	if err := s.Repo.CreateAsset(ctx, item); err != nil {
		return nil, translate(err)
	}
	return item, nil
}

// DeleteAsset refuses to remove an asset any operation still points at.
func (s *ReferenceService) DeleteAsset(ctx context.Context, id uint64) error {
	item, err := s.Repo.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("asset %d: %w", id, ErrNotFound)
	}
	return s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		n, err := s.Repo.CountOperationsTx(ctx, tx, repository.OperationRef{AssetID: id})
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: asset %s is used by %d operations", ErrIntegrityConflict, item.Ticker, n)
		}
		return translate(s.Repo.DeleteAssetTx(ctx, tx, id))
	})
}

func (s *ReferenceService) CreateStrategy(ctx context.Context, in NamedInput) (*models.Strategy, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	item := &models.Strategy{Name: name, Description: in.Description}
	if err := s.Repo.CreateStrategy(ctx, item); err != nil {
		return nil, translate(err)
	}
	return item, nil
}

// DeleteStrategy detaches the strategy from its operations and removes it in
// one transaction.
func (s *ReferenceService) DeleteStrategy(ctx context.Context, id uint64) error {
	item, err := s.Repo.GetStrategy(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("strategy %d: %w", id, ErrNotFound)
	}
	return s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		n, err := s.Repo.ClearStrategyTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 && s.Logger != nil {
			s.Logger.Info("strategy detached from operations", zap.String("strategy", item.Name), zap.Int64("operations", n))
		}
		return s.Repo.DeleteStrategyTx(ctx, tx, id)
	})
}

func (s *ReferenceService) CreateTag(ctx context.Context, in NamedInput) (*models.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	item := &models.Tag{Name: name}
	if err := s.Repo.CreateTag(ctx, item); err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (s *ReferenceService) DeleteTag(ctx context.Context, id uint64) error {
	return s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return s.Repo.DeleteTagTx(ctx, tx, id)
	})
}
