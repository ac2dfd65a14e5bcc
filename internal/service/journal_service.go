package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"finboard/internal/lifecycle"
	"finboard/internal/models"
	"finboard/internal/repository"
)

// JournalService owns operations and their movements. Every movement change
// and the lifecycle recalculation it triggers share one database transaction.
type JournalService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

type MovementInput struct {
	ID         uint64          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt *time.Time      `json:"occurred_at"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Costs      decimal.Decimal `json:"costs"`
}

// MovementBatch creates movements without an id, updates the ones with an
// id and removes the ids listed in Delete.
type MovementBatch struct {
	Upsert []MovementInput `json:"upsert"`
	Delete []uint64        `json:"delete"`
}

type OperationInput struct {
	AccountID            uint64           `json:"account_id"`
	AssetID              uint64           `json:"asset_id"`
	StrategyID           *uint64          `json:"strategy_id"`
	TagIDs               []uint64         `json:"tag_ids"`
	InitialOperationType string           `json:"initial_operation_type"`
	NetFinancialResult   *decimal.Decimal `json:"net_financial_result"`
	PointsResult         *decimal.Decimal `json:"points_result"`
	InitialStopPrice     *decimal.Decimal `json:"initial_stop_price"`
	InitialTargetPrice   *decimal.Decimal `json:"initial_target_price"`
	EntryReason          string           `json:"entry_reason"`
	GeneralNotes         string           `json:"general_notes"`
	EntrySentiment       string           `json:"entry_sentiment"`
	ExecutionRating      *int             `json:"execution_rating"`
	Movements            []MovementInput  `json:"movements"`
}

func (s *JournalService) logger() *zap.Logger {
	if s == nil || s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *JournalService) ListOperations(ctx context.Context, params repository.ListOperationsParams) ([]models.Operation, int64, error) {
	items, err := s.Repo.ListOperations(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountOperations(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *JournalService) GetOperation(ctx context.Context, userID, id uint64) (*models.Operation, error) {
	item, err := s.Repo.GetOperation(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("operation %d: %w", id, ErrNotFound)
	}
	return item, nil
}

// CreateOperation stores the operation, its tags and any initial movements,
// then derives its status from those movements.
func (s *JournalService) CreateOperation(ctx context.Context, userID uint64, in OperationInput) (*models.Operation, error) {
	if err := s.validateOperation(ctx, userID, in); err != nil {
		return nil, err
	}
	item := operationFromInput(in)
	item.UserID = userID
	item.Status = models.OperationOpen

	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.Repo.CreateOperationTx(ctx, tx, item); err != nil {
			return translate(err)
		}
		if len(in.TagIDs) > 0 {
			if err := s.Repo.ReplaceOperationTagsTx(ctx, tx, item.ID, uniqueIDs(in.TagIDs)); err != nil {
				return translate(err)
			}
		}
		if err := s.applyTx(ctx, tx, item.ID, MovementBatch{Upsert: in.Movements}); err != nil {
			return err
		}
		_, err := s.recalculateTx(ctx, tx, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetOperation(ctx, userID, item.ID)
}

// UpdateOperation edits the user-owned fields. Status and dates are left to
// the lifecycle recalculation.
func (s *JournalService) UpdateOperation(ctx context.Context, userID, id uint64, in OperationInput) (*models.Operation, error) {
	if len(in.Movements) > 0 {
		return nil, fmt.Errorf("%w: movements are changed through the movement batch", ErrInvalidInput)
	}
	if err := s.validateOperation(ctx, userID, in); err != nil {
		return nil, err
	}
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		op, err := s.Repo.LockOperationTx(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if op == nil {
			return fmt.Errorf("operation %d: %w", id, ErrNotFound)
		}
		item := operationFromInput(in)
		item.ID = id
		if err := s.Repo.UpdateOperationTx(ctx, tx, item); err != nil {
			return translate(err)
		}
		if in.TagIDs != nil {
			if err := s.Repo.ReplaceOperationTagsTx(ctx, tx, id, uniqueIDs(in.TagIDs)); err != nil {
				return translate(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOperation(ctx, userID, id)
}

func (s *JournalService) DeleteOperation(ctx context.Context, userID, id uint64) error {
	return s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		op, err := s.Repo.LockOperationTx(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if op == nil {
			return fmt.Errorf("operation %d: %w", id, ErrNotFound)
		}
		return s.Repo.DeleteOperationTx(ctx, tx, id)
	})
}

// ApplyMovements applies a batch of movement changes and recalculates the
// operation once, all while holding the operation row lock. Any failure rolls
// the whole batch back.
func (s *JournalService) ApplyMovements(ctx context.Context, userID, operationID uint64, batch MovementBatch) (*models.Operation, error) {
	for _, m := range batch.Upsert {
		if err := validateMovement(m); err != nil {
			return nil, err
		}
	}
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		op, err := s.Repo.LockOperationTx(ctx, tx, userID, operationID)
		if err != nil {
			return err
		}
		if op == nil {
			return fmt.Errorf("operation %d: %w", operationID, ErrNotFound)
		}
		if err := s.applyTx(ctx, tx, operationID, batch); err != nil {
			return err
		}
		_, err = s.recalculateTx(ctx, tx, op)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetOperation(ctx, userID, operationID)
}

// Recalculate re-derives status and dates from the stored movements.
func (s *JournalService) Recalculate(ctx context.Context, userID, operationID uint64) (lifecycle.State, error) {
	var state lifecycle.State
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		op, err := s.Repo.LockOperationTx(ctx, tx, userID, operationID)
		if err != nil {
			return err
		}
		if op == nil {
			return fmt.Errorf("operation %d: %w", operationID, ErrNotFound)
		}
		state, err = s.recalculateTx(ctx, tx, op)
		return err
	})
	return state, err
}

func (s *JournalService) applyTx(ctx context.Context, tx *gorm.DB, operationID uint64, batch MovementBatch) error {
	for _, id := range batch.Delete {
		n, err := s.Repo.DeleteMovementTx(ctx, tx, operationID, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("movement %d: %w", id, ErrNotFound)
		}
	}
	for _, in := range batch.Upsert {
		if err := validateMovement(in); err != nil {
			return err
		}
		item := movementFromInput(in)
		item.OperationID = operationID
		if in.ID == 0 {
			if err := s.Repo.CreateMovementTx(ctx, tx, item); err != nil {
				return translate(err)
			}
			continue
		}
		n, err := s.Repo.UpdateMovementTx(ctx, tx, item)
		if err != nil {
			return translate(err)
		}
		if n == 0 {
			return fmt.Errorf("movement %d: %w", in.ID, ErrNotFound)
		}
	}
	return nil
}

// recalculateTx derives op's state from its stored movements and writes it
// back only when it differs from what op already holds.
func (s *JournalService) recalculateTx(ctx context.Context, tx *gorm.DB, op *models.Operation) (lifecycle.State, error) {
	operationID := op.ID
	rows, err := s.Repo.ListMovementsTx(ctx, tx, operationID)
	if err != nil {
		return lifecycle.State{}, err
	}
	movements := make([]lifecycle.Movement, 0, len(rows))
	for _, r := range rows {
		m := lifecycle.Movement{Type: lifecycle.MovementType(r.Type), Quantity: r.Quantity}
		if r.OccurredAt != nil {
			m.At = *r.OccurredAt
		}
		movements = append(movements, m)
	}
	state := lifecycle.Compute(movements)
	if state.Invalid {
		s.logger().Warn("operation movements carry no timestamps",
			zap.Uint64("operation_id", operationID),
			zap.Int("movements", len(rows)),
		)
	}
	current := lifecycle.State{Status: lifecycle.Status(op.Status), StartDate: op.StartDate, EndDate: op.EndDate}
	if state.Same(current) {
		return state, nil
	}
	err = s.Repo.SaveOperationStateTx(ctx, tx, operationID, repository.OperationState{
		Status:    string(state.Status),
		StartDate: state.StartDate,
		EndDate:   state.EndDate,
	})
	if err != nil {
		return lifecycle.State{}, err
	}
	return state, nil
}

func (s *JournalService) validateOperation(ctx context.Context, userID uint64, in OperationInput) error {
	var problems []string
	dir := strings.ToUpper(strings.TrimSpace(in.InitialOperationType))
	if dir != models.DirectionBuy && dir != models.DirectionSell {
		problems = append(problems, "initial_operation_type must be BUY or SELL")
	}
	if in.EntrySentiment != "" && !contains(models.Sentiments, strings.ToUpper(strings.TrimSpace(in.EntrySentiment))) {
		problems = append(problems, "entry_sentiment is not recognised")
	}
	if in.ExecutionRating != nil && (*in.ExecutionRating < 1 || *in.ExecutionRating > 5) {
		problems = append(problems, "execution_rating must be between 1 and 5")
	}
	for _, m := range in.Movements {
		if err := validateMovement(m); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}

	account, err := s.Repo.GetAccount(ctx, userID, in.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: account %d does not exist", ErrInvalidInput, in.AccountID)
	}
	asset, err := s.Repo.GetAsset(ctx, in.AssetID)
	if err != nil {
		return err
	}
	if asset == nil {
		return fmt.Errorf("%w: asset %d does not exist", ErrInvalidInput, in.AssetID)
	}
	if in.StrategyID != nil {
		strategy, err := s.Repo.GetStrategy(ctx, *in.StrategyID)
		if err != nil {
			return err
		}
		if strategy == nil {
			return fmt.Errorf("%w: strategy %d does not exist", ErrInvalidInput, *in.StrategyID)
		}
	}
	if len(in.TagIDs) > 0 {
		tags, err := s.Repo.ListTagsByIDs(ctx, in.TagIDs)
		if err != nil {
			return err
		}
		if len(tags) != len(uniqueIDs(in.TagIDs)) {
			return fmt.Errorf("%w: unknown tag in tag_ids", ErrInvalidInput)
		}
	}
	return nil
}

func validateMovement(m MovementInput) error {
	t := strings.ToUpper(strings.TrimSpace(m.Type))
	switch {
	case t != models.MovementEntry && t != models.MovementExit:
		return fmt.Errorf("%w: movement type must be ENTRY or EXIT", ErrInvalidInput)
	case !m.Quantity.IsPositive():
		return fmt.Errorf("%w: movement quantity must be positive", ErrInvalidInput)
	case m.Price.IsNegative():
		return fmt.Errorf("%w: movement price must not be negative", ErrInvalidInput)
	case m.Costs.IsNegative():
		return fmt.Errorf("%w: movement costs must not be negative", ErrInvalidInput)
	}
	return nil
}

func operationFromInput(in OperationInput) *models.Operation {
	sentiment := strings.ToUpper(strings.TrimSpace(in.EntrySentiment))
	return &models.Operation{
		AccountID:            in.AccountID,
		AssetID:              in.AssetID,
		StrategyID:           in.StrategyID,
		InitialOperationType: strings.ToUpper(strings.TrimSpace(in.InitialOperationType)),
		NetFinancialResult:   in.NetFinancialResult,
		PointsResult:         in.PointsResult,
		InitialStopPrice:     in.InitialStopPrice,
		InitialTargetPrice:   in.InitialTargetPrice,
		EntryReason:          in.EntryReason,
		GeneralNotes:         in.GeneralNotes,
		EntrySentiment:       sentiment,
		ExecutionRating:      in.ExecutionRating,
	}
}

func movementFromInput(in MovementInput) *models.Movement {
	var at *time.Time
	if in.OccurredAt != nil && !in.OccurredAt.IsZero() {
		t := in.OccurredAt.UTC()
		at = &t
	}
	return &models.Movement{
		ID:         in.ID,
		Type:       strings.ToUpper(strings.TrimSpace(in.Type)),
		OccurredAt: at,
		Quantity:   in.Quantity,
		Price:      in.Price,
		Costs:      in.Costs,
	}
}

func contains(items []string, v string) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
