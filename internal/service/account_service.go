package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"finboard/internal/fx"
	"finboard/internal/ledger"
	"finboard/internal/models"
	"finboard/internal/repository"
)

// AccountService manages accounts and replays their balances. Balances are
// rebuilt from storage on every call.
type AccountService struct {
	Repo   repository.Repository
	FX     *fx.Converter
	Logger *zap.Logger
}

type AccountInput struct {
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	IsActive       *bool           `json:"is_active"`
}

type TransactionInput struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  *time.Time      `json:"occurred_at"`
	Description string          `json:"description"`
}

// AccountLedger is an account with its replayed history.
type AccountLedger struct {
	Account    models.Account      `json:"account"`
	Balance    decimal.Decimal     `json:"current_balance"`
	History    []ledger.Entry      `json:"history"`
	Conversion fx.ConversionReport `json:"conversion"`
}

func (s *AccountService) ListAccounts(ctx context.Context, params repository.ListAccountsParams) ([]models.Account, int64, error) {
	items, err := s.Repo.ListAccounts(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountAccounts(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *AccountService) CreateAccount(ctx context.Context, userID uint64, in AccountInput) (*models.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.baseCurrency()
	}
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3 letter code", ErrInvalidInput)
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	item := &models.Account{
		UserID:         userID,
		Name:           name,
		Currency:       currency,
		InitialBalance: in.InitialBalance.Round(2),
		IsActive:       active,
	}
	if err := s.Repo.CreateAccount(ctx, item); err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (s *AccountService) GetAccount(ctx context.Context, userID, id uint64) (*models.Account, error) {
	item, err := s.Repo.GetAccount(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return item, nil
}

// DeleteAccount removes the account with its transactions. Accounts still
// referenced by operations are kept.
func (s *AccountService) DeleteAccount(ctx context.Context, userID, id uint64) error {
	if _, err := s.GetAccount(ctx, userID, id); err != nil {
		return err
	}
	return s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		n, err := s.Repo.CountOperationsTx(ctx, tx, repository.OperationRef{AccountID: id})
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: account %d has %d operations", ErrIntegrityConflict, id, n)
		}
		return s.Repo.DeleteAccountTx(ctx, tx, id)
	})
}

func (s *AccountService) AddTransaction(ctx context.Context, userID, accountID uint64, in TransactionInput) (*models.Transaction, error) {
	if _, err := s.GetAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}
	kind := strings.ToUpper(strings.TrimSpace(in.Type))
	if kind != models.TransactionDeposit && kind != models.TransactionWithdrawal {
		return nil, fmt.Errorf("%w: type must be DEPOSIT or WITHDRAWAL", ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	at := time.Now().UTC()
	if in.OccurredAt != nil && !in.OccurredAt.IsZero() {
		at = in.OccurredAt.UTC()
	}
	item := &models.Transaction{
		AccountID:   accountID,
		Type:        kind,
		Amount:      in.Amount.Round(2),
		OccurredAt:  at,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.Repo.CreateTransaction(ctx, item); err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (s *AccountService) DeleteTransaction(ctx context.Context, userID, id uint64) error {
	item, err := s.Repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if _, err := s.GetAccount(ctx, userID, item.AccountID); err != nil {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return s.Repo.DeleteTransaction(ctx, id)
}

func (s *AccountService) CurrentBalance(ctx context.Context, userID, accountID uint64) (decimal.Decimal, error) {
	account, err := s.GetAccount(ctx, userID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	events, _, err := s.events(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Current(account.InitialBalance, events), nil
}

func (s *AccountService) BalanceHistory(ctx context.Context, userID, accountID uint64) ([]ledger.Entry, error) {
	l, err := s.Ledger(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	return l.History, nil
}

// Ledger replays the account once and returns both the running history and
// the resulting balance.
func (s *AccountService) Ledger(ctx context.Context, userID, accountID uint64) (*AccountLedger, error) {
	account, err := s.GetAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	return s.replay(ctx, account)
}

func (s *AccountService) replay(ctx context.Context, account *models.Account) (*AccountLedger, error) {
	events, report, err := s.events(ctx, account)
	if err != nil {
		return nil, err
	}
	return &AccountLedger{
		Account:    *account,
		Balance:    ledger.Current(account.InitialBalance, events),
		History:    ledger.Replay(account.InitialBalance, events),
		Conversion: report,
	}, nil
}

// events merges transactions and closed operation results. Operation results
// are converted into the base currency at their end date.
func (s *AccountService) events(ctx context.Context, account *models.Account) ([]ledger.Event, fx.ConversionReport, error) {
	var report fx.ConversionReport
	txs, err := s.Repo.ListTransactionsByAccount(ctx, account.ID)
	if err != nil {
		return nil, report, err
	}
	accountID := account.ID
	trades, err := s.Repo.ListClosedTrades(ctx, repository.ClosedTradesParams{UserID: account.UserID, AccountID: &accountID})
	if err != nil {
		return nil, report, err
	}

	events := make([]ledger.Event, 0, len(txs)+len(trades))
	for _, t := range txs {
		if t.Type == models.TransactionWithdrawal {
			events = append(events, ledger.Withdrawal(t.ID, t.OccurredAt, t.Amount, t.Description))
			continue
		}
		events = append(events, ledger.Deposit(t.ID, t.OccurredAt, t.Amount, t.Description))
	}
	for _, tr := range trades {
		if tr.NetFinancialResult == nil || tr.EndDate == nil {
			report.AddSkipped()
			continue
		}
		amount := *tr.NetFinancialResult
		if s.FX != nil {
			var ok bool
			amount, ok = s.FX.ToBase(ctx, amount, tr.Currency, *tr.EndDate)
			if !ok {
				report.AddDegraded(tr.Currency)
			}
		}
		events = append(events, ledger.OperationResult(tr.OperationID, *tr.EndDate, amount))
	}
	return ledger.Sequence(events), report, nil
}

func (s *AccountService) baseCurrency() string {
	if s.FX != nil && s.FX.BaseCurrency() != "" {
		return s.FX.BaseCurrency()
	}
	return "BRL"
}
