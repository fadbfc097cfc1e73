package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/dbx"
	"github.com/dmitrijs2005/minibank/internal/logging"
	"github.com/dmitrijs2005/minibank/internal/money"
	"github.com/dmitrijs2005/minibank/internal/server/config"
	"github.com/dmitrijs2005/minibank/internal/server/models"
	"github.com/dmitrijs2005/minibank/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/minibank/internal/server/validation"
	"github.com/shopspring/decimal"
)

// TransferResult describes a committed transfer.
type TransferResult struct {
	Transfer        models.Transfer
	SenderBalance   decimal.Decimal
	ReceiverBalance decimal.Decimal
}

// TransferService moves money between accounts and reads balances and
// history.
type TransferService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	accounts        *AccountService
	log             logging.Logger
	historyLimit    int
	maxHistoryLimit int
}

func NewTransferService(db *sql.DB, m repomanager.RepositoryManager, accounts *AccountService, cfg *config.Config, log logging.Logger) *TransferService {
	return &TransferService{
		db:              db,
		repomanager:     m,
		accounts:        accounts,
		log:             log.With("module", "transfers"),
		historyLimit:    cfg.HistoryLimit,
		maxHistoryLimit: cfg.MaxHistoryLimit,
	}
}

// Transfer debits sender, credits receiver and appends a completed
// transfer record in one READ COMMITTED transaction. Both rows are locked
// in username order and the sender balance is checked under the lock.
func (s *TransferService) Transfer(ctx context.Context, sender, receiver, amount string) (*TransferResult, error) {
	if err := validation.Username(sender); err != nil {
		return nil, err
	}
	if err := validation.Username(receiver); err != nil {
		return nil, err
	}
	value, err := money.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	if sender == receiver {
		return nil, common.ErrInvalidTransfer
	}

	var result *TransferResult
	err = dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		balances, err := adjustLocked(ctx, s.repomanager.Accounts(tx), sender, value.Neg(), receiver, value)
		if err != nil {
			return err
		}

		record, err := s.repomanager.Transfers(tx).Create(ctx, &models.Transfer{
			SenderUsername:   sender,
			ReceiverUsername: receiver,
			Amount:           value,
			Type:             models.TransferTypeTransfer,
			Status:           models.TransferStatusComplete,
		})
		if err != nil {
			return err
		}

		result = &TransferResult{
			Transfer:        *record,
			SenderBalance:   balances.Sender,
			ReceiverBalance: balances.Receiver,
		}
		return nil
	})
	if err != nil {
		var insufficient *InsufficientBalanceError
		if errors.As(err, &insufficient) {
			s.log.Info(ctx, "transfer rejected", "sender", sender, "receiver", receiver, "amount", money.Format(value), "code", common.CodeInsufficientBalance)
			return nil, err
		}
		return nil, s.accounts.classify(ctx, "transfer", err, "sender", sender, "receiver", receiver, "amount", money.Format(value))
	}

	s.log.Info(ctx, "transfer committed",
		"id", result.Transfer.ID, "sender", sender, "receiver", receiver, "amount", money.Format(value))
	return result, nil
}

func (s *TransferService) GetBalance(ctx context.Context, username string) (decimal.Decimal, error) {
	if err := validation.Username(username); err != nil {
		return decimal.Zero, err
	}
	return s.accounts.GetBalance(ctx, username)
}

// GetHistory lists transfers touching username, newest first. A limit of
// zero or less means the configured default; larger limits are capped.
func (s *TransferService) GetHistory(ctx context.Context, username string, limit int) ([]models.HistoryEntry, error) {
	if err := validation.Username(username); err != nil {
		return nil, err
	}
	limit = s.effectiveLimit(limit)

	records, err := s.repomanager.Transfers(s.db).ListByUsername(ctx, username, limit)
	if err != nil {
		s.log.Error(ctx, "history lookup failed", "username", username, "error", err)
		return nil, dbFault(err)
	}

	entries := make([]models.HistoryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, models.HistoryEntry{Transfer: r, Direction: r.DirectionFor(username)})
	}
	return entries, nil
}

func (s *TransferService) effectiveLimit(limit int) int {
	if limit <= 0 {
		limit = s.historyLimit
	}
	if limit > s.maxHistoryLimit {
		return s.maxHistoryLimit
	}
	return limit
}
