package services

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/dbx"
	"github.com/dmitrijs2005/minibank/internal/logging"
	"github.com/dmitrijs2005/minibank/internal/server/config"
	"github.com/dmitrijs2005/minibank/internal/server/models"
	"github.com/dmitrijs2005/minibank/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/minibank/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/minibank/internal/server/validation"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// NewAccount carries the fields supplied at registration.
type NewAccount struct {
	UID      string
	Username string
	Password string
	Email    string
	Phone    string
}

// Balances are the post-transfer balances of both parties.
type Balances struct {
	Sender   decimal.Decimal
	Receiver decimal.Decimal
}

// AccountService is the credential store: it owns account records and is
// the only place balances are written.
type AccountService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	log            logging.Logger
	minPassword    int
	bcryptCost     int
	openingBalance decimal.Decimal
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *AccountService {
	return &AccountService{
		db:             db,
		repomanager:    m,
		log:            log.With("module", "accounts"),
		minPassword:    cfg.MinPasswordLength,
		bcryptCost:     cfg.BcryptCost,
		openingBalance: cfg.OpeningBalance,
	}
}

// Exists reports whether an account uses username or email. At least one
// of them must be given.
func (s *AccountService) Exists(ctx context.Context, username, email string) (bool, error) {
	if username == "" && email == "" {
		return false, common.NewError(common.CodeInvalidArgument, "username or email is required")
	}
	ok, err := s.repomanager.Accounts(s.db).Exists(ctx, username, email)
	if err != nil {
		s.log.Error(ctx, "account lookup failed", "username", username, "error", err)
		return false, dbFault(err)
	}
	return ok, nil
}

// Validate checks the shape of every registration field.
func (s *AccountService) Validate(in NewAccount) error {
	checks := []error{
		validation.UID(in.UID),
		validation.Username(in.Username),
		validation.Password(in.Password, s.minPassword),
		validation.Email(in.Email),
		validation.Phone(in.Phone),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// Create validates in, hashes the password and stores the account with the
// configured opening balance.
func (s *AccountService) Create(ctx context.Context, in NewAccount) (*models.Account, error) {
	if err := s.Validate(in); err != nil {
		return nil, err
	}

	taken, err := s.Exists(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, common.ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		s.log.Error(ctx, "password hashing failed", "username", in.Username, "error", err)
		return nil, common.WrapError(common.CodeInternal, common.ErrInternal.Message, err)
	}

	account, err := s.repomanager.Accounts(s.db).Create(ctx, &models.Account{
		UID:          in.UID,
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         common.DefaultRole,
		Balance:      s.openingBalance,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrDuplicateUser
		}
		s.log.Error(ctx, "account insert failed", "username", in.Username, "error", err)
		return nil, dbFault(err)
	}

	return account, nil
}

func (s *AccountService) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	a, err := s.repomanager.Accounts(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotFound
		}
		s.log.Error(ctx, "account lookup failed", "username", username, "error", err)
		return nil, dbFault(err)
	}
	return a, nil
}

func (s *AccountService) GetBalance(ctx context.Context, username string) (decimal.Decimal, error) {
	b, err := s.repomanager.Accounts(s.db).GetBalance(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return decimal.Zero, common.ErrNotFound
		}
		s.log.Error(ctx, "balance lookup failed", "username", username, "error", err)
		return decimal.Zero, dbFault(err)
	}
	return b, nil
}

// AdjustBalances applies both deltas in one transaction. Neither balance
// may end up negative.
func (s *AccountService) AdjustBalances(ctx context.Context, sender string, senderDelta decimal.Decimal, receiver string, receiverDelta decimal.Decimal) (*Balances, error) {
	var out *Balances
	err := dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		out, err = adjustLocked(ctx, s.repomanager.Accounts(tx), sender, senderDelta, receiver, receiverDelta)
		return err
	})
	if err != nil {
		return nil, s.classify(ctx, "adjust balances", err, "sender", sender, "receiver", receiver)
	}
	return out, nil
}

// classify passes coded rejections through and turns anything else into a
// logged DATABASE_ERROR.
func (s *AccountService) classify(ctx context.Context, op string, err error, args ...any) error {
	var coded common.Coded
	if errors.As(err, &coded) {
		return err
	}
	s.log.Error(ctx, op+" failed", append(args, "error", err)...)
	return dbFault(err)
}

// lockAccounts takes row locks on every username in ascending order and
// returns the balances read under the lock. Unknown usernames are left out
// of the result.
func lockAccounts(ctx context.Context, repo accounts.Repository, usernames ...string) (map[string]decimal.Decimal, error) {
	ordered := slices.Clone(usernames)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	balances := make(map[string]decimal.Decimal, len(ordered))
	for _, u := range ordered {
		b, err := repo.GetBalanceForUpdate(ctx, u)
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		balances[u] = b
	}
	return balances, nil
}

// adjustLocked locks both rows, re-reads the balances under the lock and
// applies the deltas. It must run inside a transaction.
func adjustLocked(ctx context.Context, repo accounts.Repository, sender string, senderDelta decimal.Decimal, receiver string, receiverDelta decimal.Decimal) (*Balances, error) {
	balances, err := lockAccounts(ctx, repo, sender, receiver)
	if err != nil {
		return nil, err
	}

	senderBalance, ok := balances[sender]
	if !ok {
		return nil, common.ErrSenderNotFound
	}
	receiverBalance, ok := balances[receiver]
	if !ok {
		return nil, common.ErrReceiverNotFound
	}
	if senderBalance.Add(senderDelta).IsNegative() {
		return nil, &InsufficientBalanceError{Available: senderBalance}
	}
	if receiverBalance.Add(receiverDelta).IsNegative() {
		return nil, &InsufficientBalanceError{Available: receiverBalance}
	}

	newSender, err := repo.AdjustBalance(ctx, sender, senderDelta)
	if err != nil {
		return nil, err
	}
	newReceiver, err := repo.AdjustBalance(ctx, receiver, receiverDelta)
	if err != nil {
		return nil, err
	}
	return &Balances{Sender: newSender, Receiver: newReceiver}, nil
}
