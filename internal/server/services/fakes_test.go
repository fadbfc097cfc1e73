package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/dbx"
	"github.com/dmitrijs2005/minibank/internal/logging"
	"github.com/dmitrijs2005/minibank/internal/server/config"
	"github.com/dmitrijs2005/minibank/internal/server/models"
	"github.com/dmitrijs2005/minibank/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/minibank/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/minibank/internal/server/repositories/transfers"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memStore is an in-memory stand-in for the three Postgres repositories.
type memStore struct {
	mu        sync.Mutex
	accounts  map[string]*models.Account
	transfers []models.Transfer
	sessions  []models.SessionToken
	nextID    int64
	locked    []string

	existsErr         error
	createAccountErr  error
	getErr            error
	adjustErr         map[string]error
	createTransferErr error
	listErr           error
	createSessionErr  error
}

func newMemStore() *memStore {
	return &memStore{accounts: map[string]*models.Account{}, adjustErr: map[string]error{}}
}

func (s *memStore) put(username, balance string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = &models.Account{
		UID:      "uid-" + username,
		Username: username,
		Email:    username + "@example.com",
		Role:     common.DefaultRole,
		Balance:  decimal.RequireFromString(balance),
	}
}

func (s *memStore) balance(username string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[username].Balance
}

func (s *memStore) total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, a := range s.accounts {
		sum = sum.Add(a.Balance)
	}
	return sum
}

type memAccounts struct{ s *memStore }

func (r *memAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createAccountErr != nil {
		return nil, r.s.createAccountErr
	}
	for _, existing := range r.s.accounts {
		if existing.Username == a.Username || existing.Email == a.Email || existing.UID == a.UID {
			return nil, common.ErrorAlreadyExists
		}
	}
	cp := *a
	cp.CreatedAt = time.Now()
	r.s.accounts[a.Username] = &cp
	return &cp, nil
}

func (r *memAccounts) Exists(_ context.Context, username, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.existsErr != nil {
		return false, r.s.existsErr
	}
	for _, a := range r.s.accounts {
		if (username != "" && a.Username == username) || (email != "" && a.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAccounts) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.getErr != nil {
		return nil, r.s.getErr
	}
	a, ok := r.s.accounts[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAccounts) GetBalance(_ context.Context, username string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.getErr != nil {
		return decimal.Zero, r.s.getErr
	}
	a, ok := r.s.accounts[username]
	if !ok {
		return decimal.Zero, common.ErrorNotFound
	}
	return a.Balance, nil
}

func (r *memAccounts) GetBalanceForUpdate(ctx context.Context, username string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	r.s.locked = append(r.s.locked, username)
	r.s.mu.Unlock()
	return r.GetBalance(ctx, username)
}

func (r *memAccounts) AdjustBalance(_ context.Context, username string, delta decimal.Decimal) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.adjustErr[username]; err != nil {
		return decimal.Zero, err
	}
	a, ok := r.s.accounts[username]
	if !ok {
		return decimal.Zero, common.ErrorNotFound
	}
	a.Balance = a.Balance.Add(delta)
	return a.Balance, nil
}

type memTransfers struct{ s *memStore }

func (r *memTransfers) Create(_ context.Context, t *models.Transfer) (*models.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createTransferErr != nil {
		return nil, r.s.createTransferErr
	}
	r.s.nextID++
	cp := *t
	cp.ID = r.s.nextID
	cp.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(cp.ID) * time.Minute)
	r.s.transfers = append(r.s.transfers, cp)
	return &cp, nil
}

func (r *memTransfers) ListByUsername(_ context.Context, username string, limit int) ([]models.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.listErr != nil {
		return nil, r.s.listErr
	}
	var out []models.Transfer
	for _, t := range r.s.transfers {
		if t.SenderUsername == username || t.ReceiverUsername == username {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memSessions struct{ s *memStore }

func (r *memSessions) Create(_ context.Context, t *models.SessionToken) (*models.SessionToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createSessionErr != nil {
		return nil, r.s.createSessionErr
	}
	r.s.nextID++
	cp := *t
	cp.ID = r.s.nextID
	r.s.sessions = append(r.s.sessions, cp)
	return &cp, nil
}

func (r *memSessions) Exists(_ context.Context, token string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.sessions {
		if t.Token == token {
			return true, nil
		}
	}
	return false, nil
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return &memAccounts{m.s} }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository        { return &memSessions{m.s} }
func (m *fakeRepoManager) Transfers(dbx.DBTX) transfers.Repository      { return &memTransfers{m.s} }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = testSecret
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// expectTx registers one Begin followed by Commit or Rollback.
func expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func newAccountService(db *sql.DB, store *memStore) *AccountService {
	return NewAccountService(db, &fakeRepoManager{store}, testConfig(), logging.Discard())
}

func newTransferService(db *sql.DB, store *memStore) *TransferService {
	cfg := testConfig()
	return NewTransferService(db, &fakeRepoManager{store}, newAccountService(db, store), cfg, logging.Discard())
}

func lockedOrder(s *memStore) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.locked, ",")
}

func transferRecord(sender, receiver, amount string) *models.Transfer {
	return &models.Transfer{
		SenderUsername:   sender,
		ReceiverUsername: receiver,
		Amount:           decimal.RequireFromString(amount),
		Type:             models.TransferTypeTransfer,
		Status:           models.TransferStatusComplete,
	}
}
