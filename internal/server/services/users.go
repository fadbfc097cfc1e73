// Package services contains server-side business logic: the credential
// store, registration and login, session verification, the transfer
// engine and statement export.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/logging"
	"github.com/dmitrijs2005/minibank/internal/server/auth"
	"github.com/dmitrijs2005/minibank/internal/server/models"
	"golang.org/x/crypto/bcrypt"
)

// LoginLimiter decides whether another login attempt for key is allowed.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LoginResult is returned to a caller whose credentials matched.
type LoginResult struct {
	Token     string
	UID       string
	Username  string
	ExpiresAt time.Time
}

// UserService orchestrates registration, login and session checks.
type UserService struct {
	db        *sql.DB
	accounts  *AccountService
	ledger    *SessionLedger
	issuer    *auth.Issuer
	verifier  *auth.Verifier
	limiter   LoginLimiter
	log       logging.Logger
	dummyHash []byte
}

func NewUserService(db *sql.DB, accounts *AccountService, ledger *SessionLedger, issuer *auth.Issuer, verifier *auth.Verifier, limiter LoginLimiter, log logging.Logger) *UserService {
	s := &UserService{
		db:       db,
		accounts: accounts,
		ledger:   ledger,
		issuer:   issuer,
		verifier: verifier,
		limiter:  limiter,
		log:      log.With("module", "users"),
	}
	s.dummyHash = s.newDummyHash(accounts.bcryptCost)
	return s
}

// newDummyHash builds the hash compared against when the account does not
// exist, so both login failure paths cost one bcrypt comparison.
func (s *UserService) newDummyHash(cost int) []byte {
	password := []byte("not-a-real-password")
	hash, err := bcrypt.GenerateFromPassword(password, cost)
	if err == nil {
		return hash
	}
	s.log.Warn(context.Background(), "dummy hash with configured cost failed, using default cost", "cost", cost, "error", err)

	hash, err = bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("users: cannot build dummy password hash: %v", err))
	}
	return hash
}

// Register creates an account with the configured opening balance.
func (s *UserService) Register(ctx context.Context, in NewAccount) (*models.Account, error) {
	if in.UID == "" || in.Username == "" || in.Password == "" || in.Email == "" || in.Phone == "" {
		return nil, common.NewError(common.CodeValidation, "All fields are required")
	}

	a, err := s.accounts.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "account registered", "username", a.Username, "uid", a.UID)
	return a, nil
}

// Login checks the credentials, issues a token and records it in the
// session ledger. An unknown username and a wrong password are
// indistinguishable to the caller. If the ledger write fails no token is
// returned.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, common.NewError(common.CodeValidation, "Username and password are required")
	}

	if err := s.throttle(ctx, username); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.log.Info(ctx, "login rejected", "username", username)
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(account.Username, account.Role)
	if err != nil {
		s.log.Error(ctx, "token issue failed", "username", username, "error", err)
		return nil, err
	}

	if err := s.ledger.Store(ctx, s.db, token.Raw, account.UID, token.ExpiresAt); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "login succeeded", "username", username)
	return &LoginResult{
		Token:     token.Raw,
		UID:       account.UID,
		Username:  account.Username,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// VerifySession resolves a raw token to its claims using only the
// signature and expiry.
func (s *UserService) VerifySession(ctx context.Context, raw string) (*auth.Claims, error) {
	claims, err := s.verifier.Verify(raw)
	if err != nil {
		s.log.Debug(ctx, "session rejected", "code", common.CodeOf(err))
		return nil, err
	}
	return claims, nil
}

// throttle fails open when the limiter itself is unavailable.
func (s *UserService) throttle(ctx context.Context, username string) error {
	if s.limiter == nil {
		return nil
	}
	ok, err := s.limiter.Allow(ctx, username)
	if err != nil {
		s.log.Warn(ctx, "login limiter unavailable", "username", username, "error", err)
		return nil
	}
	if !ok {
		s.log.Warn(ctx, "login attempts exceeded", "username", username)
		return common.ErrRateLimited
	}
	return nil
}
