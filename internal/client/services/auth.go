// Package services contains application services for the minibank client:
// authentication with a persisted session, and the banking commands.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/minibank/internal/client/client"
	"github.com/dmitrijs2005/minibank/internal/client/repositories/session"
	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/dbx"
	"github.com/google/uuid"
)

const (
	keyUsername  = "username"
	keyUID       = "uid"
	keyToken     = "token"
	keyExpiresAt = "expires_at"
)

// Session is the logged-in state kept in the local metadata table.
type Session struct {
	Username  string
	UID       string
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the session token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuthService defines authentication operations for the CLI.
//
// Login stores the session locally and Restore brings it back on the next
// start. Logout forgets it. Every method honors context cancellation.
type AuthService interface {
	Register(ctx context.Context, in client.NewAccount) (string, error)
	Login(ctx context.Context, username string, password []byte) (*Session, error)
	Restore(ctx context.Context) (*Session, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
	now    func() time.Time
}

func NewAuthService(c client.Client, db *sql.DB) AuthService {
	return &authService{client: c, db: db, now: time.Now}
}

func (a *authService) repo(db dbx.DBTX) session.Repository {
	return session.NewSQLiteRepository(db)
}

// Register creates the account on the server. An empty UID is generated.
func (a *authService) Register(ctx context.Context, in client.NewAccount) (string, error) {
	if in.UID == "" {
		in.UID = uuid.NewString()
	}
	return a.client.Register(ctx, in)
}

// Login authenticates against the server and persists the session.
func (a *authService) Login(ctx context.Context, username string, password []byte) (*Session, error) {
	res, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		return nil, err
	}

	s := &Session{Username: username, UID: res.UID, Token: res.Token, ExpiresAt: res.ExpiresAt}
	if err := a.saveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return s, nil
}

func (a *authService) saveSession(ctx context.Context, s *Session) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := a.repo(tx)
		if err := r.Set(ctx, keyUsername, []byte(s.Username)); err != nil {
			return err
		}
		if err := r.Set(ctx, keyUID, []byte(s.UID)); err != nil {
			return err
		}
		if err := r.Set(ctx, keyToken, []byte(s.Token)); err != nil {
			return err
		}
		return r.Set(ctx, keyExpiresAt, []byte(s.ExpiresAt.UTC().Format(time.RFC3339)))
	})
}

func (a *authService) loadSession(ctx context.Context) (*Session, error) {
	r := a.repo(a.db)

	token, err := r.Get(ctx, keyToken)
	if err != nil || len(token) == 0 {
		return nil, err
	}
	username, err := r.Get(ctx, keyUsername)
	if err != nil {
		return nil, err
	}
	uid, err := r.Get(ctx, keyUID)
	if err != nil {
		return nil, err
	}
	exp, err := r.Get(ctx, keyExpiresAt)
	if err != nil {
		return nil, err
	}

	s := &Session{Username: string(username), UID: string(uid), Token: string(token)}
	if len(exp) > 0 {
		if s.ExpiresAt, err = time.Parse(time.RFC3339, string(exp)); err != nil {
			return nil, fmt.Errorf("bad stored expiry: %w", err)
		}
	}
	return s, nil
}

// Restore loads the saved session. An expired session, or one the server
// rejects, is cleared and nil is returned. When the server is unreachable
// the saved session is kept.
func (a *authService) Restore(ctx context.Context) (*Session, error) {
	s, err := a.loadSession(ctx)
	if err != nil || s == nil {
		return nil, err
	}

	if s.Expired(a.now()) {
		return nil, a.Logout(ctx)
	}

	subject, err := a.client.VerifySession(ctx, s.Token)
	switch {
	case err == nil:
		s.Username = subject
	case errors.Is(err, client.ErrUnavailable):
	case errors.Is(err, common.ErrTokenInvalid), errors.Is(err, common.ErrTokenMissing):
		return nil, a.Logout(ctx)
	default:
		return nil, err
	}

	a.client.SetAccessToken(s.Token)
	return s, nil
}

// Logout forgets the token locally. Tokens are never revoked server-side;
// they lapse at expiry.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	return a.repo(a.db).Clear(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
