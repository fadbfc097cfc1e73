package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/dbx"
	"github.com/dmitrijs2005/minibank/internal/logging"
	"github.com/dmitrijs2005/minibank/internal/server/models"
	"github.com/dmitrijs2005/minibank/internal/server/repositories/repomanager"
)

// SessionLedger records issued tokens for audit. Authorization never
// consults it.
type SessionLedger struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewSessionLedger(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *SessionLedger {
	return &SessionLedger{db: db, repomanager: m, log: log.With("module", "sessions")}
}

// Store appends one ledger record using db, which may be an open
// transaction.
func (l *SessionLedger) Store(ctx context.Context, db dbx.DBTX, token, uid string, expiresAt time.Time) error {
	if token == "" || uid == "" || expiresAt.IsZero() {
		return common.NewError(common.CodeInvalidArgument, "token, uid and expiry are required")
	}
	_, err := l.repomanager.Sessions(db).Create(ctx, &models.SessionToken{
		Token:     token,
		UID:       uid,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		l.log.Error(ctx, "session ledger write failed", "uid", uid, "error", err)
		return dbFault(err)
	}
	return nil
}

func (l *SessionLedger) Exists(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	ok, err := l.repomanager.Sessions(l.db).Exists(ctx, token)
	if err != nil {
		l.log.Error(ctx, "session ledger lookup failed", "error", err)
		return false, dbFault(err)
	}
	return ok, nil
}
