package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/minibank/internal/bankapi"
)

type NewAccount struct {
	UID      string
	Username string
	Password string
	Email    string
	Phone    string
}

type LoginResult struct {
	Token     string
	UID       string
	ExpiresAt time.Time
}

type TransferResult struct {
	ID              int64
	Message         string
	SenderBalance   string
	ReceiverBalance string
}

type Statement struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// Client is the API contract the CLI services talk to.
type Client interface {
	Register(ctx context.Context, in NewAccount) (string, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	VerifySession(ctx context.Context, token string) (string, error)
	Ping(ctx context.Context) error
	Balance(ctx context.Context) (string, error)
	Transfer(ctx context.Context, receiver, amount string) (*TransferResult, error)
	History(ctx context.Context, limit int) ([]bankapi.HistoryEntry, error)
	Statement(ctx context.Context, limit int) (*Statement, error)
	SetAccessToken(token string)
	Close() error
}
