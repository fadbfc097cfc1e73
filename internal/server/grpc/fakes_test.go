package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/logging"
	"github.com/dmitrijs2005/minibank/internal/server/auth"
	"github.com/dmitrijs2005/minibank/internal/server/models"
	"github.com/dmitrijs2005/minibank/internal/server/services"
	"github.com/shopspring/decimal"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeUsers verifies real tokens so the interceptor is exercised end to end.
type fakeUsers struct {
	verifier    *auth.Verifier
	registerErr error
	loginErr    error
	registered  []services.NewAccount
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{verifier: auth.NewVerifier([]byte(testSecret))}
}

func (f *fakeUsers) Register(_ context.Context, in services.NewAccount) (*models.Account, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, in)
	return &models.Account{UID: in.UID, Username: in.Username}, nil
}

func (f *fakeUsers) Login(_ context.Context, username, _ string) (*services.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	tok, err := auth.NewIssuer([]byte(testSecret), time.Hour).Issue(username, common.DefaultRole)
	if err != nil {
		return nil, err
	}
	return &services.LoginResult{Token: tok.Raw, UID: "uid-" + username, Username: username, ExpiresAt: tok.ExpiresAt}, nil
}

func (f *fakeUsers) VerifySession(_ context.Context, raw string) (*auth.Claims, error) {
	return f.verifier.Verify(raw)
}

type transferCall struct {
	sender, receiver, amount string
}

type fakeBank struct {
	balances    map[string]decimal.Decimal
	history     []models.HistoryEntry
	transferErr error
	calls       []transferCall
	historyArgs []int
}

func newFakeBank() *fakeBank {
	return &fakeBank{balances: map[string]decimal.Decimal{
		"alice": decimal.RequireFromString("1000002.00"),
		"bob":   decimal.RequireFromString("1000002.00"),
	}}
}

func (f *fakeBank) Transfer(_ context.Context, sender, receiver, amount string) (*services.TransferResult, error) {
	f.calls = append(f.calls, transferCall{sender, receiver, amount})
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	v := decimal.RequireFromString(amount)
	f.balances[sender] = f.balances[sender].Sub(v)
	f.balances[receiver] = f.balances[receiver].Add(v)
	return &services.TransferResult{
		Transfer: models.Transfer{
			ID:               7,
			SenderUsername:   sender,
			ReceiverUsername: receiver,
			Amount:           v,
			Type:             models.TransferTypeTransfer,
			Status:           models.TransferStatusComplete,
		},
		SenderBalance:   f.balances[sender],
		ReceiverBalance: f.balances[receiver],
	}, nil
}

func (f *fakeBank) GetBalance(_ context.Context, username string) (decimal.Decimal, error) {
	b, ok := f.balances[username]
	if !ok {
		return decimal.Zero, common.ErrNotFound
	}
	return b, nil
}

func (f *fakeBank) GetHistory(_ context.Context, _ string, limit int) ([]models.HistoryEntry, error) {
	f.historyArgs = append(f.historyArgs, limit)
	return f.history, nil
}

type fakeStatements struct {
	err error
}

func (f *fakeStatements) Export(_ context.Context, username string, _ int) (*services.Statement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.Statement{
		Key:       "statements/" + username + "/s.json",
		URL:       "http://s3.local/statements/" + username + "/s.json?sig=1",
		ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func newTestServer() (*GRPCServer, *fakeUsers, *fakeBank, *fakeStatements) {
	u, b, st := newFakeUsers(), newFakeBank(), &fakeStatements{}
	return NewGRPCServer("127.0.0.1:0", nopLogger{}, u, b, st), u, b, st
}
