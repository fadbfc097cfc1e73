package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/minibank/internal/bankapi"
	"github.com/dmitrijs2005/minibank/internal/client/client"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	registerErr error
	loginErr    error
	verifyErr   error
	pingErr     error
	balanceErr  error
	transferErr error

	loginRet     *client.LoginResult
	subject      string
	history      []bankapi.HistoryEntry
	statement    *client.Statement
	statementErr error

	lastRegister client.NewAccount
	lastLogin    [2]string
	lastTransfer [2]string
	lastLimit    int
	accessToken  string
	verified     []string
	closed       bool
}

func (f *fakeClient) Register(_ context.Context, in client.NewAccount) (string, error) {
	f.lastRegister = in
	if f.registerErr != nil {
		return "", f.registerErr
	}
	return in.UID, nil
}

func (f *fakeClient) Login(_ context.Context, username, password string) (*client.LoginResult, error) {
	f.lastLogin = [2]string{username, password}
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.accessToken = f.loginRet.Token
	return f.loginRet, nil
}

func (f *fakeClient) VerifySession(_ context.Context, token string) (string, error) {
	f.verified = append(f.verified, token)
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return f.subject, nil
}

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func (f *fakeClient) Balance(context.Context) (string, error) {
	if f.balanceErr != nil {
		return "", f.balanceErr
	}
	return "1000002.00", nil
}

func (f *fakeClient) Transfer(_ context.Context, receiver, amount string) (*client.TransferResult, error) {
	f.lastTransfer = [2]string{receiver, amount}
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	return &client.TransferResult{ID: 1, Message: "ok", SenderBalance: "999502.00", ReceiverBalance: "1000502.00"}, nil
}

func (f *fakeClient) History(_ context.Context, limit int) ([]bankapi.HistoryEntry, error) {
	f.lastLimit = limit
	return f.history, nil
}

func (f *fakeClient) Statement(_ context.Context, limit int) (*client.Statement, error) {
	f.lastLimit = limit
	if f.statementErr != nil {
		return nil, f.statementErr
	}
	return f.statement, nil
}

func (f *fakeClient) SetAccessToken(token string) { f.accessToken = token }

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func aliceLogin() *client.LoginResult {
	return &client.LoginResult{Token: "tok-alice", UID: "u-1", ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
}
