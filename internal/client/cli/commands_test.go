package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/minibank/internal/bankapi"
	"github.com/dmitrijs2005/minibank/internal/client/client"
	"github.com/dmitrijs2005/minibank/internal/client/config"
	"github.com/dmitrijs2005/minibank/internal/client/services"
	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubInputs(t *testing.T, answers []string, password string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		i++
		return answers[i-1], nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeAuth struct {
	regIn    client.NewAccount
	regErr   error
	loginU   string
	loginP   string
	session  *services.Session
	loginErr error
	restored *services.Session
	logouts  int
	pingErr  error
	closed   bool
}

func (f *fakeAuth) Register(_ context.Context, in client.NewAccount) (string, error) {
	f.regIn = in
	return "u-generated", f.regErr
}

func (f *fakeAuth) Login(_ context.Context, username string, password []byte) (*services.Session, error) {
	f.loginU, f.loginP = username, string(password)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.session, nil
}

func (f *fakeAuth) Restore(context.Context) (*services.Session, error) { return f.restored, nil }
func (f *fakeAuth) Logout(context.Context) error {
	f.logouts++
	return nil
}
func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }
func (f *fakeAuth) Close(context.Context) error {
	f.closed = true
	return nil
}

type fakeBank struct {
	transferArgs [2]string
	transferErr  error
	limit        int
	save         bool
	history      []bankapi.HistoryEntry
	statement    *services.StatementFile
}

func (f *fakeBank) Balance(context.Context) (string, error) { return "1000002.00", nil }

func (f *fakeBank) Transfer(_ context.Context, receiver, amount string) (*client.TransferResult, error) {
	f.transferArgs = [2]string{receiver, amount}
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	return &client.TransferResult{Message: "Successfully transferred 500.00 to bob", SenderBalance: "999502.00"}, nil
}

func (f *fakeBank) History(_ context.Context, limit int) ([]bankapi.HistoryEntry, error) {
	f.limit = limit
	return f.history, nil
}

func (f *fakeBank) Statement(_ context.Context, limit int, save bool) (*services.StatementFile, error) {
	f.limit, f.save = limit, save
	return f.statement, nil
}

func newTestApp(auth *fakeAuth, bank *fakeBank) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{
		config: &config.Config{RequestTimeout: time.Second},
		auth:   auth,
		bank:   bank,
		reader: bufio.NewReader(strings.NewReader("")),
		out:    &out,
	}, &out
}

func aliceSession() *services.Session {
	return &services.Session{Username: "alice", UID: "u-1", Token: "tok", ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestRegister(t *testing.T) {
	auth := &fakeAuth{}
	a, out := newTestApp(auth, &fakeBank{})
	stubInputs(t, []string{"alice", "alice@example.com", "5551234567"}, "secret1")

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, client.NewAccount{Username: "alice", Password: "secret1", Email: "alice@example.com", Phone: "5551234567"}, auth.regIn)
	assert.Contains(t, out.String(), "Registered alice (uid u-generated)")
}

func TestRegister_Rejected(t *testing.T) {
	auth := &fakeAuth{regErr: common.ErrDuplicateUser}
	a, _ := newTestApp(auth, &fakeBank{})
	stubInputs(t, []string{"alice", "a@b.c", "5551234567"}, "secret1")

	require.ErrorIs(t, a.Register(context.Background()), common.ErrDuplicateUser)
}

func TestLoginWhoamiLogout(t *testing.T) {
	auth := &fakeAuth{session: aliceSession()}
	a, out := newTestApp(auth, &fakeBank{})
	stubInputs(t, []string{"alice"}, "secret1")
	ctx := context.Background()

	require.NoError(t, a.Whoami(ctx))
	assert.Contains(t, out.String(), "Not logged in")

	require.NoError(t, a.Login(ctx))
	assert.Equal(t, "alice", auth.loginU)
	assert.Equal(t, "secret1", auth.loginP)
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(alice online)", a.getStatus())

	out.Reset()
	require.NoError(t, a.Whoami(ctx))
	assert.Contains(t, out.String(), "alice (uid u-1)")

	require.NoError(t, a.Logout(ctx))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, 1, auth.logouts)
}

func TestLogin_Rejected(t *testing.T) {
	auth := &fakeAuth{loginErr: common.ErrInvalidCredentials}
	a, _ := newTestApp(auth, &fakeBank{})
	stubInputs(t, []string{"alice"}, "nope")

	require.ErrorIs(t, a.Login(context.Background()), common.ErrInvalidCredentials)
	assert.False(t, a.isLoggedIn())
}

func TestBalanceAndTransfer(t *testing.T) {
	bank := &fakeBank{}
	a, out := newTestApp(&fakeAuth{}, bank)
	ctx := context.Background()

	require.NoError(t, a.Balance(ctx))
	assert.Contains(t, out.String(), "Balance: 1000002.00")

	require.NoError(t, a.Transfer(ctx, []string{"bob", "500.00"}))
	assert.Equal(t, [2]string{"bob", "500.00"}, bank.transferArgs)
	assert.Contains(t, out.String(), "Successfully transferred 500.00 to bob")
	assert.Contains(t, out.String(), "Your balance: 999502.00")

	require.Error(t, a.Transfer(ctx, []string{"bob"}))

	bank.transferErr = common.ErrInvalidTransfer
	require.ErrorIs(t, a.Transfer(ctx, []string{"alice", "1"}), common.ErrInvalidTransfer)
}

func TestHistory(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bank := &fakeBank{history: []bankapi.HistoryEntry{
		{ID: 2, Sender: "bob", Receiver: "alice", Amount: "1.50", Direction: "received", Status: "completed", CreatedAt: at},
		{ID: 1, Sender: "alice", Receiver: "carol", Amount: "500.00", Direction: "sent", Status: "completed", CreatedAt: at},
	}}
	a, out := newTestApp(&fakeAuth{}, bank)

	require.NoError(t, a.History(context.Background(), []string{"5"}))
	assert.Equal(t, 5, bank.limit)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "received")
	assert.Contains(t, lines[1], "bob")
	assert.Contains(t, lines[2], "carol")

	require.Error(t, a.History(context.Background(), []string{"x"}))
	require.Error(t, a.History(context.Background(), []string{"0"}))
	require.Error(t, a.History(context.Background(), []string{"1", "2"}))
}

func TestHistory_Empty(t *testing.T) {
	a, out := newTestApp(&fakeAuth{}, &fakeBank{})
	require.NoError(t, a.History(context.Background(), nil))
	assert.Contains(t, out.String(), "No transfers yet")
}

func TestStatement(t *testing.T) {
	bank := &fakeBank{statement: &services.StatementFile{Key: "statements/alice/x.json", URL: "http://s3/x"}}
	a, out := newTestApp(&fakeAuth{}, bank)
	ctx := context.Background()

	require.NoError(t, a.Statement(ctx, nil))
	assert.False(t, bank.save)
	assert.Contains(t, out.String(), "http://s3/x")

	bank.statement.Path = "/tmp/statements/x.json"
	out.Reset()
	require.NoError(t, a.Statement(ctx, []string{"save", "7"}))
	assert.True(t, bank.save)
	assert.Equal(t, 7, bank.limit)
	assert.Contains(t, out.String(), "Saved to /tmp/statements/x.json")
}

func TestOnlineStatusWatcher(t *testing.T) {
	auth := &fakeAuth{pingErr: errors.New("down")}
	a, _ := newTestApp(auth, &fakeBank{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)

	assert.Equal(t, "(offline)", a.getStatus())
}

func TestRun_RestoresSessionAndExitsOnEOF(t *testing.T) {
	captureOutput(t)
	auth := &fakeAuth{restored: aliceSession()}
	a, _ := newTestApp(auth, &fakeBank{})

	a.Run(context.Background())

	assert.True(t, a.isLoggedIn())
	assert.True(t, auth.closed)
}
