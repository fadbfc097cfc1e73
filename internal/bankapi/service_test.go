package bankapi

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

type echoServer struct {
	lastTransfer *TransferRequest
}

func (s *echoServer) Register(_ context.Context, in *RegisterRequest) (*RegisterResponse, error) {
	return &RegisterResponse{Result: Result{Success: true, Message: "ok"}, UID: in.UID}, nil
}

func (s *echoServer) Login(_ context.Context, in *LoginRequest) (*LoginResponse, error) {
	return &LoginResponse{Result: Result{Success: true}, Token: "tok-" + in.Username}, nil
}

func (s *echoServer) VerifySession(_ context.Context, in *VerifySessionRequest) (*VerifySessionResponse, error) {
	return &VerifySessionResponse{Valid: in.Token == "good", Subject: "alice"}, nil
}

func (s *echoServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "ok"}, nil
}

func (s *echoServer) GetBalance(context.Context, *BalanceRequest) (*BalanceResponse, error) {
	return &BalanceResponse{Result: Result{Success: true}, Username: "alice", Balance: "10.00"}, nil
}

func (s *echoServer) Transfer(_ context.Context, in *TransferRequest) (*TransferResponse, error) {
	s.lastTransfer = in
	return &TransferResponse{
		Result: Result{Success: false, Message: "Insufficient balance. Available: 1.00", ErrorCode: "INSUFFICIENT_BALANCE"},
	}, nil
}

func (s *echoServer) GetHistory(_ context.Context, in *HistoryRequest) (*HistoryResponse, error) {
	entries := make([]HistoryEntry, in.Limit)
	for i := range entries {
		entries[i] = HistoryEntry{ID: int64(i + 1), Direction: "sent"}
	}
	return &HistoryResponse{Result: Result{Success: true}, Entries: entries}, nil
}

func (s *echoServer) ExportStatement(context.Context, *StatementRequest) (*StatementResponse, error) {
	return &StatementResponse{
		Result:    Result{Success: true},
		Key:       "statements/alice/x.json",
		ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func startBufServer(t *testing.T, srv BankServiceServer, opts ...grpc.ServerOption) *BankServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterBankServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewBankServiceClient(conn)
}

func TestBankService_RoundTrip(t *testing.T) {
	srv := &echoServer{}
	c := startBufServer(t, srv)
	ctx := context.Background()

	ping, err := c.Ping(ctx, &PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", ping.Status)

	reg, err := c.Register(ctx, &RegisterRequest{UID: "u-1", Username: "alice"})
	require.NoError(t, err)
	assert.True(t, reg.Success)
	assert.Equal(t, "u-1", reg.UID)

	login, err := c.Login(ctx, &LoginRequest{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "tok-alice", login.Token)

	v, err := c.VerifySession(ctx, &VerifySessionRequest{Token: "good"})
	require.NoError(t, err)
	assert.True(t, v.Valid)

	bal, err := c.GetBalance(ctx, &BalanceRequest{})
	require.NoError(t, err)
	assert.Equal(t, "10.00", bal.Balance)

	tr, err := c.Transfer(ctx, &TransferRequest{Receiver: "bob", Amount: "5.00"})
	require.NoError(t, err)
	assert.False(t, tr.Success)
	assert.Equal(t, "INSUFFICIENT_BALANCE", tr.ErrorCode)
	require.NotNil(t, srv.lastTransfer)
	assert.Equal(t, "bob", srv.lastTransfer.Receiver)
	assert.Equal(t, "5.00", srv.lastTransfer.Amount)

	hist, err := c.GetHistory(ctx, &HistoryRequest{Limit: 3})
	require.NoError(t, err)
	require.Len(t, hist.Entries, 3)
	assert.Equal(t, int64(3), hist.Entries[2].ID)

	st, err := c.ExportStatement(ctx, &StatementRequest{})
	require.NoError(t, err)
	assert.Equal(t, "statements/alice/x.json", st.Key)
	assert.True(t, st.ExpiresAt.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestBankService_InterceptorSeesFullMethod(t *testing.T) {
	var seen []string
	ic := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)
		return h(ctx, req)
	}
	c := startBufServer(t, &echoServer{}, grpc.ChainUnaryInterceptor(ic))

	_, err := c.Ping(context.Background(), &PingRequest{})
	require.NoError(t, err)
	_, err = c.GetBalance(context.Background(), &BalanceRequest{})
	require.NoError(t, err)

	assert.Equal(t, []string{MethodPing, MethodGetBalance}, seen)
}

func TestPublicMethods(t *testing.T) {
	for _, m := range []string{MethodRegister, MethodLogin, MethodVerifySession, MethodPing} {
		assert.True(t, PublicMethods[m], m)
	}
	for _, m := range []string{MethodGetBalance, MethodTransfer, MethodGetHistory, MethodExportStatement} {
		assert.False(t, PublicMethods[m], m)
	}
}

func TestJSONCodec(t *testing.T) {
	c := jsonCodec{}
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(&TransferRequest{Receiver: "bob", Amount: "1.50"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"receiver":"bob","amount":"1.50"}`, string(b))

	var out TransferRequest
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, "bob", out.Receiver)
}
