package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/minibank/internal/bankapi"
	"github.com/dmitrijs2005/minibank/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *bankapi.BankServiceClient

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" && !bankapi.PublicMethods[method] {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewBankClient dials endpointURL lazily. Extra options are appended after
// the defaults, so tests can swap the dialer.
func NewBankClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = bankapi.NewBankServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Register(ctx context.Context, in NewAccount) (string, error) {
	resp, err := s.client.Register(ctx, &bankapi.RegisterRequest{
		UID:      in.UID,
		Username: in.Username,
		Password: in.Password,
		Email:    in.Email,
		Phone:    in.Phone,
	})
	if err != nil {
		return "", s.mapError(err)
	}
	if err := rejected(resp.Result); err != nil {
		return "", err
	}
	return resp.UID, nil
}

func (s *GRPCClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	resp, err := s.client.Login(ctx, &bankapi.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	if err := rejected(resp.Result); err != nil {
		return nil, err
	}

	s.SetAccessToken(resp.Token)
	return &LoginResult{Token: resp.Token, UID: resp.UID, ExpiresAt: resp.ExpiresAt}, nil
}

// VerifySession returns the subject of token.
func (s *GRPCClient) VerifySession(ctx context.Context, token string) (string, error) {
	resp, err := s.client.VerifySession(ctx, &bankapi.VerifySessionRequest{Token: token})
	if err != nil {
		return "", s.mapError(err)
	}
	if !resp.Valid {
		return "", common.NewError(common.Code(resp.ErrorCode), "session is not valid")
	}
	return resp.Subject, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &bankapi.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Balance(ctx context.Context) (string, error) {
	resp, err := s.client.GetBalance(ctx, &bankapi.BalanceRequest{})
	if err != nil {
		return "", s.mapError(err)
	}
	if err := rejected(resp.Result); err != nil {
		return "", err
	}
	return resp.Balance, nil
}

func (s *GRPCClient) Transfer(ctx context.Context, receiver, amount string) (*TransferResult, error) {
	resp, err := s.client.Transfer(ctx, &bankapi.TransferRequest{Receiver: receiver, Amount: amount})
	if err != nil {
		return nil, s.mapError(err)
	}
	if err := rejected(resp.Result); err != nil {
		return nil, err
	}
	return &TransferResult{
		ID:              resp.TransferID,
		Message:         resp.Message,
		SenderBalance:   resp.SenderBalance,
		ReceiverBalance: resp.ReceiverBalance,
	}, nil
}

func (s *GRPCClient) History(ctx context.Context, limit int) ([]bankapi.HistoryEntry, error) {
	resp, err := s.client.GetHistory(ctx, &bankapi.HistoryRequest{Limit: limit})
	if err != nil {
		return nil, s.mapError(err)
	}
	if err := rejected(resp.Result); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (s *GRPCClient) Statement(ctx context.Context, limit int) (*Statement, error) {
	resp, err := s.client.ExportStatement(ctx, &bankapi.StatementRequest{Limit: limit})
	if err != nil {
		return nil, s.mapError(err)
	}
	if err := rejected(resp.Result); err != nil {
		return nil, err
	}
	return &Statement{Key: resp.Key, URL: resp.URL, ExpiresAt: resp.ExpiresAt}, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
