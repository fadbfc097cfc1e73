// Package grpc exposes the bank services over gRPC as bank.v1.BankService.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/minibank/internal/bankapi"
	"github.com/dmitrijs2005/minibank/internal/logging"
	"github.com/dmitrijs2005/minibank/internal/server/auth"
	"github.com/dmitrijs2005/minibank/internal/server/models"
	"github.com/dmitrijs2005/minibank/internal/server/services"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
)

// Users is the registration, login and session surface.
type Users interface {
	Register(ctx context.Context, in services.NewAccount) (*models.Account, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	VerifySession(ctx context.Context, raw string) (*auth.Claims, error)
}

// Bank moves money and reads balances and history.
type Bank interface {
	Transfer(ctx context.Context, sender, receiver, amount string) (*services.TransferResult, error)
	GetBalance(ctx context.Context, username string) (decimal.Decimal, error)
	GetHistory(ctx context.Context, username string, limit int) ([]models.HistoryEntry, error)
}

type Statements interface {
	Export(ctx context.Context, username string, limit int) (*services.Statement, error)
}

type GRPCServer struct {
	address    string
	users      Users
	bank       Bank
	statements Statements
	logger     logging.Logger
}

var _ bankapi.BankServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, us Users, bs Bank, ss Statements) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		users:      us,
		bank:       bs,
		statements: ss,
	}
}

// newServer builds the grpc.Server with the auth interceptor and the bank
// service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	bankapi.RegisterBankServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
