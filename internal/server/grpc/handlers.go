package grpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/minibank/internal/bankapi"
	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/money"
	"github.com/dmitrijs2005/minibank/internal/server/services"
)

// rejection renders err as a structured business result.
func rejection(err error) bankapi.Result {
	return bankapi.Result{
		Success:   false,
		Message:   common.MessageOf(err),
		ErrorCode: string(common.CodeOf(err)),
	}
}

func ok(msg string) bankapi.Result {
	return bankapi.Result{Success: true, Message: msg}
}

// unauthenticated is a safety net; the interceptor rejects these calls first.
func unauthenticated() bankapi.Result {
	return rejection(common.ErrTokenMissing)
}

func (s *GRPCServer) Register(ctx context.Context, req *bankapi.RegisterRequest) (*bankapi.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	acc, err := s.users.Register(ctx, services.NewAccount{
		UID:      req.UID,
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		s.logger.Warn(ctx, "Registration rejected", "username", req.Username, "code", common.CodeOf(err))
		return &bankapi.RegisterResponse{Result: rejection(err)}, nil
	}

	s.logger.Info(ctx, "Registered", "username", acc.Username)
	return &bankapi.RegisterResponse{Result: ok("Registration successful"), UID: acc.UID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *bankapi.LoginRequest) (*bankapi.LoginResponse, error) {

	res, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return &bankapi.LoginResponse{Result: rejection(err)}, nil
	}

	return &bankapi.LoginResponse{
		Result:    ok("Login successful"),
		Token:     res.Token,
		UID:       res.UID,
		ExpiresAt: res.ExpiresAt,
	}, nil
}

func (s *GRPCServer) VerifySession(ctx context.Context, req *bankapi.VerifySessionRequest) (*bankapi.VerifySessionResponse, error) {

	claims, err := s.users.VerifySession(ctx, req.Token)
	if err != nil {
		return &bankapi.VerifySessionResponse{Valid: false, ErrorCode: string(common.CodeOf(err))}, nil
	}

	return &bankapi.VerifySessionResponse{Valid: true, Subject: claims.Subject, Role: claims.Role}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *bankapi.PingRequest) (*bankapi.PingResponse, error) {
	return &bankapi.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) GetBalance(ctx context.Context, req *bankapi.BalanceRequest) (*bankapi.BalanceResponse, error) {

	username, found := subjectFromContext(ctx)
	if !found {
		return &bankapi.BalanceResponse{Result: unauthenticated()}, nil
	}

	balance, err := s.bank.GetBalance(ctx, username)
	if err != nil {
		return &bankapi.BalanceResponse{Result: rejection(err)}, nil
	}

	return &bankapi.BalanceResponse{Result: ok(""), Username: username, Balance: money.Format(balance)}, nil
}

func (s *GRPCServer) Transfer(ctx context.Context, req *bankapi.TransferRequest) (*bankapi.TransferResponse, error) {

	sender, found := subjectFromContext(ctx)
	if !found {
		return &bankapi.TransferResponse{Result: unauthenticated()}, nil
	}

	res, err := s.bank.Transfer(ctx, sender, req.Receiver, req.Amount)
	if err != nil {
		return &bankapi.TransferResponse{Result: rejection(err)}, nil
	}

	return &bankapi.TransferResponse{
		Result:          ok(fmt.Sprintf("Successfully transferred %s to %s", money.Format(res.Transfer.Amount), res.Transfer.ReceiverUsername)),
		TransferID:      res.Transfer.ID,
		SenderBalance:   money.Format(res.SenderBalance),
		ReceiverBalance: money.Format(res.ReceiverBalance),
	}, nil
}

func (s *GRPCServer) GetHistory(ctx context.Context, req *bankapi.HistoryRequest) (*bankapi.HistoryResponse, error) {

	username, found := subjectFromContext(ctx)
	if !found {
		return &bankapi.HistoryResponse{Result: unauthenticated()}, nil
	}

	history, err := s.bank.GetHistory(ctx, username, req.Limit)
	if err != nil {
		return &bankapi.HistoryResponse{Result: rejection(err)}, nil
	}

	entries := make([]bankapi.HistoryEntry, 0, len(history))
	for _, h := range history {
		entries = append(entries, bankapi.HistoryEntry{
			ID:        h.ID,
			Sender:    h.SenderUsername,
			Receiver:  h.ReceiverUsername,
			Amount:    money.Format(h.Amount),
			Type:      h.Type,
			Status:    h.Status,
			Direction: string(h.Direction),
			CreatedAt: h.CreatedAt,
		})
	}

	return &bankapi.HistoryResponse{Result: ok(""), Entries: entries}, nil
}

func (s *GRPCServer) ExportStatement(ctx context.Context, req *bankapi.StatementRequest) (*bankapi.StatementResponse, error) {

	username, found := subjectFromContext(ctx)
	if !found {
		return &bankapi.StatementResponse{Result: unauthenticated()}, nil
	}

	st, err := s.statements.Export(ctx, username, req.Limit)
	if err != nil {
		return &bankapi.StatementResponse{Result: rejection(err)}, nil
	}

	return &bankapi.StatementResponse{Result: ok("Statement exported"), Key: st.Key, URL: st.URL, ExpiresAt: st.ExpiresAt}, nil
}
