package bankapi

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "bank.v1.BankService"

const (
	MethodRegister        = "/" + ServiceName + "/Register"
	MethodLogin           = "/" + ServiceName + "/Login"
	MethodVerifySession   = "/" + ServiceName + "/VerifySession"
	MethodPing            = "/" + ServiceName + "/Ping"
	MethodGetBalance      = "/" + ServiceName + "/GetBalance"
	MethodTransfer        = "/" + ServiceName + "/Transfer"
	MethodGetHistory      = "/" + ServiceName + "/GetHistory"
	MethodExportStatement = "/" + ServiceName + "/ExportStatement"
)

// PublicMethods can be called without an access token.
var PublicMethods = map[string]bool{
	MethodRegister:      true,
	MethodLogin:         true,
	MethodVerifySession: true,
	MethodPing:          true,
}

type BankServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	VerifySession(context.Context, *VerifySessionRequest) (*VerifySessionResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetBalance(context.Context, *BalanceRequest) (*BalanceResponse, error)
	Transfer(context.Context, *TransferRequest) (*TransferResponse, error)
	GetHistory(context.Context, *HistoryRequest) (*HistoryResponse, error)
	ExportStatement(context.Context, *StatementRequest) (*StatementResponse, error)
}

func RegisterBankServiceServer(s grpc.ServiceRegistrar, srv BankServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BankServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", BankServiceServer.Register),
		unary("Login", BankServiceServer.Login),
		unary("VerifySession", BankServiceServer.VerifySession),
		unary("Ping", BankServiceServer.Ping),
		unary("GetBalance", BankServiceServer.GetBalance),
		unary("Transfer", BankServiceServer.Transfer),
		unary("GetHistory", BankServiceServer.GetHistory),
		unary("ExportStatement", BankServiceServer.ExportStatement),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bankapi",
}

// unary adapts a typed method into a grpc.MethodDesc, running the
// configured interceptor chain around it.
func unary[Req, Resp any](name string, call func(BankServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(BankServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// BankServiceClient is the typed client for BankService. Every call uses
// the JSON codec.
type BankServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBankServiceClient(cc grpc.ClientConnInterface) *BankServiceClient {
	return &BankServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BankServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *BankServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *BankServiceClient) VerifySession(ctx context.Context, in *VerifySessionRequest, opts ...grpc.CallOption) (*VerifySessionResponse, error) {
	return invoke[VerifySessionResponse](ctx, c.cc, MethodVerifySession, in, opts)
}

func (c *BankServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *BankServiceClient) GetBalance(ctx context.Context, in *BalanceRequest, opts ...grpc.CallOption) (*BalanceResponse, error) {
	return invoke[BalanceResponse](ctx, c.cc, MethodGetBalance, in, opts)
}

func (c *BankServiceClient) Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	return invoke[TransferResponse](ctx, c.cc, MethodTransfer, in, opts)
}

func (c *BankServiceClient) GetHistory(ctx context.Context, in *HistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error) {
	return invoke[HistoryResponse](ctx, c.cc, MethodGetHistory, in, opts)
}

func (c *BankServiceClient) ExportStatement(ctx context.Context, in *StatementRequest, opts ...grpc.CallOption) (*StatementResponse, error) {
	return invoke[StatementResponse](ctx, c.cc, MethodExportStatement, in, opts)
}
