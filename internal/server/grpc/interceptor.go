package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/minibank/internal/bankapi"
	"github.com/dmitrijs2005/minibank/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const subjectKey ctxKey = "subject"

// subjectFromContext returns the username the interceptor authenticated.
func subjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	return v, ok && v != ""
}

func tokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AccessTokenHeaderName)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(values[0], "Bearer "))
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if bankapi.PublicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	accessToken := tokenFromContext(ctx)
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, string(common.CodeTokenMissing))
	}

	claims, err := s.users.VerifySession(ctx, accessToken)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, string(common.CodeOf(err)))
	}

	ctx = context.WithValue(ctx, subjectKey, claims.Subject)

	return handler(ctx, req)
}
