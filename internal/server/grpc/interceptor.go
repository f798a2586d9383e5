package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/casauth/internal/common"
	pb "github.com/dmitrijs2005/casauth/internal/proto"
	"github.com/dmitrijs2005/casauth/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type ctxKey string

const accessTokenKey ctxKey = "accessToken"

// accessTokenInterceptor copies the access token of token-bearing calls from
// metadata into the context. Calls without one proceed; the handler falls
// back to the request body.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if info.FullMethod == pb.ResolveProfileMethod || info.FullMethod == pb.LogoutMethod {
		if token := tokenFromMetadata(ctx); token != "" {
			ctx = context.WithValue(ctx, accessTokenKey, token)
		}
	}
	return handler(ctx, req)
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	var param, authorization string
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		param = values[0]
	}
	if values := md.Get(strings.ToLower(common.AuthorizationHeaderName)); len(values) > 0 {
		authorization = values[0]
	}
	return services.ExtractAccessToken(param, authorization)
}

func accessTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey).(string)
	return token
}
