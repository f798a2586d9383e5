package grpc

import (
	"context"
	"errors"

	pb "github.com/dmitrijs2005/casauth/internal/proto"
	"github.com/dmitrijs2005/casauth/internal/server/auth"
	"github.com/dmitrijs2005/casauth/internal/server/models"
	"github.com/dmitrijs2005/casauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func credentialFrom(req *structpb.Struct) auth.Credential {
	return auth.Credential{
		Username:        pb.String(req, pb.FieldUsername),
		Password:        pb.String(req, pb.FieldPassword),
		VerificationKey: pb.String(req, pb.FieldVerificationKey),
		OneTimePassword: pb.String(req, pb.FieldOneTimePassword),
	}
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	serviceID := pb.String(req, pb.FieldService)
	if serviceID == "" {
		return nil, status.Error(codes.InvalidArgument, "service is required")
	}

	result, err := s.logins.Login(ctx, credentialFrom(req), serviceID)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}

	out, err := principalStruct(result.Principal)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	out.Fields[pb.FieldTicket] = structpb.NewStringValue(result.TGTID)
	out.Fields[pb.FieldAccessToken] = structpb.NewStringValue(result.AccessToken)
	return out, nil
}

func (s *GRPCServer) Authenticate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := s.logins.Authenticate(ctx, credentialFrom(req))
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	out, err := principalStruct(p)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return out, nil
}

func (s *GRPCServer) ResolveProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := s.profiles.ResolveProfile(ctx, s.token(ctx, req))
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	out, err := principalStruct(p)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return out, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.logins.Logout(ctx, s.token(ctx, req)); err != nil {
		return nil, s.statusError(ctx, err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
}

func (s *GRPCServer) token(ctx context.Context, req *structpb.Struct) string {
	if token := accessTokenFrom(ctx); token != "" {
		return token
	}
	return pb.String(req, pb.FieldAccessToken)
}

func principalStruct(p *models.Principal) (*structpb.Struct, error) {
	attrs := p.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return structpb.NewStruct(map[string]any{
		pb.FieldID:         p.ID,
		pb.FieldAttributes: attrs,
	})
}

// statusError maps failures to status codes. Messages carry only the
// failure code.
func (s *GRPCServer) statusError(ctx context.Context, err error) error {
	if code := auth.FailureCode(err); code != "" {
		return status.Error(authCode(err), code)
	}
	if code := services.FailureCode(err); code != "" {
		if errors.Is(err, services.ErrUnknownSession) {
			return status.Error(codes.NotFound, code)
		}
		return status.Error(codes.InvalidArgument, code)
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func authCode(err error) codes.Code {
	switch {
	case errors.Is(err, auth.ErrOneTimePasswordRequired):
		return codes.FailedPrecondition
	case errors.Is(err, auth.ErrLoginNotAllowed), errors.Is(err, auth.ErrAccountDisabled):
		return codes.PermissionDenied
	case errors.Is(err, auth.ErrInconsistentAccountState):
		return codes.Internal
	default:
		return codes.Unauthenticated
	}
}
