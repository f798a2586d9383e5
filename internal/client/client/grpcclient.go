package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/casauth/internal/common"
	pb "github.com/dmitrijs2005/casauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Credentials are the values presented at login.
type Credentials struct {
	Username        string
	Password        string
	VerificationKey string
	OneTimePassword string
}

// Profile is the principal released to the caller.
type Profile struct {
	ID         string
	Attributes map[string]any
}

// Session is the result of a successful login.
type Session struct {
	Profile
	TicketGrantingTicket string
	AccessToken          string
}

type GRPCClient struct {
	conn    *grpc.ClientConn
	client  pb.CredentialServiceClient
	service string
}

// NewGRPCClient connects to addr. Logins request tokens for service.
func NewGRPCClient(addr, service string) (*GRPCClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCClient{conn: conn, client: pb.NewCredentialServiceClient(conn), service: service}, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func credentialStruct(c Credentials) map[string]string {
	return map[string]string{
		pb.FieldUsername:        c.Username,
		pb.FieldPassword:        c.Password,
		pb.FieldVerificationKey: c.VerificationKey,
		pb.FieldOneTimePassword: c.OneTimePassword,
	}
}

func (s *GRPCClient) Login(ctx context.Context, c Credentials) (*Session, error) {
	fields := credentialStruct(c)
	fields[pb.FieldService] = s.service

	resp, err := s.client.Login(ctx, pb.Strings(fields))
	if err != nil {
		return nil, s.mapError(err)
	}
	return &Session{
		Profile:              profileFrom(resp),
		TicketGrantingTicket: pb.String(resp, pb.FieldTicket),
		AccessToken:          pb.String(resp, pb.FieldAccessToken),
	}, nil
}

// Authenticate checks credentials without opening a session.
func (s *GRPCClient) Authenticate(ctx context.Context, c Credentials) (*Profile, error) {
	resp, err := s.client.Authenticate(ctx, pb.Strings(credentialStruct(c)))
	if err != nil {
		return nil, s.mapError(err)
	}
	p := profileFrom(resp)
	return &p, nil
}

func (s *GRPCClient) ResolveProfile(ctx context.Context, accessToken string) (*Profile, error) {
	resp, err := s.client.ResolveProfile(withAccessToken(ctx, accessToken), &structpb.Struct{})
	if err != nil {
		return nil, s.mapError(err)
	}
	p := profileFrom(resp)
	return &p, nil
}

func (s *GRPCClient) Logout(ctx context.Context, accessToken string) error {
	_, err := s.client.Logout(withAccessToken(ctx, accessToken), &structpb.Struct{})
	return s.mapError(err)
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func profileFrom(resp *structpb.Struct) Profile {
	p := Profile{ID: pb.String(resp, pb.FieldID), Attributes: map[string]any{}}
	if v, ok := resp.GetFields()[pb.FieldAttributes]; ok && v.GetStructValue() != nil {
		p.Attributes = v.GetStructValue().AsMap()
	}
	return p
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.FailedPrecondition:
		return ErrOneTimePasswordRequired
	case codes.NotFound:
		return ErrSessionNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidToken, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
