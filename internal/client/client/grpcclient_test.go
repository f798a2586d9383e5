package client

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/casauth/internal/common"
	pb "github.com/dmitrijs2005/casauth/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakePB struct {
	lastLoginReq *structpb.Struct
	lastAuthReq  *structpb.Struct
	lastCtx      context.Context

	resp *structpb.Struct
	err  error
}

func (f *fakePB) Login(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastCtx, f.lastLoginReq = ctx, in
	return f.resp, f.err
}
func (f *fakePB) Authenticate(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastCtx, f.lastAuthReq = ctx, in
	return f.resp, f.err
}
func (f *fakePB) ResolveProfile(ctx context.Context, _ *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastCtx = ctx
	return f.resp, f.err
}
func (f *fakePB) Logout(ctx context.Context, _ *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastCtx = ctx
	return &structpb.Struct{}, f.err
}

func newTestClient(f *fakePB) *GRPCClient {
	return &GRPCClient{client: f, service: "https://osf.io/"}
}

func profileResp(t *testing.T, extra map[string]any) *structpb.Struct {
	t.Helper()
	fields := map[string]any{
		pb.FieldID:         "abc12",
		pb.FieldAttributes: map[string]any{"username": "jane@example.org", "givenName": "Jane"},
	}
	for k, v := range extra {
		fields[k] = v
	}
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func tokenFrom(t *testing.T, ctx context.Context) string {
	t.Helper()
	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	vals := md.Get(common.AccessTokenHeaderName)
	require.Len(t, vals, 1)
	return vals[0]
}

func TestGRPCClient_Login(t *testing.T) {
	f := &fakePB{resp: profileResp(t, map[string]any{pb.FieldTicket: "TGT-1-x", pb.FieldAccessToken: "tok"})}
	c := newTestClient(f)

	s, err := c.Login(context.Background(), Credentials{Username: "jane@example.org", Password: "pw", OneTimePassword: "123456"})
	require.NoError(t, err)

	assert.Equal(t, "abc12", s.ID)
	assert.Equal(t, "Jane", s.Attributes["givenName"])
	assert.Equal(t, "TGT-1-x", s.TicketGrantingTicket)
	assert.Equal(t, "tok", s.AccessToken)

	assert.Equal(t, "jane@example.org", pb.String(f.lastLoginReq, pb.FieldUsername))
	assert.Equal(t, "pw", pb.String(f.lastLoginReq, pb.FieldPassword))
	assert.Equal(t, "123456", pb.String(f.lastLoginReq, pb.FieldOneTimePassword))
	assert.Equal(t, "https://osf.io/", pb.String(f.lastLoginReq, pb.FieldService))
	_, hasKey := f.lastLoginReq.GetFields()[pb.FieldVerificationKey]
	assert.False(t, hasKey, "empty fields are not sent")
}

func TestGRPCClient_Authenticate(t *testing.T) {
	f := &fakePB{resp: profileResp(t, nil)}
	c := newTestClient(f)

	p, err := c.Authenticate(context.Background(), Credentials{Username: "jane@example.org", VerificationKey: "vk"})
	require.NoError(t, err)
	assert.Equal(t, "abc12", p.ID)
	assert.Equal(t, "vk", pb.String(f.lastAuthReq, pb.FieldVerificationKey))
	_, hasService := f.lastAuthReq.GetFields()[pb.FieldService]
	assert.False(t, hasService)
}

func TestGRPCClient_ResolveProfile_SendsToken(t *testing.T) {
	f := &fakePB{resp: profileResp(t, nil)}
	c := newTestClient(f)

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "stale")
	p, err := c.ResolveProfile(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "abc12", p.ID)
	assert.Equal(t, "tok", tokenFrom(t, f.lastCtx))
}

func TestGRPCClient_ResolveProfile_NoAttributes(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{pb.FieldID: "abc12"})
	require.NoError(t, err)
	c := newTestClient(&fakePB{resp: s})

	p, err := c.ResolveProfile(context.Background(), "tok")
	require.NoError(t, err)
	assert.NotNil(t, p.Attributes)
	assert.Empty(t, p.Attributes)
}

func TestGRPCClient_Logout(t *testing.T) {
	f := &fakePB{}
	c := newTestClient(f)

	require.NoError(t, c.Logout(context.Background(), "tok"))
	assert.Equal(t, "tok", tokenFrom(t, f.lastCtx))
}

func TestGRPCClient_MapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "unauthenticated", err: status.Error(codes.Unauthenticated, "invalid_credentials"), want: ErrUnauthorized},
		{name: "permission denied", err: status.Error(codes.PermissionDenied, "account_disabled"), want: ErrForbidden},
		{name: "otp required", err: status.Error(codes.FailedPrecondition, "one_time_password_required"), want: ErrOneTimePasswordRequired},
		{name: "not found", err: status.Error(codes.NotFound, "unknown_session"), want: ErrSessionNotFound},
		{name: "invalid argument", err: status.Error(codes.InvalidArgument, "expired_token"), want: ErrInvalidToken},
		{name: "unavailable", err: status.Error(codes.Unavailable, "down"), want: ErrUnavailable},
		{name: "deadline", err: status.Error(codes.DeadlineExceeded, "slow"), want: ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(&fakePB{err: tt.err})
			_, err := c.Login(context.Background(), Credentials{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGRPCClient_MapError_Other(t *testing.T) {
	c := newTestClient(&fakePB{err: status.Error(codes.Internal, "internal error")})
	err := c.Logout(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc error")

	plain := errors.New("boom")
	c = newTestClient(&fakePB{err: plain})
	assert.ErrorIs(t, c.Logout(context.Background(), "tok"), plain)
}

func TestGRPCClient_MessageCarriesFailureCode(t *testing.T) {
	c := newTestClient(&fakePB{err: status.Error(codes.Unauthenticated, "invalid_credentials")})
	_, err := c.Login(context.Background(), Credentials{})
	assert.EqualError(t, err, "unauthorized: invalid_credentials")
}

func TestNewGRPCClient_Close(t *testing.T) {
	c, err := NewGRPCClient("127.0.0.1:1", "https://osf.io/")
	require.NoError(t, err)
	assert.NoError(t, c.Close())
	assert.NoError(t, (&GRPCClient{}).Close())
}
