// Package proto declares the casauth.v1.CredentialService gRPC contract.
// Messages are google.protobuf.Struct values; the field names are the
// constants below.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "casauth.v1.CredentialService"

// Full method names.
const (
	LoginMethod          = "/" + ServiceName + "/Login"
	AuthenticateMethod   = "/" + ServiceName + "/Authenticate"
	ResolveProfileMethod = "/" + ServiceName + "/ResolveProfile"
	LogoutMethod         = "/" + ServiceName + "/Logout"
)

// Message fields.
const (
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldVerificationKey = "verification_key"
	FieldOneTimePassword = "one_time_password"
	FieldService         = "service"
	FieldAccessToken     = "access_token"
	FieldTicket          = "tgt"
	FieldID              = "id"
	FieldAttributes      = "attributes"
)

type CredentialServiceServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Authenticate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolveProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(fullMethod string, call func(CredentialServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CredentialServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CredentialServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CredentialServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CredentialServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unaryHandler(LoginMethod, CredentialServiceServer.Login)},
		{MethodName: "Authenticate", Handler: unaryHandler(AuthenticateMethod, CredentialServiceServer.Authenticate)},
		{MethodName: "ResolveProfile", Handler: unaryHandler(ResolveProfileMethod, CredentialServiceServer.ResolveProfile)},
		{MethodName: "Logout", Handler: unaryHandler(LogoutMethod, CredentialServiceServer.Logout)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "casauth/v1/credential.proto",
}

func RegisterCredentialServiceServer(s grpc.ServiceRegistrar, srv CredentialServiceServer) {
	s.RegisterService(&CredentialServiceDesc, srv)
}

type CredentialServiceClient interface {
	Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Authenticate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ResolveProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Logout(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type credentialServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCredentialServiceClient(cc grpc.ClientConnInterface) CredentialServiceClient {
	return &credentialServiceClient{cc: cc}
}

func (c *credentialServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *credentialServiceClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, LoginMethod, in, opts)
}

func (c *credentialServiceClient) Authenticate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AuthenticateMethod, in, opts)
}

func (c *credentialServiceClient) ResolveProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ResolveProfileMethod, in, opts)
}

func (c *credentialServiceClient) Logout(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, LogoutMethod, in, opts)
}

// String returns a string field of s, "" when absent or not a string.
func String(s *structpb.Struct, name string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[name]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// Strings builds a message from string fields, skipping empty values.
func Strings(fields map[string]string) *structpb.Struct {
	out := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(fields))}
	for k, v := range fields {
		if v != "" {
			out.Fields[k] = structpb.NewStringValue(v)
		}
	}
	return out
}
