// Package grpc exposes the credential service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/casauth/internal/logging"
	pb "github.com/dmitrijs2005/casauth/internal/proto"
	"github.com/dmitrijs2005/casauth/internal/server/auth"
	"github.com/dmitrijs2005/casauth/internal/server/models"
	"github.com/dmitrijs2005/casauth/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type LoginUseCase interface {
	Login(ctx context.Context, cred auth.Credential, serviceID string) (*services.LoginResult, error)
	Authenticate(ctx context.Context, cred auth.Credential) (*models.Principal, error)
	Logout(ctx context.Context, rawToken string) error
}

type ProfileResolver interface {
	ResolveProfile(ctx context.Context, rawToken string) (*models.Principal, error)
}

type GRPCServer struct {
	address  string
	logins   LoginUseCase
	profiles ProfileResolver
	logger   logging.Logger
}

var _ pb.CredentialServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, logins LoginUseCase, profiles ProfileResolver) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		logins:   logins,
		profiles: profiles,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	pb.RegisterCredentialServiceServer(srv, s)
	hs := health.NewServer()
	hs.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())
	return srv.Serve(lis)
}
