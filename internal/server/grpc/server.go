package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/kvgate/internal/logging"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"google.golang.org/grpc"
)

// Gateway runs the request pipeline on a decoded envelope.
type Gateway interface {
	Handle(ctx context.Context, envelope map[string]any) *api.Response
}

type GRPCServer struct {
	address string
	gateway Gateway
	timeout time.Duration
	logger  logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, g Gateway, timeout time.Duration) *GRPCServer {
	return &GRPCServer{
		address: address,
		gateway: g,
		timeout: timeout,
		logger:  l.With("module", "grpc_server"),
	}
}

// NewServer builds a grpc.Server with the interceptors and the gateway
// service registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestInterceptor))
	RegisterGatewayServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
