package grpc

import (
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the tick loop
const ServiceName = "colonybot.TickLoop"

// DaemonServer exposes the standard gRPC health service on a unix socket
type DaemonServer struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
}

// NewDaemonServer creates a daemon server listening on socketPath
func NewDaemonServer(socketPath string) (*DaemonServer, error) {
	// Remove existing socket file if present
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Owner only
	if err := os.Chmod(socketPath, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &DaemonServer{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
	}, nil
}

// Addr returns the socket address
func (s *DaemonServer) Addr() string {
	return s.listener.Addr().String()
}

// SetServing updates the reported status of the tick loop
func (s *DaemonServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

// Start serves in the background; serve errors are delivered on the channel
func (s *DaemonServer) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
		close(errCh)
	}()
	return errCh
}

// Stop marks every service as shutting down and stops gracefully
func (s *DaemonServer) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
