package transportgrpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcinterceptors "github.com/arklim/passmeter/internal/transport/grpc/interceptors"
	"github.com/arklim/passmeter/internal/usecase"
)

const (
	healthCheckMethod = "/grpc.health.v1.Health/Check"

	// ShutdownTimeout bounds the graceful drain of in-flight calls.
	ShutdownTimeout = 10 * time.Second
)

// ServerDependencies encapsulates the collaborators of the gRPC server layer.
type ServerDependencies struct {
	Logger         *zap.Logger
	Metrics        *grpcinterceptors.GRPCMetrics
	TracerProvider trace.TracerProvider
	// Strength is served as StrengthServiceName when set.
	Strength *usecase.StrengthService
	// Services are reported individually by the health service in addition to the overall status.
	Services []string
}

// Server bundles the gRPC server with its health service.
type Server struct {
	server   *grpc.Server
	health   *health.Server
	services []string
	logger   *zap.Logger
}

// NewServer wires the health, strength and reflection services behind the tracing, metrics and logging interceptors.
func NewServer(deps ServerDependencies) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	unaryInterceptors := []grpc.UnaryServerInterceptor{
		deps.Metrics.UnaryServerInterceptor(),
		grpcinterceptors.NewLoggingInterceptor(grpcinterceptors.LoggingOptions{
			Logger:       logger,
			QuietMethods: []string{healthCheckMethod},
		}),
	}

	server := grpc.NewServer(
		grpcinterceptors.TracingServerOption(grpcinterceptors.TracingOptions{
			TracerProvider: deps.TracerProvider,
			SkipMethods:    []string{healthCheckMethod},
		}),
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
		grpc.ChainStreamInterceptor(deps.Metrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)

	services := append([]string{""}, deps.Services...)
	if deps.Strength != nil {
		RegisterStrengthServiceServer(server, NewStrengthServer(deps.Strength))
		services = append(services, StrengthServiceName)
	}

	reflection.Register(server)

	s := &Server{
		server:   server,
		health:   healthServer,
		services: services,
		logger:   logger,
	}
	s.SetServing(true)

	return s, nil
}

// GRPCServer exposes the underlying server for additional registrations.
func (s *Server) GRPCServer() *grpc.Server {
	return s.server
}

// SetServing flips the reported health of every tracked service.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	for _, service := range s.services {
		s.health.SetServingStatus(service, status)
	}
}

// Serve accepts connections on lis until the server stops.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpc server listening", zap.String("addr", lis.Addr().String()))
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Shutdown reports NOT_SERVING and drains in-flight calls, forcing a stop when ctx expires.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("grpc graceful stop timed out, forcing stop")
		s.server.Stop()
		<-done
	}
}
