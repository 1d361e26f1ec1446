package grpcserver

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"medilink/internal/auth"
	"medilink/internal/config"
	"medilink/internal/logger"
	"medilink/internal/marketplace"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// NewGRPCServer builds the server with the auth interceptor, the health service and the
// notification feed. Health checks bypass authentication.
func NewGRPCServer(secret string, notifications *marketplace.NotificationService) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.UnaryInterceptor(auth.NewUnaryAuthInterceptor(secret, healthCheckMethod)))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	RegisterNotificationFeedServer(srv, &FeedServer{Notifications: notifications})
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(notificationFeedService, healthpb.HealthCheckResponse_SERVING)
	return srv, hs
}

// StartGRPC starts the gRPC server on cfg.GRPC.Address and returns a shutdown function.
func StartGRPC(cfg *config.Config, notifications *marketplace.NotificationService, log *logger.Logger) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return nil, err
	}

	srv, hs := NewGRPCServer(cfg.Auth.JWTSecret, notifications)
	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Errorf("GRPC", "serve: %v", err)
		}
	}()
	log.Infof("GRPC", "listening on %s", lis.Addr())

	return func(ctx context.Context) error {
		hs.Shutdown()
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}
