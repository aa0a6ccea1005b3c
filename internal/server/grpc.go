package server

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/siakng/monopoly-server-go/internal/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// EngineService is the health service name reporting whether the engine
// accepts games.
const EngineService = "monopoly.Engine"

// GRPCServer wraps the gRPC listener and its health reporting.
type GRPCServer struct {
	*grpc.Server
	health *health.Server
	logger *zap.Logger
}

// NewGRPCServer builds a gRPC server exposing the standard health service.
func NewGRPCServer(cfg config.GRPCConfig, logger *zap.Logger) *GRPCServer {
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(ChainUnaryInterceptors(
			RecoveryInterceptor(logger),
			LoggingInterceptor(logger),
		)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
		grpc.MaxConcurrentStreams(uint32(cfg.MaxConcurrentStreams)),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(EngineService, healthpb.HealthCheckResponse_NOT_SERVING)

	return &GRPCServer{Server: srv, health: hs, logger: logger}
}

// SetServing reports the engine as ready, or not, on the health service.
func (s *GRPCServer) SetServing(serving bool) {
	state := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		state = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(EngineService, state)
	s.health.SetServingStatus("", state)

	s.logger.Info("health status changed",
		zap.String("service", EngineService),
		zap.String("status", state.String()),
	)
}

// GracefulStop flips health to not serving before draining connections.
func (s *GRPCServer) GracefulStop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
}

// ChainUnaryInterceptors runs interceptors in order, outermost first.
func ChainUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		chained := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor, next := interceptors[i], chained
			chained = func(ctx context.Context, req any) (any, error) {
				return interceptor(ctx, req, info, next)
			}
		}
		return chained(ctx, req)
	}
}

// RecoveryInterceptor converts handler panics into Internal errors.
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in gRPC handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				err = status.Error(codes.Internal, fmt.Sprintf("internal error: %v", r))
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs each call with its duration and status code.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logger.Debug("gRPC call",
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		)
		return resp, err
	}
}
