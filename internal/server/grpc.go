package server

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/fieldops/internal/common"
)

const (
	MetadataEmployeeID = "x-employee-id"
	MetadataRequestID  = "x-request-id"
)

// NewGRPCServer builds a server with the FieldOps service, the standard
// health service and reflection registered. The returned health server is
// SERVING; flip it to NOT_SERVING during shutdown.
func NewGRPCServer(svc FieldOpsServer, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(recoverInterceptor(logger), contextInterceptor(logger))}, opts...)
	s := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	// Reflection for grpcurl
	reflection.Register(s)

	RegisterFieldOpsServer(s, svc)
	return s, hs
}

// contextInterceptor copies request metadata onto the context, logs the call
// and converts application errors into status errors.
func contextInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(MetadataRequestID); len(v) > 0 {
				requestID = v[0]
			}
			if v := md.Get(MetadataEmployeeID); len(v) > 0 && v[0] != "" {
				ctx = common.WithEmployeeID(ctx, v[0])
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = common.WithRequestID(ctx, requestID)
		reqLogger := logger.With("request_id", requestID, "method", info.FullMethod)
		ctx = common.WithLogger(ctx, reqLogger)

		resp, err := handler(ctx, req)
		if err != nil {
			st := common.ToStatus(err)
			if status.Code(st) == codes.Internal {
				reqLogger.Error("grpc call failed", "error", err)
			}
			reqLogger.Info("grpc.request", "code", status.Code(st).String(), "elapsed_ms", time.Since(start).Milliseconds())
			return nil, st
		}
		reqLogger.Info("grpc.request", "code", codes.OK.String(), "elapsed_ms", time.Since(start).Milliseconds())
		return resp, nil
	}
}

func recoverInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic serving grpc call", "method", info.FullMethod, "panic", fmt.Sprint(v), "stack", string(debug.Stack()))
				resp, err = nil, status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}
