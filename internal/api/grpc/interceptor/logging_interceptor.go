package interceptor

import (
	"context"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"toolrent-backend/internal/logger"
)

const requestIDKey = "x-request-id"

type LoggingInterceptor struct{}

func NewLoggingInterceptor() *LoggingInterceptor {
	return &LoggingInterceptor{}
}

// Unary returns a server interceptor that logs every RPC and turns panics into Internal errors
func (i *LoggingInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()

		log := logger.Get().With("method", info.FullMethod)
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(requestIDKey); len(ids) > 0 {
				log = log.With("request_id", ids[0])
			}
		}
		ctx = logger.NewContext(ctx, log)

		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic in gRPC handler", "panic", r, "stack", string(debug.Stack()))
				err = status.Error(codes.Internal, "internal error")
			}

			code := status.Code(err)
			if code == codes.OK || code == codes.NotFound {
				log.Debug("gRPC call", "code", code.String(), "duration", time.Since(start))
				return
			}
			log.Warn("gRPC call failed", "code", code.String(), "duration", time.Since(start), "error", err)
		}()

		return handler(ctx, req)
	}
}
