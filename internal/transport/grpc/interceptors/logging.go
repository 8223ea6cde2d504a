package interceptors

import (
	"context"
	"net"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	appLogger "github.com/arklim/passmeter/internal/infra/logger"
)

// LoggingOptions configures the access log interceptor.
type LoggingOptions struct {
	Logger *zap.Logger
	// QuietMethods are logged at debug level when they succeed.
	QuietMethods []string
}

// NewLoggingInterceptor emits one access log line per unary call.
func NewLoggingInterceptor(opts LoggingOptions) grpc.UnaryServerInterceptor {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	quiet := make(map[string]struct{}, len(opts.QuietMethods))
	for _, method := range opts.QuietMethods {
		quiet[method] = struct{}{}
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			fields = append(fields, zap.String("peer", appLogger.MaskIP(hostOf(p.Addr.String()))))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
		}

		switch {
		case code == codes.OK:
			if _, ok := quiet[info.FullMethod]; ok {
				log.Debug("grpc request completed", fields...)
			} else {
				log.Info("grpc request completed", fields...)
			}
		case isServerFault(code):
			log.Error("grpc request failed", append(fields, zap.Error(err))...)
		default:
			log.Warn("grpc request rejected", append(fields, zap.Error(err))...)
		}

		return resp, err
	}
}

func isServerFault(code codes.Code) bool {
	switch code {
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
