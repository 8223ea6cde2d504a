package interceptors

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/arklim/passmeter/internal/infra/telemetry"
)

const (
	rpcTypeUnary  = "unary"
	rpcTypeStream = "stream"
	unknownLabel  = "unknown"
)

var rpcLabels = []string{"type", "service", "method", "code"}

// GRPCMetricsOptions controls construction of gRPC metrics collectors.
type GRPCMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
	Buckets    []float64
}

// GRPCMetrics counts and times unary calls and streams.
type GRPCMetrics struct {
	handled  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

// NewGRPCMetrics registers the collectors, reusing ones already registered on the same registerer.
func NewGRPCMetrics(opts GRPCMetricsOptions) (*GRPCMetrics, error) {
	if opts.Namespace == "" {
		opts.Namespace = "passmeter"
	}
	if opts.Subsystem == "" {
		opts.Subsystem = "grpc"
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if len(opts.Buckets) == 0 {
		opts.Buckets = prometheus.DefBuckets
	}
	reg := opts.Registerer

	m := &GRPCMetrics{}
	var err error

	if m.handled, err = telemetry.RegisterCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      "handled_total",
		Help:      "Completed RPCs by type, service, method and status code.",
	}, rpcLabels)); err != nil {
		return nil, err
	}

	if m.duration, err = telemetry.RegisterCollector(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      "handling_seconds",
		Help:      "RPC handling time in seconds. Streams are timed until they close.",
		Buckets:   opts.Buckets,
	}, rpcLabels)); err != nil {
		return nil, err
	}

	if m.inFlight, err = telemetry.RegisterCollector(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      "in_flight",
		Help:      "RPCs currently being handled by type and service.",
	}, []string{"type", "service"})); err != nil {
		return nil, err
	}

	return m, nil
}

// UnaryServerInterceptor records unary calls. A nil receiver is a pass-through.
func (m *GRPCMetrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	if m == nil {
		return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			return handler(ctx, req)
		}
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		done := m.begin(rpcTypeUnary, info.FullMethod)
		resp, err := handler(ctx, req)
		done(err)
		return resp, err
	}
}

// StreamServerInterceptor records streams. A nil receiver is a pass-through.
func (m *GRPCMetrics) StreamServerInterceptor() grpc.StreamServerInterceptor {
	if m == nil {
		return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
			return handler(srv, ss)
		}
	}

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		done := m.begin(rpcTypeStream, info.FullMethod)
		err := handler(srv, ss)
		done(err)
		return err
	}
}

func (m *GRPCMetrics) begin(rpcType, fullMethod string) func(error) {
	service, method := splitFullMethod(fullMethod)
	start := time.Now()

	gauge := m.inFlight.WithLabelValues(rpcType, service)
	gauge.Inc()

	return func(err error) {
		gauge.Dec()
		labels := prometheus.Labels{
			"type":    rpcType,
			"service": service,
			"method":  method,
			"code":    status.Code(err).String(),
		}
		m.handled.With(labels).Inc()
		m.duration.With(labels).Observe(time.Since(start).Seconds())
	}
}

// splitFullMethod splits "/package.Service/Method". Malformed names keep the
// raw value as the service and report an unknown method.
func splitFullMethod(full string) (string, string) {
	full = strings.TrimPrefix(full, "/")
	service, method, ok := strings.Cut(full, "/")
	if !ok || strings.Contains(method, "/") {
		if full == "" {
			full = unknownLabel
		}
		return full, unknownLabel
	}
	if service == "" {
		service = unknownLabel
	}
	if method == "" {
		method = unknownLabel
	}
	return service, method
}
