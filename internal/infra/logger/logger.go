package logger

import (
	"context"
	"net/netip"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls how New builds the logger.
type Options struct {
	Env     string
	Enabled bool
	Debug   bool
}

// New builds the process logger. Production uses JSON output; every other
// environment uses the colored console encoder. Disabled yields a no-op logger.
func New(opts Options) (*zap.Logger, error) {
	if !opts.Enabled {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	if opts.Env != "production" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}

// RequestIDKey is used to store a request identifier on the context.
type RequestIDKey struct{}

// WithContext tags base with the request id and trace id carried by ctx.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	if ctx == nil {
		return base
	}

	fields := make([]zap.Field, 0, 2)
	if id, ok := ctx.Value(RequestIDKey{}).(string); ok && id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// MaskIP keeps the network part of an address: the first two octets of IPv4
// and the first three groups of IPv6. Unparseable input is fully masked.
//
//	192.168.1.100       -> 192.168.*.*
//	2001:db8:85a3::7334 -> 2001:db8:85a3:*
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "***"
	}
	addr = addr.Unmap()

	if addr.Is4() {
		b := addr.As4()
		return strconv.Itoa(int(b[0])) + "." + strconv.Itoa(int(b[1])) + ".*.*"
	}

	groups := strings.Split(addr.StringExpanded(), ":")
	for i := range groups[:3] {
		groups[i] = strings.TrimLeft(groups[i], "0")
		if groups[i] == "" {
			groups[i] = "0"
		}
	}
	return strings.Join(groups[:3], ":") + ":*"
}
