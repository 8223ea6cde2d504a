package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TraceIDHeader echoes the request's trace id.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey stores the trace id on the gin context.
	TraceIDKey = "trace_id"

	requestContextKey = "request_context"
)

// RequestContext holds request scoped metadata for logging and error bodies.
type RequestContext struct {
	TraceID   string
	ClientID  string
	IP        string
	UserAgent string
}

// EnrichContext resolves the trace id and records request metadata.
// An active span wins over the X-Trace-ID header, which wins over a fresh uuid.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := resolveTraceID(c)
		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		reqCtx := &RequestContext{
			TraceID:   traceID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if clientID, ok := HeaderIdentifier(ClientIDHeader)(c); ok {
			reqCtx.ClientID = clientID
		}
		c.Set(requestContextKey, reqCtx)

		c.Next()
	}
}

func resolveTraceID(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if inbound := c.GetHeader(TraceIDHeader); validRequestID(inbound) {
		return inbound
	}
	return uuid.NewString()
}

// GetTraceID returns the trace id set by EnrichContext.
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}

// GetRequestContext returns the metadata set by EnrichContext, or an empty value.
func GetRequestContext(c *gin.Context) *RequestContext {
	if reqCtx, ok := c.Value(requestContextKey).(*RequestContext); ok {
		return reqCtx
	}
	return &RequestContext{}
}
