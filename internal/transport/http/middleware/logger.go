package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appLogger "github.com/arklim/passmeter/internal/infra/logger"
)

// Logger writes one access log entry per request. Client IPs are masked and
// request bodies are never logged.
func Logger(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		reqCtx := GetRequestContext(c)
		requestID, _ := c.Request.Context().Value(appLogger.RequestIDKey{}).(string)

		fields := []zap.Field{
			zap.String("trace_id", GetTraceID(c)),
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", routeLabel(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", appLogger.MaskIP(c.ClientIP())),
		}
		if reqCtx.ClientID != "" {
			fields = append(fields, zap.String("client_id", reqCtx.ClientID))
		}
		if reqCtx.UserAgent != "" {
			fields = append(fields, zap.String("user_agent", reqCtx.UserAgent))
		}

		switch {
		case len(c.Errors) > 0 || status >= http.StatusInternalServerError:
			if len(c.Errors) > 0 {
				fields = append(fields, zap.String("errors", c.Errors.String()))
			}
			log.Error("request failed", fields...)
		case status == http.StatusTooManyRequests:
			log.Warn("request rate limited", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}
