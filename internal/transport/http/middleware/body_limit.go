package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CodeRequestTooLarge is returned when a request body exceeds its limit.
const CodeRequestTooLarge = "request_too_large"

// BodyLimit caps the request body at maxBytes. Declared oversize bodies are rejected
// up front; streamed ones fail on read with *http.MaxBytesError.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":    "request body too large",
				"code":     CodeRequestTooLarge,
				"trace_id": GetTraceID(c),
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
