package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newBodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/echo", BodyLimit(limit), func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, string(body))
	})
	return r
}

func TestBodyLimit(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		chunked  bool
		expected int
	}{
		{name: "within limit", body: "0123456789", expected: http.StatusOK},
		{name: "declared oversize", body: strings.Repeat("x", 32), expected: http.StatusRequestEntityTooLarge},
		{name: "streamed oversize", body: strings.Repeat("x", 32), chunked: true, expected: http.StatusRequestEntityTooLarge},
	}

	r := newBodyLimitRouter(16)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(tc.body))
			if tc.chunked {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, w.Code)
			}
		})
	}
}

func TestBodyLimitRejectionCarriesCode(t *testing.T) {
	r := newBodyLimitRouter(4)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("too long")))

	if !strings.Contains(w.Body.String(), CodeRequestTooLarge) {
		t.Fatalf("expected %q in body, got %s", CodeRequestTooLarge, w.Body.String())
	}
}
