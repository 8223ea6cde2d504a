package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/passmeter/internal/core/port"
)

const (
	rateLimitProblemType  = "https://passmeter.example.com/problems/rate-limit-exceeded"
	rateLimitProblemTitle = "Rate Limit Exceeded"

	// ClientIDHeader optionally names the calling application.
	ClientIDHeader    = "X-Client-ID"
	maxClientIDLength = 64
)

// IdentifierFunc extracts the value a rule is scoped by. ok=false skips the rule.
type IdentifierFunc func(*gin.Context) (id string, ok bool)

// RateLimitRule configures a sliding-window limit for a particular identifier.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// RateLimiter enforces sliding-window limits backed by a port.RateLimitStore.
// Store failures fail open.
type RateLimiter struct {
	store  port.RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

// ProblemDetails is the RFC 9457 body written on 429 responses.
type ProblemDetails struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail"`
	Instance   string         `json:"instance"`
	RetryAfter int            `json:"retry_after"`
	TraceID    string         `json:"trace_id,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type quota struct {
	rule       string
	allowed    bool
	limit      int
	remaining  int
	reset      time.Time
	retryAfter time.Duration
}

// tighter reports whether q should be advertised in headers instead of other.
func (q quota) tighter(other quota) bool {
	if q.allowed != other.allowed {
		return !q.allowed
	}
	if q.remaining != other.remaining {
		return q.remaining < other.remaining
	}
	return q.reset.Before(other.reset)
}

func (q quota) retrySeconds() int {
	return max(int(math.Ceil(q.retryAfter.Seconds())), 0)
}

func NewRateLimiter(store port.RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the time source.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier scopes limits by the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		return ip, ip != ""
	}
}

// HeaderIdentifier scopes limits by a caller supplied header. Missing or oversized values are skipped.
func HeaderIdentifier(header string) IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		value := strings.TrimSpace(c.GetHeader(header))
		if value == "" || len(value) > maxClientIDLength {
			return "", false
		}
		return value, true
	}
}

// RateLimit returns a Gin middleware enforcing the provided rules in order.
// Rules without an identifier or with non-positive limits are dropped.
func (rl *RateLimiter) RateLimit(rules ...RateLimitRule) gin.HandlerFunc {
	active := make([]RateLimitRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
			continue
		}
		if rule.Name == "" {
			rule.Name = "default"
		}
		active = append(active, rule)
	}

	return func(c *gin.Context) {
		if len(active) == 0 || rl.store == nil {
			c.Next()
			return
		}

		now := rl.now()
		var advertised *quota

		for _, rule := range active {
			identifier, ok := rule.Identifier(c)
			if !ok || identifier == "" {
				continue
			}

			q, err := rl.check(c, rule, identifier, now)
			if err != nil {
				rl.logger.Warn("rate limit check failed",
					zap.String("rule", rule.Name),
					zap.Error(err),
				)
				continue
			}

			if !q.allowed {
				writeQuotaHeaders(c, q)
				rl.reject(c, q)
				return
			}
			if advertised == nil || q.tighter(*advertised) {
				advertised = &q
			}
		}

		if advertised != nil {
			writeQuotaHeaders(c, *advertised)
		}
		c.Next()
	}
}

func (rl *RateLimiter) check(c *gin.Context, rule RateLimitRule, identifier string, now time.Time) (quota, error) {
	decision, err := rl.store.Allow(c.Request.Context(), rule.Name+":"+identifier, rule.Limit, rule.Window, now)
	if err != nil {
		return quota{}, err
	}

	oldest := decision.Oldest
	if oldest.IsZero() {
		oldest = now
	}
	reset := oldest.Add(rule.Window)

	return quota{
		rule:       rule.Name,
		allowed:    decision.Allowed,
		limit:      rule.Limit,
		remaining:  max(rule.Limit-decision.Count, 0),
		reset:      reset,
		retryAfter: max(reset.Sub(now), 0),
	}, nil
}

func writeQuotaHeaders(c *gin.Context, q quota) {
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(q.limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(q.remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(q.reset.Unix(), 10))
	if !q.allowed {
		headers.Set("Retry-After", strconv.Itoa(q.retrySeconds()))
	}
}

func (rl *RateLimiter) reject(c *gin.Context, q quota) {
	instance := c.FullPath()
	if instance == "" {
		instance = c.Request.URL.Path
	}

	rl.logger.Info("rate limit exceeded",
		zap.String("rule", q.rule),
		zap.String("route", instance),
		zap.Int("retry_after", q.retrySeconds()),
	)

	c.AbortWithStatusJSON(http.StatusTooManyRequests, ProblemDetails{
		Type:       rateLimitProblemType,
		Title:      rateLimitProblemTitle,
		Status:     http.StatusTooManyRequests,
		Detail:     fmt.Sprintf("Too many requests. Try again in %d seconds.", q.retrySeconds()),
		Instance:   instance,
		RetryAfter: q.retrySeconds(),
		TraceID:    GetTraceID(c),
		Extensions: map[string]any{
			"rule":  q.rule,
			"limit": q.limit,
		},
	})
}
