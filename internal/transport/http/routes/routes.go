package routes

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/passmeter/internal/infra/config"
	"github.com/arklim/passmeter/internal/transport/http/handlers"
	"github.com/arklim/passmeter/internal/transport/http/middleware"
	"github.com/arklim/passmeter/internal/usecase"
)

const defaultMaxPasswordLength = 256

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	HTTPMetrics *middleware.HTTPMetrics
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
	Service        *usecase.StrengthService
	Database       DatabaseChecker
	Cache          CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config == nil {
		deps.Config = &config.AppConfig{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies(deps.Config.App.TrustedProxies)); err != nil {
		deps.Logger.Warn("invalid trusted proxies, forwarding headers ignored", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.Tracing(deps.TracerProvider))
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(deps.HTTPMetrics.Handler())
	r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		strengthHandler := handlers.NewStrengthHandler(deps.Service)
		passwordGroup := api.Group("/password", middleware.BodyLimit(handlers.RequestBodyLimit(maxPasswordLength(deps.Config))))
		strengthHandler.RegisterRoutes(passwordGroup,
			buildRateLimitMiddlewares(deps, "password_strength", deps.Config.RateLimit.EvaluateMaxAttempts),
			buildRateLimitMiddlewares(deps, "password_validate", deps.Config.RateLimit.ValidateMaxAttempts),
		)
	}

	handlers.RegisterSwagger(r)

	return r
}

func maxPasswordLength(cfg *config.AppConfig) int {
	if cfg.Strength.MaxLength > 0 {
		return cfg.Strength.MaxLength
	}
	return defaultMaxPasswordLength
}

// trustedProxies returns nil when nothing is configured so ClientIP falls back to the peer address.
func trustedProxies(configured []string) []string {
	var proxies []string
	for _, proxy := range configured {
		if trimmed := strings.TrimSpace(proxy); trimmed != "" {
			proxies = append(proxies, trimmed)
		}
	}
	return proxies
}

func buildRateLimitMiddlewares(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name + "_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
