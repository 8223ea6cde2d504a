package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/passmeter/internal/core/domain"
	"github.com/arklim/passmeter/internal/core/port"
	"github.com/arklim/passmeter/internal/infra/config"
	"github.com/arklim/passmeter/internal/infra/database"
	kafkainfra "github.com/arklim/passmeter/internal/infra/kafka"
	"github.com/arklim/passmeter/internal/infra/logger"
	redisinfra "github.com/arklim/passmeter/internal/infra/redis"
	"github.com/arklim/passmeter/internal/infra/security"
	"github.com/arklim/passmeter/internal/infra/telemetry"
	postgresrepo "github.com/arklim/passmeter/internal/repository/postgres"
	redisrepo "github.com/arklim/passmeter/internal/repository/redis"
	transportgrpc "github.com/arklim/passmeter/internal/transport/grpc"
	grpcinterceptors "github.com/arklim/passmeter/internal/transport/grpc/interceptors"
	"github.com/arklim/passmeter/internal/transport/http/middleware"
	"github.com/arklim/passmeter/internal/transport/http/routes"
	"github.com/arklim/passmeter/internal/usecase"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

const shutdownTimeout = 10 * time.Second

type Application struct {
	cfg        *config.AppConfig
	engine     *gin.Engine
	logger     *zap.Logger
	pool       *pgxpool.Pool
	redis      *redisinfra.Client
	producer   *kafkainfra.Producer
	tracer     *telemetry.TracerProvider
	grpcServer *transportgrpc.Server
	grpcAddr   string
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(logger.Options{
		Env:     cfg.App.Env,
		Enabled: cfg.Log.Enabled,
		Debug:   cfg.Log.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &Application{cfg: cfg, logger: log}
	if err := a.wire(ctx); err != nil {
		a.close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *Application) wire(ctx context.Context) error {
	cfg, log := a.cfg, a.logger

	if cfg.Telemetry.TracingEnabled {
		tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, Version, log)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		a.tracer = tp
	}

	minLevel, err := domain.ParseStrengthLevel(cfg.Strength.MinLevel)
	if err != nil {
		return fmt.Errorf("parse strength.min_level: %w", err)
	}

	classifier := security.NewClassifier()
	policy := security.NewPasswordPolicy(security.PolicyConfig{
		MinLength:           cfg.Strength.MinLength,
		MaxLength:           cfg.Strength.MaxLength,
		MinCharacterClasses: cfg.Strength.MinCharacterClasses,
		MinZxcvbnScore:      cfg.Strength.MinZxcvbnScore,
		MinLevel:            minLevel,
	}, classifier)

	strengthMetrics, err := telemetry.NewStrengthMetrics(telemetry.StrengthMetricsOptions{})
	if err != nil {
		return fmt.Errorf("init strength metrics: %w", err)
	}

	service := usecase.NewStrengthService(classifier, security.NewEstimator(), policy, log).
		WithMaxLength(cfg.Strength.MaxLength).
		WithMetrics(strengthMetrics)

	if cfg.Postgres.Enabled {
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
		if err != nil {
			return fmt.Errorf("init postgres: %w", err)
		}
		a.pool = pool

		repos := postgresrepo.NewRepositories(pool)
		service.WithRepository(repos.Evaluations, cfg.Strength.RecordEvaluations)
	} else {
		log.Info("postgres disabled, evaluation statistics unavailable")
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.Redis.Enabled {
		redisClient, err := redisinfra.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("init redis: %w", err)
		}
		a.redis = redisClient

		fingerprinter, err := security.NewFingerprinter(security.FingerprintConfig{
			Pepper:      cfg.Argon2.Pepper,
			Memory:      cfg.Argon2.Memory,
			Iterations:  cfg.Argon2.Iterations,
			Parallelism: cfg.Argon2.Parallelism,
			KeyLength:   cfg.Argon2.KeyLength,
		})
		if err != nil {
			return fmt.Errorf("init fingerprinter: %w", err)
		}

		cache := redisrepo.NewEvaluationCache(redisClient.Client(), cfg.Redis.EvaluationCachePrefix)
		service.WithCache(cache, fingerprinter, cfg.Strength.CacheTTL)

		rateLimitWindow := cfg.RateLimit.WindowDuration
		if rateLimitWindow <= 0 {
			rateLimitWindow = time.Minute
		}
		rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
			KeyPrefix: cfg.Redis.RateLimitPrefix,
			TTL:       rateLimitWindow * 2,
		})
		rateLimiter = middleware.NewRateLimiter(rateLimitStore, log)
	} else {
		log.Info("redis disabled, evaluation cache and rate limiting off")
	}

	service.WithPublisher(a.eventPublisher())

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		return fmt.Errorf("init http metrics: %w", err)
	}

	deps := routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		HTTPMetrics: httpMetrics,
		Service:     service,
	}
	if a.tracer != nil {
		deps.TracerProvider = a.tracer.TracerProvider()
	}
	if a.pool != nil {
		deps.Database = a.pool
	}
	if a.redis != nil {
		deps.Cache = a.redis
	}
	a.engine = routes.Register(deps)

	if cfg.GRPC.Enabled {
		grpcMetrics, err := grpcinterceptors.NewGRPCMetrics(grpcinterceptors.GRPCMetricsOptions{})
		if err != nil {
			return fmt.Errorf("init grpc metrics: %w", err)
		}

		grpcDeps := transportgrpc.ServerDependencies{
			Logger:   log,
			Metrics:  grpcMetrics,
			Strength: service,
			Services: []string{cfg.App.Name},
		}
		if a.tracer != nil {
			grpcDeps.TracerProvider = a.tracer.TracerProvider()
		}

		grpcSrv, err := transportgrpc.NewServer(grpcDeps)
		if err != nil {
			return fmt.Errorf("init grpc server: %w", err)
		}
		a.grpcServer = grpcSrv
		a.grpcAddr = fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	}

	return nil
}

func (a *Application) eventPublisher() port.EventPublisher {
	if len(a.cfg.Kafka.Brokers) == 0 {
		a.logger.Info("kafka brokers not configured, using stub publisher")
		return kafkainfra.NewStubPublisher(a.logger)
	}

	producer, err := kafkainfra.NewProducer(a.cfg.Kafka, a.logger)
	if err != nil {
		a.logger.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(a.logger)
	}
	a.producer = producer
	return kafkainfra.NewEventPublisher(producer, a.cfg.App, a.logger)
}

func (a *Application) Run(ctx context.Context) error {
	defer a.close(context.Background())

	grpcErrCh := make(chan error, 1)
	if a.grpcServer != nil {
		lis, err := net.Listen("tcp", a.grpcAddr)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		go func() {
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("gRPC server panicked", zap.Any("panic", r))
					grpcErrCh <- fmt.Errorf("grpc server panicked: %v", r)
				}
			}()
			if err := a.grpcServer.Serve(lis); err != nil {
				a.logger.Error("gRPC server error", zap.Error(err))
				grpcErrCh <- fmt.Errorf("run grpc server: %w", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	a.logger.Info("starting passmeter API",
		zap.String("env", a.cfg.App.Env),
		zap.String("version", Version),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if a.grpcServer != nil {
			a.grpcServer.Shutdown(shutdownCtx)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	case err := <-grpcErrCh:
		return err
	}
}

// close releases backends in reverse order of construction.
func (a *Application) close(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
		if failed := a.producer.Failed(); failed > 0 {
			a.logger.Warn("kafka events were not delivered", zap.Int64("failed", failed))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.logger.Warn("shutdown tracer provider", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
