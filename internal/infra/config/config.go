package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	GRPC      GRPCSettings      `mapstructure:"grpc"`
	Log       LogSettings       `mapstructure:"log"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Argon2    Argon2Settings    `mapstructure:"argon2"`
	Strength  StrengthSettings  `mapstructure:"strength"`
}

type AppSettings struct {
	Name               string   `mapstructure:"name"`
	Env                string   `mapstructure:"env"`
	Host               string   `mapstructure:"host"`
	Port               int      `mapstructure:"port"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	// TrustedProxies lists proxy addresses or CIDRs whose forwarding headers are honoured.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type GRPCSettings struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// LogSettings toggles logging explicitly instead of through a process-wide flag.
type LogSettings struct {
	Enabled bool `mapstructure:"enabled"`
	Debug   bool `mapstructure:"debug"`
}

type PostgresSettings struct {
	Enabled           bool          `mapstructure:"enabled"`
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS
type RedisSettings struct {
	Enabled               bool   `mapstructure:"enabled"`
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	DB                    int    `mapstructure:"db"`
	Password              string `mapstructure:"password"`
	TLSEnabled            bool   `mapstructure:"tls_enabled"`
	EvaluationCachePrefix string `mapstructure:"evaluation_cache_prefix"`
	RateLimitPrefix       string `mapstructure:"rate_limit_prefix"`
}

// KafkaSettings configures Kafka producer
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

type TelemetrySettings struct {
	TracingEnabled bool    `mapstructure:"tracing_enabled"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// RateLimitSettings configures rate limiting windows and max attempts per endpoint
type RateLimitSettings struct {
	WindowDuration      time.Duration `mapstructure:"window_duration"`
	EvaluateMaxAttempts int           `mapstructure:"evaluate_max_attempts"`
	ValidateMaxAttempts int           `mapstructure:"validate_max_attempts"`
}

// Argon2Settings configures the Argon2id parameters used for password fingerprints
type Argon2Settings struct {
	Pepper      string `mapstructure:"pepper"`
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

// StrengthSettings configures evaluation limits, caching and the validation policy.
type StrengthSettings struct {
	MaxLength           int           `mapstructure:"max_length"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	RecordEvaluations   bool          `mapstructure:"record_evaluations"`
	MinLevel            string        `mapstructure:"min_level"`
	MinLength           int           `mapstructure:"min_length"`
	MinCharacterClasses int           `mapstructure:"min_character_classes"`
	MinZxcvbnScore      int           `mapstructure:"min_zxcvbn_score"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("PASSMETER")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.cors_allowed_origins",
		"app.trusted_proxies",
		"grpc.enabled",
		"grpc.host",
		"grpc.port",
		"log.enabled",
		"log.debug",
		"postgres.enabled",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.enabled",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.evaluation_cache_prefix",
		"redis.rate_limit_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"telemetry.tracing_enabled",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
		"rate_limit.window_duration",
		"rate_limit.evaluate_max_attempts",
		"rate_limit.validate_max_attempts",
		"argon2.pepper",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.key_length",
		"strength.max_length",
		"strength.cache_ttl",
		"strength.record_evaluations",
		"strength.min_level",
		"strength.min_length",
		"strength.min_character_classes",
		"strength.min_zxcvbn_score",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "passmeter")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.cors_allowed_origins", []string{})
	v.SetDefault("app.trusted_proxies", []string{})

	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50051)

	v.SetDefault("log.enabled", true)
	v.SetDefault("log.debug", false)

	v.SetDefault("postgres.enabled", true)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "passmeter")
	v.SetDefault("postgres.password", "passmeter_password")
	v.SetDefault("postgres.database", "passmeter")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.evaluation_cache_prefix", "passmeter:evaluation")
	v.SetDefault("redis.rate_limit_prefix", "passmeter:rate-limit")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "passmeter")
	v.SetDefault("kafka.async", true)

	v.SetDefault("telemetry.tracing_enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	v.SetDefault("telemetry.service_name", "passmeter")
	v.SetDefault("telemetry.sampling_rate", 1.0)

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.evaluate_max_attempts", 60)
	v.SetDefault("rate_limit.validate_max_attempts", 30)

	// Fingerprints only key the cache, so the cost stays low.
	v.SetDefault("argon2.pepper", "change-me-in-production")
	v.SetDefault("argon2.memory", 8192)
	v.SetDefault("argon2.iterations", 1)
	v.SetDefault("argon2.parallelism", 1)
	v.SetDefault("argon2.key_length", 32)

	v.SetDefault("strength.max_length", 256)
	v.SetDefault("strength.cache_ttl", "10m")
	v.SetDefault("strength.record_evaluations", true)
	v.SetDefault("strength.min_level", "strong")
	v.SetDefault("strength.min_length", 10)
	v.SetDefault("strength.min_character_classes", 3)
	v.SetDefault("strength.min_zxcvbn_score", 3)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "PASSMETER_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
