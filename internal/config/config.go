package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Gateway   GatewayConfig
	Triage    TriageConfig
	Telemetry TelemetryConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN keeps tickets in memory.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines session token parameters.
type AuthConfig struct {
	JWTSecret              string
	SessionTokenTTLMinutes int
}

// GatewayConfig configures the text-completion provider.
type GatewayConfig struct {
	APIKey            string
	Model             string
	BaseURL           string
	RequestsPerMinute int
}

// TriageConfig tunes the triage workflow.
type TriageConfig struct {
	GatewayTimeoutSeconds int
	SubmitTimeoutSeconds  int
	SessionIdleTTLMinutes int
	SweepIntervalSeconds  int
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	Endpoint     string
	SamplingRate float64
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	samplingRate, err := strconv.ParseFloat(getEnv("OTEL_SAMPLING_RATE", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_SAMPLING_RATE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "supportbox-triage"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 45),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SessionTokenTTLMinutes: getEnvAsInt("AUTH_SESSION_TOKEN_TTL_MINUTES", 120),
		},
		Gateway: GatewayConfig{
			APIKey:            os.Getenv("GEMINI_API_KEY"),
			Model:             getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			BaseURL:           getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			RequestsPerMinute: getEnvAsInt("GATEWAY_REQUESTS_PER_MINUTE", 60),
		},
		Triage: TriageConfig{
			GatewayTimeoutSeconds: getEnvAsInt("TRIAGE_GATEWAY_TIMEOUT_SECONDS", 20),
			SubmitTimeoutSeconds:  getEnvAsInt("TRIAGE_SUBMIT_TIMEOUT_SECONDS", 10),
			SessionIdleTTLMinutes: getEnvAsInt("TRIAGE_SESSION_IDLE_TTL_MINUTES", 30),
			SweepIntervalSeconds:  getEnvAsInt("TRIAGE_SWEEP_INTERVAL_SECONDS", 60),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SamplingRate: samplingRate,
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	return seconds(a.RequestTimeoutSeconds)
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// GatewayTimeout bounds a single completion call.
func (t TriageConfig) GatewayTimeout() time.Duration {
	return seconds(t.GatewayTimeoutSeconds)
}

// SubmitTimeout bounds a single ticket submission.
func (t TriageConfig) SubmitTimeout() time.Duration {
	return seconds(t.SubmitTimeoutSeconds)
}

// SessionIdleTTL is how long an untouched session is kept.
func (t TriageConfig) SessionIdleTTL() time.Duration {
	if t.SessionIdleTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(t.SessionIdleTTLMinutes) * time.Minute
}

// SweepInterval is the period of the idle session sweeper.
func (t TriageConfig) SweepInterval() time.Duration {
	return seconds(t.SweepIntervalSeconds)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
