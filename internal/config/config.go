package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewUnderwritingConfigHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string
	Telemetry    TelemetryConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Redis RedisConfig

	// AdminTokens maps a bearer token to the role it acts as (admin, operator, viewer).
	AdminTokens map[string]string

	// DefaultChannel is used when a request does not name a sales channel.
	DefaultChannel string

	SeedDemoCatalog bool

	Scheduler SchedulerConfig
}

// SchedulerConfig drives the background jobs. An empty Jobs list runs
// every job.
type SchedulerConfig struct {
	Enabled         bool
	IntervalSeconds int64
	BatchSize       int
	Jobs            []string
}

// TelemetryConfig carries logging and OpenTelemetry exporter settings.
// OTLP protocol is "grpc" or "http".
type TelemetryConfig struct {
	LogLevel      string
	LogFormat     string
	OtelEnabled   bool
	OtlpProtocol  string
	SamplingRatio float64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	QuoteRatePerMinute       int64
	QuoteBurst               int64
	SubmissionRatePerMinute  int64
	SubmissionBurst          int64
	SubmissionLockTTLSeconds int64
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "polisa"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317")),
		Telemetry: TelemetryConfig{
			LogLevel:      strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:     strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:   getenvBool("OTEL_ENABLED", false),
			OtlpProtocol:  strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			SamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
		DBType:            getenv("DATABASE_TYPE", "mysql"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "3306"),
		DBName:            getenv("DATABASE_NAME", "polisa"),
		DBUser:            getenv("DATABASE_USER", "root"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 10)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 20)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),
		Redis: RedisConfig{
			Addr:                     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password:                 getenv("REDIS_PASSWORD", ""),
			DB:                       int(getenvInt64("REDIS_DB", 0)),
			QuoteRatePerMinute:       getenvInt64("RATE_LIMIT_QUOTE_PER_MINUTE", 120),
			QuoteBurst:               getenvInt64("RATE_LIMIT_QUOTE_BURST", 30),
			SubmissionRatePerMinute:  getenvInt64("RATE_LIMIT_SUBMISSION_PER_MINUTE", 20),
			SubmissionBurst:          getenvInt64("RATE_LIMIT_SUBMISSION_BURST", 5),
			SubmissionLockTTLSeconds: getenvInt64("SUBMISSION_LOCK_TTL_SECONDS", 15),
		},
		AdminTokens:     parseTokens(getenv("ADMIN_TOKENS", "")),
		DefaultChannel:  strings.TrimSpace(getenv("DEFAULT_CHANNEL", "portal")),
		SeedDemoCatalog: getenvBool("SEED_DEMO_CATALOG", false),
		Scheduler: SchedulerConfig{
			Enabled:         getenvBool("SCHEDULER_ENABLED", false),
			IntervalSeconds: getenvInt64("SCHEDULER_INTERVAL_SECONDS", 300),
			BatchSize:       int(getenvInt64("SCHEDULER_BATCH_SIZE", 100)),
			Jobs:            parseList(getenv("SCHEDULER_JOBS", "")),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseTokens reads "token:subject,token:subject". Entries without a subject
// are ignored.
func parseTokens(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		token, subject, ok := strings.Cut(part, ":")
		token = strings.TrimSpace(token)
		subject = strings.TrimSpace(subject)
		if !ok || token == "" || subject == "" {
			continue
		}
		out[token] = subject
	}
	return out
}
