package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

const (
	BackendPostgres = "postgres"
	BackendSheet    = "sheet"
)

type Config struct {
	// Server
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"habitlog"`

	// Log store backend selection. The adapter is the only place allowed to
	// branch on this value.
	LogStoreBackend string `env:"LOG_STORE_BACKEND" envDefault:"postgres"` // postgres, sheet

	// PostgreSQL
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"habitlog"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"10"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"50"`

	// Spreadsheet webhook backend
	SheetWebhookURL     string `env:"SHEET_WEBHOOK_URL"`
	SheetWebhookToken   string `env:"SHEET_WEBHOOK_TOKEN"`
	SheetTimeoutSeconds int    `env:"SHEET_TIMEOUT_SECONDS" envDefault:"10"`

	// Redis (rate limiting)
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"hlog"`

	// JWT
	JWTSecret        string `env:"JWT_SECRET"` // required
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// Query cache windows
	CacheFreshSeconds int `env:"CACHE_FRESH_SECONDS" envDefault:"180"` // stale after this
	CacheEvictSeconds int `env:"CACHE_EVICT_SECONDS" envDefault:"600"` // dropped when idle this long

	// Read retry policy. Writes are never retried automatically.
	FetchMaxTries      int `env:"FETCH_MAX_TRIES" envDefault:"3"`
	FetchBackoffBaseMS int `env:"FETCH_BACKOFF_BASE_MS" envDefault:"200"`

	// Snowflake ID generator
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// Logging
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// OpenTelemetry
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`

	// Rate limiting, consumed by the middleware
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPM     int  `env:"RATE_LIMIT_RPM" envDefault:"120"` // requests per minute per caller
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.JWTSecret == "" {
		if Cfg.IsProduction() {
			log.Fatal("JWT_SECRET is required")
		}
		log.Println("WARN: JWT_SECRET not set, using an insecure development secret")
		Cfg.JWTSecret = "insecure-development-secret"
	}

	switch Cfg.LogStoreBackend {
	case BackendPostgres:
	case BackendSheet:
		if Cfg.SheetWebhookURL == "" {
			log.Fatal("SHEET_WEBHOOK_URL is required when LOG_STORE_BACKEND=sheet")
		}
	default:
		log.Fatalf("LOG_STORE_BACKEND must be %q or %q, got %q",
			BackendPostgres, BackendSheet, Cfg.LogStoreBackend)
	}

	if Cfg.CacheFreshSeconds <= 0 || Cfg.CacheEvictSeconds <= 0 {
		log.Fatal("CACHE_FRESH_SECONDS and CACHE_EVICT_SECONDS must be positive")
	}
	if Cfg.CacheEvictSeconds < Cfg.CacheFreshSeconds {
		log.Fatal("CACHE_EVICT_SECONDS must not be shorter than CACHE_FRESH_SECONDS")
	}

	if Cfg.FetchMaxTries < 1 {
		log.Fatal("FETCH_MAX_TRIES must be at least 1")
	}
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
