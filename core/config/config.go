// Package config loads application configuration from environment
// variables (with an optional local .env file via godotenv), providing
// sensible defaults for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/basegraph/salesassist/core/db"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Env  string
	Port string

	DB         db.Config
	Typesense  TypesenseConfig
	Redis      RedisConfig
	LLM        LLMConfig
	OTel       OTelConfig
	Admin      AdminConfig
	Push       PushConfig
	Retrieval  RetrievalConfig
	Deadlines  DeadlinesConfig
	Enrichment EnrichmentConfig
}

type TypesenseConfig struct {
	Host     string
	Port     string
	Protocol string
	APIKey   string
}

type RedisConfig struct {
	URL           string
	Stream        string
	ConsumerGroup string
}

// LLMConfig configures the Fast Model, Deep Model and embedding model.
// Provider is either "openai" or "anthropic"; the Fast and Deep roles may
// point at different providers so the combined Analyze surface can mix
// them (e.g. Deep = Anthropic, Fast = OpenAI fallback).
type LLMConfig struct {
	FastProvider string
	FastAPIKey   string
	FastModel    string

	DeepProvider string
	DeepAPIKey   string
	DeepModel    string

	EmbedModel string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

type AdminConfig struct {
	Secret string
}

// PushConfig configures the websocket upgrade endpoint's CORS posture.
type PushConfig struct {
	AllowedOrigins []string
}

type RetrievalConfig struct {
	SimilarityThreshold float64
	TopK                int
	ContextCapBytes     int
}

type DeadlinesConfig struct {
	FastPath          time.Duration
	SlowPath          time.Duration
	SlowPathStartup   time.Duration
	SlowPathChannelWait time.Duration
	SlowPathConcurrency int
}

// EnrichmentConfig independently toggles each strategic-enrichment
// function so a deployment can disable one without redeploying code.
type EnrichmentConfig struct {
	FuelPriceBenchmark bool
	SubsidyExpiryClock bool
	RegionalMarketNote bool
	UrgencyHeuristic   bool
}

// Load loads configuration from environment variables, optionally seeded
// from a local .env file. A missing .env file is not an error; a
// malformed one makes Load return an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		DB: db.Config{
			DSN:      buildDSN(),
			MaxConns: int32(getEnvInt("DATABASE_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DATABASE_MIN_CONNS", 2)),
		},
		Typesense: TypesenseConfig{
			Host:     getEnv("TYPESENSE_HOST", "localhost"),
			Port:     getEnv("TYPESENSE_PORT", "8108"),
			Protocol: getEnv("TYPESENSE_PROTOCOL", "http"),
			APIKey:   getEnv("TYPESENSE_API_KEY", ""),
		},
		Redis: RedisConfig{
			URL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
			Stream:        getEnv("REDIS_STREAM", "salesassist:slow_path"),
			ConsumerGroup: getEnv("REDIS_CONSUMER_GROUP", "salesassist-orchestrator"),
		},
		LLM: LLMConfig{
			FastProvider: getEnv("LLM_FAST_PROVIDER", "openai"),
			FastAPIKey:   getEnv("LLM_FAST_API_KEY", ""),
			FastModel:    getEnv("LLM_FAST_MODEL", "gpt-4o-mini"),
			DeepProvider: getEnv("LLM_DEEP_PROVIDER", "anthropic"),
			DeepAPIKey:   getEnv("LLM_DEEP_API_KEY", ""),
			DeepModel:    getEnv("LLM_DEEP_MODEL", "claude-sonnet-4-5-20250514"),
			EmbedModel:   getEnv("LLM_EMBED_MODEL", "text-embedding-3-small"),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "salesassist"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Admin: AdminConfig{
			Secret: getEnv("ADMIN_SECRET", ""),
		},
		Push: PushConfig{
			AllowedOrigins: splitCSV(getEnv("PUSH_ALLOWED_ORIGINS", "")),
		},
		Retrieval: RetrievalConfig{
			SimilarityThreshold: getEnvFloat("RETRIEVAL_SIMILARITY_THRESHOLD", 0.72),
			TopK:                getEnvInt("RETRIEVAL_TOP_K", 5),
			ContextCapBytes:     getEnvInt("RETRIEVAL_CONTEXT_CAP_BYTES", 8000),
		},
		Deadlines: DeadlinesConfig{
			FastPath:            time.Duration(getEnvInt("FAST_PATH_DEADLINE_MS", 5000)) * time.Millisecond,
			SlowPath:            time.Duration(getEnvInt("SLOW_PATH_DEADLINE_MS", 90000)) * time.Millisecond,
			SlowPathStartup:     time.Duration(getEnvInt("SLOW_PATH_STARTUP_DELAY_MS", 0)) * time.Millisecond,
			SlowPathChannelWait: time.Duration(getEnvInt("SLOW_PATH_CHANNEL_WAIT_MS", 1000)) * time.Millisecond,
			SlowPathConcurrency: getEnvInt("SLOW_PATH_CONCURRENCY", 4),
		},
		Enrichment: EnrichmentConfig{
			FuelPriceBenchmark: getEnvBool("ENRICH_FUEL_PRICE_BENCHMARK", true),
			SubsidyExpiryClock: getEnvBool("ENRICH_SUBSIDY_EXPIRY_CLOCK", true),
			RegionalMarketNote: getEnvBool("ENRICH_REGIONAL_MARKET_NOTE", true),
			UrgencyHeuristic:   getEnvBool("ENRICH_URGENCY_HEURISTIC", true),
		},
	}

	return cfg, nil
}

func buildDSN() string {
	host := getEnv("DATABASE_HOST", "localhost")
	port := getEnv("DATABASE_PORT", "5432")
	user := getEnv("DATABASE_USER", "postgres")
	password := getEnv("DATABASE_PASSWORD", "postgres")
	name := getEnv("DATABASE_NAME", "salesassist")
	sslMode := getEnv("DATABASE_SSLMODE", "disable")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, name, sslMode,
	)
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
