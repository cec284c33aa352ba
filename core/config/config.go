package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	Port      string
	OTel      OTelConfig
	Jetstream JetstreamConfig
	Pipeline  PipelineConfig
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type JetstreamConfig struct {
	Endpoint    string
	Collections []string
}

type PipelineConfig struct {
	DispatchPeriod time.Duration
	ScrollCooldown time.Duration
	PrimaryFilter  string
}

// Load reads configuration from environment variables. In development
// it first loads a local .env file when present.
func Load() (Config, error) {
	if getEnv("FIREHOSE_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:  getEnv("FIREHOSE_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "firehose"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Jetstream: JetstreamConfig{
			Endpoint:    getEnv("JETSTREAM_ENDPOINT", "wss://jetstream2.us-east.bsky.network/subscribe"),
			Collections: getEnvList("JETSTREAM_COLLECTIONS", []string{"app.bsky.feed.post"}),
		},
		Pipeline: PipelineConfig{
			DispatchPeriod: getEnvDuration("DISPATCH_PERIOD", 200*time.Millisecond),
			ScrollCooldown: getEnvDuration("SCROLL_COOLDOWN", 2*time.Second),
			PrimaryFilter:  getEnv("PRIMARY_FILTER", ""),
		},
	}

	if cfg.Pipeline.DispatchPeriod <= 0 {
		return Config{}, fmt.Errorf("DISPATCH_PERIOD must be positive")
	}
	if cfg.Pipeline.ScrollCooldown <= 0 {
		return Config{}, fmt.Errorf("SCROLL_COOLDOWN must be positive")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
