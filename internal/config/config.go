// package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// database
	DatabaseURL string

	// nats
	NatsURL string

	// telemetry collection
	CollectorURL string // endpoint the mini app posts events to; empty disables network sends
	IngestRPS    float64
	IngestBurst  int

	// bank directory
	BanksFile    string // YAML registry the server loads and serves as JSON
	DirectoryURL string // resource the client-side loader fetches

	// redirect
	RedirectGrace time.Duration

	// server
	HTTPPort       int
	StaticDir      string
	AllowedOrigins []string

	// logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		NatsURL:       getEnv("NATS_URL", "nats://localhost:4222"),
		CollectorURL:  getEnv("COLLECTOR_URL", "http://localhost:8080/api/webapp"),
		IngestRPS:     getEnvFloat("INGEST_RPS", 20),
		IngestBurst:   getEnvInt("INGEST_BURST", 40),
		BanksFile:     getEnv("BANKS_FILE", "./configs/banks.yaml"),
		DirectoryURL:  getEnv("DIRECTORY_URL", "/banks.json"),
		RedirectGrace: time.Duration(getEnvInt("REDIRECT_GRACE_MS", 1100)) * time.Millisecond,
		HTTPPort:      getEnvInt("HTTP_PORT", 8080),
		StaticDir:     getEnv("STATIC_DIR", "./webapp"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
	}

	origins := getEnv("ALLOWED_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
