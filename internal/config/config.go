package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPeerwaveURL = "https://api.peerwave.ai/api/chat"
	DefaultModel       = "fastest"
	DefaultPrompt      = "Hello! Can you tell me a fun fact about space?"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Peerwave chat API
	PeerwaveURL    string
	PeerwaveModel  string
	RequestTimeout time.Duration // 0 leaves the HTTP client without a timeout

	// Widget
	Prompt string

	// Redis (optional, enables pub/sub delivery of widget updates)
	RedisURL string

	// Frontend
	FrontendURL     string
	WSRatePerMinute int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		Env:             getEnvOrDefault("ENV", "local"),
		PeerwaveURL:     getEnvOrDefault("PEERWAVE_API_URL", DefaultPeerwaveURL),
		PeerwaveModel:   getEnvOrDefault("PEERWAVE_MODEL", DefaultModel),
		RequestTimeout:  getEnvAsDurationOrDefault("REQUEST_TIMEOUT", 0),
		Prompt:          getEnvOrDefault("WIDGET_PROMPT", DefaultPrompt),
		RedisURL:        getEnvOrDefault("REDIS_URL", ""),
		FrontendURL:     getEnvOrDefault("FRONTEND_URL", "*"),
		WSRatePerMinute: getEnvAsIntOrDefault("WS_RATE_PER_MINUTE", 30),
	}

	if cfg.Env == "prod" {
		cfg.FrontendURL = mustGetEnv("FRONTEND_URL")
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvAsDurationOrDefault accepts Go duration strings ("30s", "2m").
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}
