package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend kinds selectable via LLM_BACKEND.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendMock   = "mock"
)

type Config struct {
	Environment string
	LogLevel    slog.Level
	LogFile     string // optional rotating log file; empty logs to stdout

	Backend      string
	OllamaURL    string
	OpenAIAPIKey string
	OpenAIURL    string
	ModelName    string
	MaxTokens    int

	// GenTimeout bounds one backend generation call; expiry converges to
	// the same fallback reply as a backend failure.
	GenTimeout time.Duration

	RedisAddr string // optional telemetry store; empty disables it

	ProfileDir string

	WrapWidth    int
	MaxPageLines int
}

// Load reads configuration from the environment, after loading a .env file
// if one is present.
func Load() *Config {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	return &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:      getEnv("LOG_FILE", ""),
		Backend:      getEnv("LLM_BACKEND", BackendOllama),
		OllamaURL:    getEnv("OLLAMA_URL", "http://localhost:11434"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIURL:    getEnv("OPENAI_URL", ""),
		ModelName:    getEnv("MODEL_NAME", "mistral"),
		MaxTokens:    getEnvInt("MAX_TOKENS", 150),
		GenTimeout:   getEnvDuration("GEN_TIMEOUT", 30*time.Second),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		ProfileDir:   getEnv("PROFILE_DIR", "./data/npcs"),
		WrapWidth:    getEnvInt("DIALOG_WRAP_WIDTH", 30),
		MaxPageLines: getEnvInt("DIALOG_MAX_LINES", 3),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
