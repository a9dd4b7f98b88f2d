// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/raphaelgruber/contentpilot/internal/models"
)

// Provider names a model backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Content store backends.
const (
	StoreMemory    = "memory"
	StoreSurrealDB = "surrealdb"
)

// MaxImageBytesCap is the largest attachment size the model backends accept.
const MaxImageBytesCap = 5 << 20

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration values.
type Config struct {
	// Model backend
	LLMProvider     Provider
	LLMModel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	AWSRegion       string
	LLMTimeout      time.Duration
	LLMMaxTokens    int

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Content library backend: memory or surrealdb
	Store string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// HTTP server
	ServerPort  string
	CORSOrigins []string

	// Conversation
	PromptsFile     string
	DefaultPlatform string
	MaxImageBytes   int
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		LLMProvider:     Provider(strings.ToLower(getEnv("LLM_PROVIDER", string(ProviderOllama)))),
		LLMModel:        getEnv("LLM_MODEL", "llama3.2-vision"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		LLMTimeout:      parseDuration(getEnv("LLM_TIMEOUT", "60s"), 60*time.Second),
		LLMMaxTokens:    parseInt(getEnv("LLM_MAX_TOKENS", "2048"), 2048),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "contentpilot"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "content"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		Store: strings.ToLower(getEnv("CONTENTPILOT_STORE", StoreMemory)),

		LogFile:  getEnv("CONTENTPILOT_LOG_FILE", "/tmp/contentpilot.log"),
		LogLevel: parseLogLevel(getEnv("CONTENTPILOT_LOG_LEVEL", "INFO")),

		ServerPort:  getEnv("CONTENTPILOT_SERVER_PORT", "8484"),
		CORSOrigins: splitList(getEnv("CONTENTPILOT_CORS_ORIGINS", "*")),

		PromptsFile:     getEnv("CONTENTPILOT_PROMPTS_FILE", ""),
		DefaultPlatform: getEnv("CONTENTPILOT_DEFAULT_PLATFORM", ""),
		MaxImageBytes:   parseInt(getEnv("CONTENTPILOT_MAX_IMAGE_BYTES", "5242880"), MaxImageBytesCap),
	}
}

// Validate reports configuration errors that must stop startup.
func (c Config) Validate() error {
	var errs []error

	switch c.LLMProvider {
	case ProviderOllama, ProviderBedrock:
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM provider %q", c.LLMProvider))
	}

	if c.DefaultPlatform != "" {
		if _, err := models.ParsePlatform(c.DefaultPlatform); err != nil {
			errs = append(errs, fmt.Errorf("CONTENTPILOT_DEFAULT_PLATFORM: %w", err))
		}
	}

	if c.Store != StoreMemory && c.Store != StoreSurrealDB {
		errs = append(errs, fmt.Errorf("unsupported content store %q", c.Store))
	}

	if c.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("CONTENTPILOT_MAX_IMAGE_BYTES must be positive"))
	} else if c.MaxImageBytes > MaxImageBytesCap {
		errs = append(errs, fmt.Errorf("CONTENTPILOT_MAX_IMAGE_BYTES must not exceed %d", MaxImageBytesCap))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// InitialPlatform returns the configured default platform, or nil when none
// is set. Call Validate first.
func (c Config) InitialPlatform() *models.Platform {
	if c.DefaultPlatform == "" {
		return nil
	}
	p, err := models.ParsePlatform(c.DefaultPlatform)
	if err != nil {
		return nil
	}
	return &p
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
