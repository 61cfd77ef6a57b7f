// Package config provides environment configuration for the chat gateway.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/activemirror/beacon-chat/internal/llm"
)

// DefaultAllowedOrigins are the browser origins permitted to call the API.
var DefaultAllowedOrigins = []string{
	"https://beacon.activemirror.ai",
	"https://activemirror.ai",
	"http://localhost:5173",
	"http://localhost:5174",
	"http://localhost:5175",
}

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	AllowedOrigins     []string

	// Provider settings
	ClaudeMaxURL    string
	GroqAPIKey      string
	DeepSeekAPIKey  string
	MistralAPIKey   string
	AnthropicAPIKey string
	AnthropicModel  string
	OllamaURL       string
	OllamaModel     string
	SystemPrompt    string

	// Admission and session limits
	RateLimitPerMinute  int
	RateLimitPerHour    int
	MaxIdentities       int
	IdleSweepInterval   time.Duration
	MaxSessionMessages  int
	MaxInputLength      int
	HealthRateLimit     int
	HealthRateLimitSpan time.Duration

	// NATS settings
	NATSURL      string
	NATSToken    string
	NATSSubject  string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string

	// Operator diagnostics
	OperatorJWTSecret string

	// Logging
	LogLevel  string
	LogFormat string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// DefaultSecretsFile is loaded before the environment is read.
func DefaultSecretsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mirrordna", "secrets.env")
}

// LoadSecrets reads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadSecrets(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load secrets file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", getEnv("BEACON_CHAT_PORT", "8095")),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 300*time.Second),
		AllowedOrigins:     getListEnv("ALLOWED_ORIGINS", DefaultAllowedOrigins),

		// Providers
		ClaudeMaxURL:    getEnv("CLAUDE_MAX_URL", "http://localhost:8099"),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
		MistralAPIKey:   getEnv("MISTRAL_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:     getEnv("OLLAMA_MODEL", "llama3.1:8b"),
		SystemPrompt:    getEnv("SYSTEM_PROMPT_FILE", ""),

		// Limits
		RateLimitPerMinute:  getIntEnv("RATE_LIMIT_PER_MINUTE", 10),
		RateLimitPerHour:    getIntEnv("RATE_LIMIT_PER_HOUR", 50),
		MaxIdentities:       getIntEnv("RATE_LIMIT_MAX_IDENTITIES", 100000),
		IdleSweepInterval:   getDurationEnv("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
		MaxSessionMessages:  getIntEnv("MAX_SESSION_MESSAGES", 30),
		MaxInputLength:      getIntEnv("MAX_INPUT_LENGTH", 500),
		HealthRateLimit:     getIntEnv("HEALTH_RATE_LIMIT", 30),
		HealthRateLimitSpan: getDurationEnv("HEALTH_RATE_LIMIT_WINDOW", time.Minute),

		// NATS
		NATSURL:      getEnv("NATS_URL", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),
		NATSSubject:  getEnv("NATS_SUBJECT", "beacon.chat.events"),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),

		// Operator
		OperatorJWTSecret: getEnv("OPERATOR_JWT_SECRET", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// Chain returns the provider chain settings.
func (c *Config) Chain() llm.ChainConfig {
	return llm.ChainConfig{
		ClaudeMaxURL:    c.ClaudeMaxURL,
		GroqAPIKey:      c.GroqAPIKey,
		DeepSeekAPIKey:  c.DeepSeekAPIKey,
		MistralAPIKey:   c.MistralAPIKey,
		AnthropicAPIKey: c.AnthropicAPIKey,
		AnthropicModel:  c.AnthropicModel,
		OllamaURL:       c.OllamaURL,
		OllamaModel:     c.OllamaModel,
	}
}

// ReadSystemPrompt returns the contents of SYSTEM_PROMPT_FILE, or fallback
// when unset.
func (c *Config) ReadSystemPrompt(fallback string) (string, error) {
	if c.SystemPrompt == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(c.SystemPrompt)
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ChainReport describes each provider's key state for the startup log.
func (c *Config) ChainReport() []string {
	keyed := func(name, key string) string {
		if key == "" {
			return name + " (no key)"
		}
		return name + " (ready)"
	}
	return []string{
		"claude-max (local)",
		keyed("groq", c.GroqAPIKey),
		keyed("deepseek", c.DeepSeekAPIKey),
		keyed("mistral", c.MistralAPIKey),
		keyed("anthropic", c.AnthropicAPIKey),
		"ollama (local)",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}
