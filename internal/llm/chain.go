package llm

import (
	"strings"
	"time"
)

// ChainConfig carries the credentials and endpoints for the default chain.
// Empty keys or URLs leave the corresponding provider unconfigured.
type ChainConfig struct {
	ClaudeMaxURL string

	GroqAPIKey     string
	DeepSeekAPIKey string
	MistralAPIKey  string

	AnthropicAPIKey string
	AnthropicModel  string

	OllamaURL   string
	OllamaModel string
}

// Endpoints and timeouts of the hosted backends.
const (
	GroqBaseURL     = "https://api.groq.com/openai/v1"
	DeepSeekBaseURL = "https://api.deepseek.com"
	MistralBaseURL  = "https://api.mistral.ai/v1"

	claudeMaxTimeout = 130 * time.Second
	hostedTimeout    = 20 * time.Second
	anthropicTimeout = 30 * time.Second
	ollamaTimeout    = 30 * time.Second
)

// DefaultChain builds the providers in cascade order: the local Claude proxy
// first, then the hosted fallbacks, then local Ollama.
func DefaultChain(cfg ChainConfig) []Client {
	claudeMax := strings.TrimSuffix(cfg.ClaudeMaxURL, "/")
	claudeMaxHealth := ""
	claudeMaxBase := ""
	if claudeMax != "" {
		claudeMaxBase = claudeMax + "/v1"
		claudeMaxHealth = claudeMax + "/health"
	}

	anthropicModel := cfg.AnthropicModel
	if anthropicModel == "" {
		anthropicModel = "claude-sonnet-4-20250514"
	}
	ollamaModel := cfg.OllamaModel
	if ollamaModel == "" {
		ollamaModel = "llama3.1:8b"
	}

	return []Client{
		NewOpenAIClient(OpenAIConfig{
			Name:      "claude-max",
			BaseURL:   claudeMaxBase,
			Model:     "claude-max",
			Timeout:   claudeMaxTimeout,
			HealthURL: claudeMaxHealth,
		}),
		NewOpenAIClient(OpenAIConfig{
			Name:       "groq",
			BaseURL:    GroqBaseURL,
			APIKey:     cfg.GroqAPIKey,
			Model:      "llama-3.3-70b-versatile",
			Timeout:    hostedTimeout,
			RequireKey: true,
		}),
		NewOpenAIClient(OpenAIConfig{
			Name:       "deepseek",
			BaseURL:    DeepSeekBaseURL,
			APIKey:     cfg.DeepSeekAPIKey,
			Model:      "deepseek-chat",
			Timeout:    hostedTimeout,
			RequireKey: true,
		}),
		NewOpenAIClient(OpenAIConfig{
			Name:       "mistral",
			BaseURL:    MistralBaseURL,
			APIKey:     cfg.MistralAPIKey,
			Model:      "mistral-small-latest",
			Timeout:    hostedTimeout,
			RequireKey: true,
		}),
		NewAnthropicClient(AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   anthropicModel,
			Timeout: anthropicTimeout,
		}),
		NewOllamaClient(OllamaConfig{
			BaseURL: cfg.OllamaURL,
			Model:   ollamaModel,
			Timeout: ollamaTimeout,
		}),
	}
}
