package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAI-compatible chat completions backend.
type OpenAIConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration

	// RequireKey marks hosted backends that cannot be called without a key.
	RequireKey bool

	// HealthURL, when set, is probed instead of checking key presence.
	HealthURL string

	HTTPClient *http.Client
}

// OpenAIClient talks to any OpenAI-compatible backend (Groq, DeepSeek,
// Mistral, a local Claude proxy).
type OpenAIClient struct {
	cfg    OpenAIConfig
	client *openai.Client
	probe  *http.Client
}

// NewOpenAIClient creates a new OpenAI-compatible client. Missing credentials
// do not fail construction; the client reports unconfigured on use.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	c := &OpenAIClient{
		cfg:   cfg,
		probe: cfg.HTTPClient,
	}

	if c.configured() {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
		clientCfg.HTTPClient = cfg.HTTPClient
		c.client = openai.NewClientWithConfig(clientCfg)
	}

	return c
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return c.cfg.Name
}

func (c *OpenAIClient) configured() bool {
	if c.cfg.BaseURL == "" {
		return false
	}
	return !c.cfg.RequireKey || c.cfg.APIKey != ""
}

// Available reports key presence, or probes HealthURL for local backends.
func (c *OpenAIClient) Available(ctx context.Context) bool {
	if !c.configured() {
		return false
	}
	if c.cfg.HealthURL != "" {
		return probeURL(ctx, c.probe, c.cfg.HealthURL)
	}
	return true
}

// Complete sends a completion request with the system instruction prepended
// as a system-role message.
func (c *OpenAIClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if !c.configured() {
		if c.cfg.BaseURL == "" {
			return nil, unconfigured(c.cfg.Name, "no base URL")
		}
		return nil, unconfigured(c.cfg.Name, "no API key")
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   req.maxTokens(),
		Temperature: float32(req.temperature()),
	})
	if err != nil {
		return nil, classify(c.cfg.Name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, backendError(c.cfg.Name, fmt.Errorf("%w: no choices", ErrMalformedResponse))
	}

	return &CompletionResponse{
		Content:   resp.Choices[0].Message.Content,
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

var _ Client = (*OpenAIClient)(nil)
