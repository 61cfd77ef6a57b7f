package llm

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicConfig configures the Anthropic Messages API backend.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration

	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL string
}

// AnthropicClient is the Anthropic LLM client.
type AnthropicClient struct {
	cfg    AnthropicConfig
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client. Without an API key the
// client reports unconfigured on use.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	c := &AnthropicClient{cfg: cfg}
	if cfg.APIKey == "" {
		return c
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// One attempt per adapter per request; the cascade handles failover.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	c.client = anthropic.NewClient(opts...)

	return c
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// Available reports whether an API key is present.
func (c *AnthropicClient) Available(ctx context.Context) bool {
	return c.client != nil
}

// Complete sends a completion request with the system instruction in the
// dedicated system field.
func (c *AnthropicClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if c.client == nil {
		return nil, unconfigured(c.Name(), "no ANTHROPIC_API_KEY")
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	// Convert messages to Anthropic format
	messages := make([]anthropic.MessageParam, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = anthropic.MessageParam{
			Role: anthropic.F(anthropic.MessageParamRole(msg.Role)),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{
				anthropic.TextBlockParam{
					Type: anthropic.F(anthropic.TextBlockParamTypeText),
					Text: anthropic.F(msg.Content),
				},
			}),
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.F(c.cfg.Model),
		MaxTokens:   anthropic.F(int64(req.maxTokens())),
		Messages:    anthropic.F(messages),
		Temperature: anthropic.F(req.temperature()),
	}
	if req.System != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			{
				Type: anthropic.F(anthropic.TextBlockParamTypeText),
				Text: anthropic.F(req.System),
			},
		})
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classify(c.Name(), err)
	}

	// Extract content
	var content string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content += block.Text
		}
	}

	return &CompletionResponse{
		Content:   content,
		Model:     resp.Model,
		TokensIn:  int(resp.Usage.InputTokens),
		TokensOut: int(resp.Usage.OutputTokens),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

var _ Client = (*AnthropicClient)(nil)
