package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// maxResponseBytes bounds how much of a backend reply is read.
const maxResponseBytes = 1 << 20

// OllamaConfig configures a local Ollama backend.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	HTTPClient *http.Client
}

// OllamaClient talks to Ollama's native chat endpoint.
type OllamaClient struct {
	cfg    OllamaConfig
	client *http.Client
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []ChatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options"`
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &OllamaClient{cfg: cfg, client: client}
}

// Name returns the provider name.
func (c *OllamaClient) Name() string {
	return "ollama"
}

// Available probes the model listing endpoint.
func (c *OllamaClient) Available(ctx context.Context) bool {
	if c.cfg.BaseURL == "" {
		return false
	}
	return probeURL(ctx, c.client, c.cfg.BaseURL+"/api/tags")
}

// Complete sends a non-streaming chat request with the system instruction as
// the first message.
func (c *OllamaClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if c.cfg.BaseURL == "" {
		return nil, unconfigured(c.Name(), "no OLLAMA_URL")
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	messages := make([]ChatMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, req.Messages...)

	body, err := json.Marshal(ollamaChatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   false,
		Options: map[string]any{
			"temperature": req.temperature(),
			"num_predict": req.maxTokens(),
		},
	})
	if err != nil {
		return nil, backendError(c.Name(), fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, backendError(c.Name(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classify(c.Name(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classify(c.Name(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, backendError(c.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(data)))
	}

	content := gjson.GetBytes(data, "message.content")
	if content.Type != gjson.String {
		return nil, backendError(c.Name(), fmt.Errorf("%w: missing message.content", ErrMalformedResponse))
	}

	return &CompletionResponse{
		Content:   content.String(),
		Model:     gjson.GetBytes(data, "model").String(),
		TokensIn:  int(gjson.GetBytes(data, "prompt_eval_count").Int()),
		TokensOut: int(gjson.GetBytes(data, "eval_count").Int()),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func truncateBody(data []byte) string {
	const max = 200
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}

var _ Client = (*OllamaClient)(nil)
