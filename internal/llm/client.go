// Package llm provides the completion provider contract, the per-backend
// adapters and the cascade that tries them in order.
package llm

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultMaxTokens bounds every reply.
	DefaultMaxTokens = 400
	// DefaultTemperature is used when a request does not set one.
	DefaultTemperature = 0.6
	// ProbeTimeout bounds advisory liveness checks.
	ProbeTimeout = 3 * time.Second
)

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	System      string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content   string
	Model     string
	TokensIn  int
	TokensOut int
	LatencyMs int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Name returns the provider name.
	Name() string

	// Complete sends a completion request and returns the response. It fails
	// with a *ProviderError and never makes a network call when the provider
	// is not configured.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Available is a cheap, advisory probe. It never performs a completion.
	Available(ctx context.Context) bool
}

func (r *CompletionRequest) maxTokens() int {
	if r.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return r.MaxTokens
}

func (r *CompletionRequest) temperature() float64 {
	if r.Temperature <= 0 {
		return DefaultTemperature
	}
	return r.Temperature
}

// probeURL reports whether GET url answers 200 within ProbeTimeout.
func probeURL(ctx context.Context, client *http.Client, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
