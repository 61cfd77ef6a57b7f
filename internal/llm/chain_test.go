package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultChain_Order(t *testing.T) {
	chain := DefaultChain(ChainConfig{})

	cascade := NewCascade(nil, chain...)
	assert.Equal(t, []string{"claude-max", "groq", "deepseek", "mistral", "anthropic", "ollama"}, cascade.Names())
}

func TestDefaultChain_UnconfiguredFailsFast(t *testing.T) {
	cascade := NewCascade(nil, DefaultChain(ChainConfig{})...)

	_, _, err := cascade.Dispatch(context.Background(), testRequest)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Failures, 6)
	for _, f := range exhausted.Failures {
		assert.Equal(t, KindUnconfigured, f.Kind, f.Provider)
	}
}

func TestDefaultChain_KeyPresenceIsAvailability(t *testing.T) {
	chain := DefaultChain(ChainConfig{GroqAPIKey: "g", AnthropicAPIKey: "a"})
	statuses := NewCascade(nil, chain...).Health(context.Background())

	available := map[string]bool{}
	for _, s := range statuses {
		available[s.Name] = s.Available
	}
	assert.True(t, available["groq"])
	assert.True(t, available["anthropic"])
	assert.False(t, available["deepseek"])
	assert.False(t, available["mistral"])
	assert.False(t, available["claude-max"])
	assert.False(t, available["ollama"])
}
