package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "BEACON_CHAT_PORT", "RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_PER_HOUR", "ALLOWED_ORIGINS", "GROQ_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8095", cfg.ServerPort)
	assert.Equal(t, 10, cfg.RateLimitPerMinute)
	assert.Equal(t, 50, cfg.RateLimitPerHour)
	assert.Equal(t, 30, cfg.MaxSessionMessages)
	assert.Equal(t, 500, cfg.MaxInputLength)
	assert.Equal(t, DefaultAllowedOrigins, cfg.AllowedOrigins)
	assert.Empty(t, cfg.GroqAPIKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "3")
	t.Setenv("RATE_LIMIT_SWEEP_INTERVAL", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("RATE_LIMIT_PER_HOUR", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, 3, cfg.RateLimitPerMinute)
	assert.Equal(t, 50, cfg.RateLimitPerHour)
	assert.Equal(t, 30*time.Second, cfg.IdleSweepInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.TracingEnabled)
}

func TestLoadSecrets_DoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(path, []byte("# providers\nGROQ_API_KEY='from-file'\nMISTRAL_API_KEY=\"m-key\"\n"), 0o600))

	t.Setenv("GROQ_API_KEY", "from-env")
	t.Setenv("MISTRAL_API_KEY", "")
	require.NoError(t, os.Unsetenv("MISTRAL_API_KEY"))

	require.NoError(t, LoadSecrets(path))
	t.Cleanup(func() { os.Unsetenv("MISTRAL_API_KEY") })

	cfg := Load()
	assert.Equal(t, "from-env", cfg.GroqAPIKey)
	assert.Equal(t, "m-key", cfg.MistralAPIKey)
}

func TestLoadSecrets_MissingFile(t *testing.T) {
	assert.NoError(t, LoadSecrets(filepath.Join(t.TempDir(), "absent.env")))
	assert.NoError(t, LoadSecrets(""))
}

func TestReadSystemPrompt(t *testing.T) {
	cfg := &Config{}
	prompt, err := cfg.ReadSystemPrompt("fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", prompt)

	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("  custom prompt\n"), 0o600))
	cfg.SystemPrompt = path

	prompt, err = cfg.ReadSystemPrompt("fallback")
	require.NoError(t, err)
	assert.Equal(t, "custom prompt", prompt)
}

func TestChainReport(t *testing.T) {
	cfg := &Config{GroqAPIKey: "g"}

	assert.Equal(t, []string{
		"claude-max (local)",
		"groq (ready)",
		"deepseek (no key)",
		"mistral (no key)",
		"anthropic (no key)",
		"ollama (local)",
	}, cfg.ChainReport())
}
