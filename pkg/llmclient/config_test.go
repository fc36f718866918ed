package llmclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_DefaultsWhenUnset(t *testing.T) {
	t.Setenv("LLM_MODEL", "")
	t.Setenv("LLM_TEMPERATURE", "")
	cfg := FromEnv()
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Model)
	assert.Equal(t, defaultTemperature, cfg.Temperature)
	assert.Equal(t, defaultMaxTokens, cfg.MaxTokens)
}

func TestFromEnv_ReadsOverrides(t *testing.T) {
	t.Setenv("LLM_MODEL", "claude-haiku")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("LLM_MAX_TOKENS", "2048")
	cfg := FromEnv()
	assert.Equal(t, "claude-haiku", cfg.Model)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	assert.Equal(t, int64(2048), cfg.MaxTokens)
}
