package llmclient

import (
	"os"
	"strconv"
)

// Config configures the production adapters.LLM backend. Every field is
// read from the environment by FromEnv; callers embedding this package in
// a larger process may instead build a Config by hand.
type Config struct {
	// Model is the Anthropic model id (e.g. "claude-sonnet-4-5-20250929").
	Model string
	// Provider is informational metadata surfaced in logs; the SDK call
	// itself always targets the Anthropic Messages API.
	Provider string
	APIKey   string
	// BaseURL overrides the SDK's default endpoint, for a compatible
	// proxy or regional gateway.
	BaseURL string

	Temperature float64
	TopP        float64
	MaxTokens   int64
	// Seed, when non-zero, is forwarded as metadata for reproducibility;
	// the Messages API does not guarantee determinism from it.
	Seed int64
	// ProjectID tags requests for a multi-project API key, forwarded as
	// a request header.
	ProjectID string

	// RateLimitPerSecond throttles outgoing Infer calls client-side,
	// independent of the server's own rate limiting.
	RateLimitPerSecond float64
}

const (
	defaultTemperature        = 0.2
	defaultMaxTokens    int64 = 4096
	defaultRateLimit          = 2.0
)

// FromEnv builds a Config from LLM_MODEL, LLM_PROVIDER, LLM_API_KEY,
// LLM_BASE_URL, LLM_TEMPERATURE, LLM_TOP_P, LLM_MAX_TOKENS, LLM_SEED,
// LLM_PROJECT_ID, and LLM_RATE_LIMIT_PER_SECOND, applying sane defaults
// to every optional numeric field.
func FromEnv() Config {
	return Config{
		Model:              envOr("LLM_MODEL", "claude-sonnet-4-5-20250929"),
		Provider:           envOr("LLM_PROVIDER", "anthropic"),
		APIKey:             os.Getenv("LLM_API_KEY"),
		BaseURL:            os.Getenv("LLM_BASE_URL"),
		Temperature:        envFloat("LLM_TEMPERATURE", defaultTemperature),
		TopP:               envFloat("LLM_TOP_P", 0),
		MaxTokens:          envInt64("LLM_MAX_TOKENS", defaultMaxTokens),
		Seed:               envInt64("LLM_SEED", 0),
		ProjectID:          os.Getenv("LLM_PROJECT_ID"),
		RateLimitPerSecond: envFloat("LLM_RATE_LIMIT_PER_SECOND", defaultRateLimit),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
