// Package llmclient is the production adapters.LLM backend: a thin
// wrapper over the Anthropic Messages API, env-configured, client-side
// rate-limited, and translating HTTP 429s into apierrors.ErrRateLimited
// so callers can back off.
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/apierrors"
)

// messagesClient captures the subset of the Anthropic SDK used here,
// satisfied by *sdk.MessageService in production and a scriptable fake in
// tests.
type messagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Client implements adapters.LLM on top of the Anthropic Messages API.
type Client struct {
	messages messagesClient
	cfg      Config
	limiter  *rate.Limiter
}

// New builds a Client from cfg. Returns an error if cfg.APIKey is empty.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llmclient: LLM_API_KEY is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	sdkClient := sdk.NewClient(opts...)
	return newWithMessagesClient(cfg, &sdkClient.Messages), nil
}

func newWithMessagesClient(cfg Config, messages messagesClient) *Client {
	limit := cfg.RateLimitPerSecond
	if limit <= 0 {
		limit = defaultRateLimit
	}
	return &Client{
		messages: messages,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(limit), 1),
	}
}

// Infer implements adapters.LLM.
func (c *Client) Infer(ctx context.Context, messages []adapters.Message, systemPrompt *string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llmclient: rate limiter: %w", err)
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		Messages:  encodeMessages(messages),
	}
	if systemPrompt != nil && *systemPrompt != "" {
		params.System = []sdk.TextBlockParam{{Text: *systemPrompt}}
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = sdk.Float(c.cfg.Temperature)
	}
	if c.cfg.TopP > 0 {
		params.TopP = sdk.Float(c.cfg.TopP)
	}

	var reqOpts []option.RequestOption
	if c.cfg.ProjectID != "" {
		reqOpts = append(reqOpts, option.WithHeader("X-Project-Id", c.cfg.ProjectID))
	}

	msg, err := c.messages.New(ctx, params, reqOpts...)
	if err != nil {
		if isRateLimited(err) {
			return "", fmt.Errorf("%w: %w", apierrors.ErrRateLimited, err)
		}
		return "", fmt.Errorf("anthropic messages.new: %w", err)
	}
	return extractText(msg), nil
}

func encodeMessages(messages []adapters.Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := sdk.NewTextBlock(m.Content)
		if strings.EqualFold(m.Role, "assistant") {
			out = append(out, sdk.NewAssistantMessage(block))
			continue
		}
		out = append(out, sdk.NewUserMessage(block))
	}
	return out
}

func extractText(msg *sdk.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// isRateLimited reports whether err is an Anthropic API error carrying a
// 429 status, the SDK's typed error surfacing the server's rate limit.
func isRateLimited(err error) bool {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
