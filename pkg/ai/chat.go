package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/johnquangdev/cyberon-reporter/pkg/jobcontext"
)

// ChatConfig configures a ChatClient against any OpenAI-compatible endpoint
type ChatConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float32
	MaxRetryElapsed time.Duration
}

// ChatClient sends a two-message conversation (system + user) and returns
// the assistant reply. Transient failures are retried with exponential backoff.
type ChatClient struct {
	client          *openai.Client
	model           string
	temperature     float32
	maxElapsed      time.Duration
	initialInterval time.Duration
	logger          *zap.Logger
}

// NewChatClient creates a chat client from cfg
func NewChatClient(cfg ChatConfig, logger *zap.Logger) *ChatClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	maxElapsed := cfg.MaxRetryElapsed
	if maxElapsed <= 0 {
		maxElapsed = 20 * time.Second
	}

	return &ChatClient{
		client:          openai.NewClientWithConfig(oc),
		model:           cfg.Model,
		temperature:     cfg.Temperature,
		maxElapsed:      maxElapsed,
		initialInterval: 500 * time.Millisecond,
		logger:          logger,
	}
}

// Complete returns the first choice of a chat completion for the given prompts
func (c *ChatClient) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		Temperature: c.temperature,
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = c.maxElapsed

	var (
		reply   string
		attempt int
	)
	op := func() error {
		attempt++
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			if !isRetryable(err) {
				return backoff.Permanent(err)
			}
			if c.logger != nil {
				c.logger.Warn("⚠️ Chat completion failed, retrying",
					zap.Int("attempt", attempt),
					zap.String("model", c.model),
					zap.Error(err),
				)
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("empty response from model %s", c.model))
		}
		reply = resp.Choices[0].Message.Content
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", fmt.Errorf("chat completion failed after %d attempt(s): %w", attempt, err)
	}

	if c.logger != nil {
		c.logger.Debug("✅ Chat completion received",
			zap.String("model", c.model),
			zap.Int("attempts", attempt),
			zap.Int("reply_length", len(reply)),
		)
	}
	return reply, nil
}

// isRetryable retries rate limits and server errors; other HTTP statuses
// (bad key, bad request) fail immediately.
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return jobcontext.IsRetryableError(err)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
