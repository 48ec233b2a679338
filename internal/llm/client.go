// Package llm wraps the external completion provider behind a single
// opaque call. Prompt construction and response handling live with the
// callers; this package only moves text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"studyaid/internal/domain"
)

// ErrUnavailable is returned when no API key is configured.
var ErrUnavailable = errors.New("completion provider is not configured")

// Completer is the opaque text-completion collaborator. Callers own the
// timeout via ctx; the client imposes none of its own.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Client implements Completer over an OpenAI-compatible chat API.
type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a completion client. With an empty API key the client
// is constructed but every call returns ErrUnavailable, so the rest of the
// service keeps working without generation.
func NewClient(apiKey, baseURL, model string, logger *slog.Logger) *Client {
	if apiKey == "" {
		return &Client{model: model, logger: logger}
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// Complete sends one chat completion request and returns the raw text.
// Failures wrap domain.ErrTransport so callers can distinguish transport
// problems from extraction problems.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.client == nil {
		return "", ErrUnavailable
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.4,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: provider returned no choices", domain.ErrTransport)
	}

	c.logger.Debug("completion received",
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	return resp.Choices[0].Message.Content, nil
}
