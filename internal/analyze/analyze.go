// Package analyze forwards a free-form prompt to an OpenAI-compatible
// chat-completion API and returns the model's reply.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"yarsdash/internal/config"
)

// ErrEmptyCompletion is returned when the API answers without any choices.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// Client sends single, unretried completion requests.
type Client struct {
	cfg    config.LLM
	apiKey func() (string, error)
	log    *slog.Logger
}

// NewClient creates a Client for cfg. apiKey is called on every request;
// pass config.LLMCredentials to read the key from the environment.
func NewClient(cfg config.LLM, apiKey func() (string, error), log *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		apiKey: apiKey,
		log:    log.With("component", "analyze"),
	}
}

// CheckCredentials reports whether an API key is available.
func (c *Client) CheckCredentials() error {
	_, err := c.apiKey()
	return err
}

// Analyze sends prompt as a single user message and returns the reply text.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	key, err := c.apiKey()
	if err != nil {
		return "", err
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	client := openai.NewClient(
		option.WithAPIKey(key),
		option.WithBaseURL(c.cfg.BaseURL),
		option.WithMaxRetries(0),
	)

	start := time.Now()
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		MaxTokens:   openai.Int(c.cfg.MaxTokens),
		Temperature: openai.Float(c.cfg.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", describe(err))
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	c.log.Info("analysis completed",
		"model", resp.Model,
		"prompt_chars", len(prompt),
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return resp.Choices[0].Message.Content, nil
}

// describe reduces an API error to its status and message so the response
// body does not echo the full request dump.
func describe(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = strings.ToLower(strings.TrimSpace(apiErr.Type))
		}
		return &UpstreamError{Status: apiErr.StatusCode, Message: msg}
	}
	return err
}

// UpstreamError is a non-2xx answer from the completion API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned %d", e.Status)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}
