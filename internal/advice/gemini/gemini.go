// Package gemini implements advice.Completer on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"finbot/internal/core"
	applog "finbot/internal/log"
)

const DefaultModel = "gemini-1.5-flash"

var errEmpty = errors.New("empty response")

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API endpoint.
	BaseURL string
}

type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *applog.Logger
}

func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = applog.Discard()
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.WithComponent(applog.ComponentAdvice),
	}, nil
}

// Complete sends prompt as a single user turn and returns the text of the
// first candidate.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", core.CompletionError(applog.OpComplete, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", core.CompletionError(applog.OpComplete, errEmpty)
	}

	c.logger.DebugContext(ctx, "Completion received", applog.FieldModel, c.model, "chars", len(text))
	return text, nil
}
