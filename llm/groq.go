package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopify-feed/internal/types"
	"shopify-feed/utils"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat completions endpoint (Groq by default)
type Client struct {
	http    *utils.HTTPClient
	baseURL string
	apiKey  string
	model   string
	logger  types.Logger
}

// NewClient creates a new model client
func NewClient(http *utils.HTTPClient, config *types.Config, logger types.Logger) *Client {
	return &Client{
		http:    http,
		baseURL: strings.TrimSuffix(config.LLMBaseURL, "/"),
		apiKey:  config.LLMAPIKey,
		model:   config.LLMModel,
		logger:  logger,
	}
}

// Complete sends a system and user message at temperature 0 and returns the
// first choice's content
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: missing API key", types.ErrModelRequest)
	}

	req := chatRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	c.logger.Debugf("Calling model %s (%d prompt chars)", c.model, len(system)+len(user))

	var resp chatResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/chat/completions", headers, req, &resp); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", types.ErrModelRequest, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", types.ErrModelRequest)
	}
	return resp.Choices[0].Message.Content, nil
}
