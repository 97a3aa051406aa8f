package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shopify-feed/internal/types"
)

// StatusError is returned when a server answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// HTTPClient provides HTTP functionality with request spacing and retries
type HTTPClient struct {
	client  *http.Client
	config  *types.Config
	logger  types.Logger
	limiter *time.Ticker
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	delay := config.RequestDelay
	if delay <= 0 {
		delay = time.Millisecond
	}

	return &HTTPClient{
		client:  client,
		config:  config,
		logger:  logger,
		limiter: time.NewTicker(delay),
	}
}

// Get performs a GET request with request spacing and retries
func (h *HTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	headers := map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
	return h.do(ctx, http.MethodGet, url, nil, headers)
}

// Fetch returns the raw markup of a page; used when headless browsing is disabled
func (h *HTTPClient) Fetch(ctx context.Context, url string) (string, error) {
	body, err := h.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrFetch, err)
	}
	return string(body), nil
}

// PostJSON marshals payload, posts it and decodes the JSON answer into out
func (h *HTTPClient) PostJSON(ctx context.Context, url string, headers map[string]string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	all := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range headers {
		all[k] = v
	}

	body, err := h.do(ctx, http.MethodPost, url, data, all)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (h *HTTPClient) do(ctx context.Context, method, url string, payload []byte, headers map[string]string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		// Wait for rate limiter
		select {
		case <-h.limiter.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", h.config.UserAgent)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		h.logger.Debugf("Making %s request to %s (attempt %d/%d)", method, url, attempt+1, h.config.MaxRetries+1)

		resp, err := h.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			h.logger.Warnf("Request failed (attempt %d): %v", attempt+1, err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			h.logger.Warnf("Failed to read response body (attempt %d): %v", attempt+1, err)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
			h.logger.Warnf("Unexpected status code %d (attempt %d)", resp.StatusCode, attempt+1)
			// Client errors other than throttling will not improve on retry
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, statusErr
			}
			lastErr = statusErr
			continue
		}

		h.logger.Debugf("Successfully retrieved %d bytes from %s", len(body), url)
		return body, nil
	}

	return nil, fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// Close cleans up resources
func (h *HTTPClient) Close() {
	if h.limiter != nil {
		h.limiter.Stop()
	}
}
