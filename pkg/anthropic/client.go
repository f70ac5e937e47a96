// Package anthropic provides a minimal client for the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/himi-ai-lab/chatrelay/pkg/llm"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 500
	DefaultTimeout   = 60 * time.Second

	apiVersion   = "2023-06-01"
	messagesPath = "/v1/messages"
)

// Config is the client configuration.
type Config struct {
	// APIKey is sent as x-api-key. An empty key is sent as-is and
	// surfaces as an authentication error from the API.
	APIKey string

	// BaseURL of the API (e.g., "https://api.anthropic.com")
	BaseURL string

	// Timeout bounds a single request, including reading the body.
	Timeout time.Duration
}

// Client calls the Messages API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Client, filling unset fields with defaults.
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Generate sends req to the Messages API and returns the decoded reply.
func (c *Client) Generate(ctx context.Context, req *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.config.BaseURL + messagesPath
	c.logger.Debug("sending request to upstream",
		zap.String("url", url),
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
		zap.Int("body_size", len(reqBody)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Api-Key", c.config.APIKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		apiErr := newStatusError(httpResp.StatusCode, body)
		c.logger.Debug("upstream returned error",
			zap.Int("status", apiErr.StatusCode),
			zap.String("type", apiErr.Type),
			zap.String("message", apiErr.Message),
		)
		return nil, apiErr
	}

	var resp llm.GenerationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	c.logger.Debug("received response from upstream",
		zap.String("id", resp.ID),
		zap.String("stop_reason", resp.StopReason),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)

	return &resp, nil
}

func transportError(err error) *APIError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &APIError{Kind: KindTimeout, Err: err}
	}
	return &APIError{Kind: KindConnection, Err: err}
}
