// Package llm provides a chat-completion client for OpenAI-compatible model
// servers (LM Studio, Ollama, OpenAI). The planner uses it to turn questions
// into query plans and to synthesise multi-step results.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/c360studio/semstreams/pkg/retry"
	"github.com/google/uuid"
)

// maxResponseSize limits the LLM response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// DefaultTimeout bounds a single HTTP round trip to the model server.
const DefaultTimeout = 2 * time.Minute

// Completer is anything that can answer a completion request.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Endpoint identifies the model server and model to call.
type Endpoint struct {
	// Provider is a registered provider name ("lmstudio", "ollama", "openai").
	Provider string

	// URL is the API base URL. Empty uses the provider default.
	URL string

	// Model is the model name sent in the request body.
	Model string
}

// Client calls one endpoint, retrying transient failures.
type Client struct {
	endpoint    Endpoint
	httpClient  *http.Client
	retryConfig retry.Config
	logger      *slog.Logger
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", or "assistant"
	Content string `json:"content"` // Message content
}

// Request defines an LLM completion request.
type Request struct {
	// Messages is the chat history to send to the LLM.
	Messages []Message

	// Temperature controls randomness. nil uses endpoint default, 0 is deterministic.
	Temperature *float64

	// MaxTokens limits response length. 0 uses endpoint default.
	MaxTokens int
}

// TokenUsage represents token consumption details for an LLM call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response contains the LLM completion result.
type Response struct {
	// RequestID uniquely identifies this call, for audit correlation.
	RequestID string

	// Content is the generated text.
	Content string

	// Model is the model that answered.
	Model string

	// Usage contains token consumption metrics, when the server reports them.
	Usage TokenUsage

	// FinishReason indicates why generation stopped.
	FinishReason string

	// Attempts is how many HTTP attempts the call took.
	Attempts int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP timeout of the default client.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		if d > 0 {
			client.httpClient.Timeout = d
		}
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg retry.Config) ClientOption {
	return func(client *Client) {
		client.retryConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// DefaultRetryConfig makes a single attempt. Planner questions are
// interactive, so failing fast beats waiting through backoff.
func DefaultRetryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 1
	return cfg
}

// NewClient creates a client for the given endpoint.
func NewClient(ep Endpoint, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:    ep,
		retryConfig: DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// Complete sends a completion request, retrying transient errors.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, NewFatalError(fmt.Errorf("at least one message is required"))
	}
	provider := GetProvider(c.endpoint.Provider)
	if provider == nil {
		return nil, NewFatalError(fmt.Errorf("unknown provider: %s", c.endpoint.Provider))
	}

	requestID := uuid.New().String()
	startedAt := time.Now()
	attempts := 0

	resp, err := retry.DoWithResult(ctx, c.retryConfig, func() (*Response, error) {
		attempts++
		resp, err := c.doRequest(ctx, provider, req)
		if err != nil {
			if IsFatal(err) {
				return nil, retry.NonRetryable(err)
			}
			c.logger.Debug("LLM request failed",
				"request_id", requestID,
				"attempt", attempts,
				"error", err)
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		c.logger.Warn("LLM request failed",
			"request_id", requestID,
			"provider", c.endpoint.Provider,
			"model", c.endpoint.Model,
			"attempts", attempts,
			"error", err)
		return nil, unwrapRetry(err)
	}

	resp.RequestID = requestID
	resp.Attempts = attempts
	c.logger.Debug("LLM request completed",
		"request_id", requestID,
		"model", resp.Model,
		"attempts", attempts,
		"duration", time.Since(startedAt),
		"total_tokens", resp.Usage.TotalTokens)
	return resp, nil
}

// unwrapRetry strips the retry wrapper so callers see the classified error.
func unwrapRetry(err error) error {
	var nre *retry.NonRetryableError
	if errors.As(err, &nre) {
		return nre.Unwrap()
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	return err
}

// doRequest executes a single HTTP request to the LLM endpoint.
func (c *Client) doRequest(ctx context.Context, provider Provider, req Request) (*Response, error) {
	url := provider.BuildURL(c.endpoint.URL)

	body, err := provider.BuildRequestBody(c.endpoint.Model, req.Messages, req.Temperature, req.MaxTokens)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	c.logger.Debug("Sending LLM request",
		"provider", provider.Name(),
		"model", c.endpoint.Model,
		"url", url,
		"messages", len(req.Messages))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	provider.SetHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Network errors are transient
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(httpResp.StatusCode, respBody)
	}

	resp, err := provider.ParseResponse(respBody, c.endpoint.Model)
	if err != nil {
		return nil, NewFatalError(err)
	}
	return resp, nil
}

// classifyHTTPError determines if an HTTP error is transient or fatal.
func classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("LLM API error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewTransientError(err)
	case statusCode >= 500:
		return NewTransientError(err)
	default:
		// Auth, bad request and unknown statuses will not improve on retry.
		return NewFatalError(err)
	}
}
