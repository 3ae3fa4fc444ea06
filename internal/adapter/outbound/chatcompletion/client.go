// Package chatcompletion is a comment generation backend for OpenAI-compatible
// chat completion endpoints, including DeepSeek deployments that stream
// "data:" prefixed lines.
package chatcompletion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"javadocgen/internal/application/common/retry"
	"javadocgen/internal/application/common/slogger"
	"javadocgen/internal/port/outbound"
)

const (
	// DefaultBaseURL is the DeepSeek API root.
	DefaultBaseURL = "https://api.deepseek.com/v1"
	// DefaultModel is the model requested when none is configured.
	DefaultModel = "deepseek-chat"
	// DefaultTemperature matches the sampling temperature used for doc generation.
	DefaultTemperature = 0.8
	// DefaultTimeout bounds one HTTP request.
	DefaultTimeout = 120 * time.Second
	// DefaultStopPath is appended to the base URL for stop requests.
	DefaultStopPath = "/stop"

	completionsPath = "/chat/completions"
	stopTimeout     = 10 * time.Second
	maxResponseSize = 4 << 20
)

// ClientConfig holds the configuration for the chat completion client.
type ClientConfig struct {
	APIKey      string        `json:"api_key"`
	BaseURL     string        `json:"base_url"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Timeout     time.Duration `json:"timeout"`
	MaxRetries  int           `json:"max_retries"`
	StopPath    string        `json:"stop_path"`
	UserAgent   string        `json:"user_agent"`

	// Retry overrides the backoff schedule. MaxRetries still applies.
	Retry *retry.RetryConfig `json:"-"`
}

// Validate validates the client configuration.
func (c *ClientConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("API key cannot be empty")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid base URL: %q", c.BaseURL)
		}
	}
	if c.Timeout < 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("temperature must be between 0 and 2")
	}
	return nil
}

func applyConfigDefaults(config ClientConfig) ClientConfig {
	config.APIKey = strings.TrimSpace(config.APIKey)
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.StopPath == "" {
		config.StopPath = DefaultStopPath
	}
	if config.UserAgent == "" {
		config.UserAgent = "javadocgen"
	}
	return config
}

// Client implements outbound.CommentGenerator over HTTP.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	retryer    *retry.RetryExecutor
}

// NewClient creates a new chat completion client with the provided configuration.
func NewClient(config ClientConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = applyConfigDefaults(config)

	retryConfig := retry.DefaultRetryConfig()
	if config.Retry != nil {
		copied := *config.Retry
		retryConfig = &copied
	}
	retryConfig.MaxRetries = config.MaxRetries

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		retryer:    retry.NewRetryExecutor(retryConfig),
	}, nil
}

// ModelInfo describes the configured model.
func (c *Client) ModelInfo() outbound.ModelInfo {
	return outbound.ModelInfo{Provider: "chat", Model: c.config.Model, Timeout: c.config.Timeout}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

// GenerateComment sends the prompt and returns the decoded response text.
func (c *Client) GenerateComment(ctx context.Context, request outbound.GenerationRequest) (string, error) {
	if strings.TrimSpace(request.Prompt) == "" {
		return "", &outbound.GenerationError{
			Code:      outbound.CodeInvalidRequest,
			Type:      outbound.ErrorTypeValidation,
			Message:   "prompt cannot be empty",
			RequestID: request.RequestID,
		}
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    []chatMessage{{Role: "user", Content: request.Prompt}},
		Temperature: c.config.Temperature,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	var text string
	err = c.retryer.Execute(ctx, func(ctx context.Context) error {
		out, err := c.doRequest(ctx, payload, request.RequestID)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", &outbound.GenerationError{
			Code:      outbound.CodeEmptyResponse,
			Type:      outbound.ErrorTypeResponse,
			Message:   "backend returned no text",
			RequestID: request.RequestID,
		}
	}
	return text, nil
}

func (c *Client) doRequest(ctx context.Context, payload []byte, requestID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	c.setHeaders(req, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.HandleNetworkError(ctx, err, requestID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.HandleHTTPError(ctx, resp, requestID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", c.HandleNetworkError(ctx, err, requestID)
	}

	slogger.Debug(ctx, "Chat completion response received", slogger.Fields{
		"request_id":  requestID,
		"status_code": resp.StatusCode,
		"bytes":       len(body),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	text, err := DecodeResponse(body)
	if err != nil {
		return "", &outbound.GenerationError{
			Code:      outbound.CodeInvalidResponse,
			Type:      outbound.ErrorTypeResponse,
			Message:   "could not decode chat completion response",
			RequestID: requestID,
			Cause:     err,
		}
	}
	return text, nil
}

func (c *Client) setHeaders(req *http.Request, requestID string) {
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
}

// Stop asks the backend to abandon in-flight generations. It is best-effort
// and bounded by a short timeout independent of ctx's deadline.
func (c *Client) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+c.config.StopPath, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to build stop request: %w", err)
	}
	c.setHeaders(req, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stop request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("stop request failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	slogger.Info(ctx, "Stop request sent", slogger.Field("url", req.URL.String()))
	return nil
}
