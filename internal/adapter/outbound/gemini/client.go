// Package gemini is a comment generation backend for the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"javadocgen/internal/application/common/retry"
	"javadocgen/internal/application/common/slogger"
	"javadocgen/internal/port/outbound"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini generation model.
	DefaultModel = "gemini-2.5-flash"
	// DefaultTimeout bounds one generation request.
	DefaultTimeout = 120 * time.Second
	// DefaultTemperature is the sampling temperature used for doc generation.
	DefaultTemperature = 0.8
)

// ClientConfig holds the configuration for the Gemini client.
type ClientConfig struct {
	APIKey      string        `json:"api_key"`
	BaseURL     string        `json:"base_url"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Timeout     time.Duration `json:"timeout"`
	MaxRetries  int           `json:"max_retries"`

	// Retry overrides the backoff schedule. MaxRetries still applies.
	Retry *retry.RetryConfig `json:"-"`
}

// Validate validates the client configuration.
func (c *ClientConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("API key cannot be empty")
	}
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http") {
		return errors.New("invalid base URL")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	return nil
}

// Client implements outbound.CommentGenerator with the genai SDK.
type Client struct {
	config  ClientConfig
	genai   *genai.Client
	retryer *retry.RetryExecutor
}

// NewClient creates the SDK client once; it is reused by every request.
func NewClient(ctx context.Context, config ClientConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.APIKey = strings.TrimSpace(config.APIKey)
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: config.Timeout},
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	sdk, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	retryConfig := retry.DefaultRetryConfig()
	if config.Retry != nil {
		copied := *config.Retry
		retryConfig = &copied
	}
	retryConfig.MaxRetries = config.MaxRetries

	return &Client{
		config:  config,
		genai:   sdk,
		retryer: retry.NewRetryExecutor(retryConfig),
	}, nil
}

// ModelInfo describes the configured model.
func (c *Client) ModelInfo() outbound.ModelInfo {
	return outbound.ModelInfo{Provider: "gemini", Model: c.config.Model, Timeout: c.config.Timeout}
}

// GenerateComment sends the prompt to the model and returns its text.
func (c *Client) GenerateComment(ctx context.Context, request outbound.GenerationRequest) (string, error) {
	if strings.TrimSpace(request.Prompt) == "" {
		return "", &outbound.GenerationError{
			Code:      outbound.CodeInvalidRequest,
			Type:      outbound.ErrorTypeValidation,
			Message:   "prompt cannot be empty",
			RequestID: request.RequestID,
		}
	}

	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: request.Prompt}}}}
	generationConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(c.config.Temperature)),
	}

	var text string
	err := c.retryer.Execute(ctx, func(ctx context.Context) error {
		start := time.Now()
		resp, err := c.genai.Models.GenerateContent(ctx, c.config.Model, contents, generationConfig)
		if err != nil {
			return convertError(ctx, err, request.RequestID)
		}

		out, err := responseText(resp, request.RequestID)
		if err != nil {
			return err
		}

		slogger.Debug(ctx, "Gemini response received", slogger.Fields{
			"request_id":  request.RequestID,
			"model":       c.config.Model,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		text = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse, requestID string) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", &outbound.GenerationError{
				Code:      outbound.CodeContentFiltered,
				Type:      outbound.ErrorTypeResponse,
				Message:   "prompt blocked: " + string(resp.PromptFeedback.BlockReason),
				RequestID: requestID,
			}
		}
		return "", &outbound.GenerationError{
			Code:      outbound.CodeEmptyResponse,
			Type:      outbound.ErrorTypeResponse,
			Message:   "no candidates in response",
			RequestID: requestID,
		}
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", &outbound.GenerationError{
			Code:      outbound.CodeEmptyResponse,
			Type:      outbound.ErrorTypeResponse,
			Message:   "candidate has no text, finish reason " + string(candidate.FinishReason),
			RequestID: requestID,
		}
	}
	return sb.String(), nil
}

// convertError maps SDK and transport errors onto GenerationError.
func convertError(ctx context.Context, err error, requestID string) *outbound.GenerationError {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		code, retryable := outbound.CodeRequestFailed, true
		if ctx.Err() != nil {
			code, retryable = outbound.CodeTimeout, false
			if errors.Is(ctx.Err(), context.Canceled) {
				code = outbound.CodeBackendCancelled
			}
		}
		return &outbound.GenerationError{
			Code:      code,
			Type:      outbound.ErrorTypeNetwork,
			Message:   "gemini request failed",
			RequestID: requestID,
			Retryable: retryable,
			Cause:     err,
		}
	}

	genErr := &outbound.GenerationError{
		Message:   fmt.Sprintf("gemini API error (HTTP %d %s): %s", apiErr.Code, apiErr.Status, apiErr.Message),
		RequestID: requestID,
		Cause:     err,
	}
	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		genErr.Code, genErr.Type = outbound.CodeUnauthorized, outbound.ErrorTypeAuth
	case apiErr.Code == http.StatusTooManyRequests:
		genErr.Code, genErr.Type, genErr.Retryable = outbound.CodeRateLimited, outbound.ErrorTypeQuota, true
	case apiErr.Code >= http.StatusInternalServerError:
		genErr.Code, genErr.Type, genErr.Retryable = outbound.CodeServerError, outbound.ErrorTypeServer, true
	default:
		genErr.Code, genErr.Type = outbound.CodeInvalidRequest, outbound.ErrorTypeValidation
	}
	return genErr
}
