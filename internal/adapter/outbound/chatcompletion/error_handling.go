package chatcompletion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"javadocgen/internal/application/common/slogger"
	"javadocgen/internal/port/outbound"
)

// HandleHTTPError converts a non-2xx response into a GenerationError and closes its body.
func (c *Client) HandleHTTPError(ctx context.Context, response *http.Response, requestID string) *outbound.GenerationError {
	body, readErr := io.ReadAll(io.LimitReader(response.Body, 64<<10))
	defer func() {
		if closeErr := response.Body.Close(); closeErr != nil {
			slogger.Error(ctx, "Failed to close response body", slogger.Fields{
				"error": closeErr.Error(),
			})
		}
	}()

	var apiErrorMessage string
	if readErr == nil && len(body) > 0 {
		var errorResp chatResponse
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != nil {
			apiErrorMessage = errorResp.Error.Message
		}
	}

	slogger.Warn(ctx, "HTTP error received from chat completion API", slogger.Fields{
		"status_code":     response.StatusCode,
		"request_id":      requestID,
		"response_length": len(body),
		"api_message":     apiErrorMessage,
	})

	withDetail := func(message string) string {
		if apiErrorMessage != "" {
			return message + ": " + apiErrorMessage
		}
		return message
	}

	genErr := &outbound.GenerationError{RequestID: requestID}
	switch response.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		genErr.Code = outbound.CodeUnauthorized
		genErr.Type = outbound.ErrorTypeAuth
		genErr.Message = withDetail(fmt.Sprintf("authentication failed (HTTP %d)", response.StatusCode))

	case http.StatusTooManyRequests:
		message := fmt.Sprintf("rate limit exceeded (HTTP %d)", response.StatusCode)
		if retryAfter := response.Header.Get("Retry-After"); retryAfter != "" {
			message += ", retry after " + retryAfter + " seconds"
		}
		genErr.Code = outbound.CodeRateLimited
		genErr.Type = outbound.ErrorTypeQuota
		genErr.Message = withDetail(message)
		genErr.Retryable = true

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		genErr.Code = outbound.CodeInvalidRequest
		genErr.Type = outbound.ErrorTypeValidation
		genErr.Message = withDetail(fmt.Sprintf("bad request (HTTP %d)", response.StatusCode))

	default:
		genErr.Code = outbound.CodeServerError
		genErr.Type = outbound.ErrorTypeServer
		genErr.Message = withDetail("HTTP error: " + response.Status)
		genErr.Retryable = response.StatusCode >= http.StatusInternalServerError
	}
	return genErr
}

// HandleNetworkError converts a transport error into a GenerationError.
func (c *Client) HandleNetworkError(ctx context.Context, err error, requestID string) *outbound.GenerationError {
	switch {
	case errors.Is(err, context.Canceled):
		return &outbound.GenerationError{
			Code:      outbound.CodeBackendCancelled,
			Type:      outbound.ErrorTypeNetwork,
			Message:   "request was canceled",
			RequestID: requestID,
			Cause:     err,
		}
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
		return &outbound.GenerationError{
			Code:      outbound.CodeTimeout,
			Type:      outbound.ErrorTypeNetwork,
			Message:   "request deadline exceeded",
			RequestID: requestID,
			Cause:     err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &outbound.GenerationError{
			Code:      outbound.CodeTimeout,
			Type:      outbound.ErrorTypeNetwork,
			Message:   "connection timeout",
			RequestID: requestID,
			Retryable: true,
			Cause:     err,
		}
	}

	message := "request failed"
	if strings.Contains(err.Error(), "connection refused") {
		message = "connection refused"
	}
	return &outbound.GenerationError{
		Code:      outbound.CodeRequestFailed,
		Type:      outbound.ErrorTypeNetwork,
		Message:   message,
		RequestID: requestID,
		Retryable: true,
		Cause:     err,
	}
}
