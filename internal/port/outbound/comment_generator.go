package outbound

import (
	"context"
	"time"

	"javadocgen/internal/domain/errors/domain"
	"javadocgen/internal/domain/valueobject"
)

// CommentGenerator produces the raw text of a documentation comment for one declaration.
// Implementations must be safe for concurrent use.
type CommentGenerator interface {
	// GenerateComment returns the backend's response text. The caller wraps it
	// into a comment block, so implementations return the text as received.
	GenerateComment(ctx context.Context, request GenerationRequest) (string, error)
}

// GenerationRequest carries everything a backend needs for one declaration.
type GenerationRequest struct {
	CandidateID int                            `json:"candidate_id"`
	Context     valueobject.DeclarationContext `json:"context"`
	Prompt      string                         `json:"prompt"`
	RequestID   string                         `json:"request_id,omitempty"`
}

// PromptBuilder renders the backend instruction for one declaration.
type PromptBuilder func(ctx valueobject.DeclarationContext) string

// Stopper is implemented by backends that accept a request to abandon in-flight generations.
type Stopper interface {
	Stop(ctx context.Context) error
}

// ModelInfo describes the backend model in use.
type ModelInfo struct {
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Timeout  time.Duration `json:"timeout"`
}

// Error codes used in GenerationError.Code.
const (
	CodeEmptyResponse    = "empty_response"
	CodeInvalidResponse  = "invalid_response"
	CodeUnauthorized     = "unauthorized"
	CodeRateLimited      = "rate_limit_exceeded"
	CodeServerError      = "server_error"
	CodeRequestFailed    = "request_failed"
	CodeTimeout          = "timeout"
	CodeInvalidRequest   = "invalid_request"
	CodeContentFiltered  = "content_filtered"
	CodeBackendCancelled = "cancelled"
)

// Error types used in GenerationError.Type.
const (
	ErrorTypeAuth       = "auth"
	ErrorTypeQuota      = "quota"
	ErrorTypeValidation = "validation"
	ErrorTypeServer     = "server"
	ErrorTypeNetwork    = "network"
	ErrorTypeResponse   = "response"
)

// GenerationError represents an error from a comment generation backend.
type GenerationError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Retryable bool   `json:"retryable"`
	Cause     error  `json:"-"`
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	msg := "generation error (" + e.Type + "/" + e.Code + "): " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is makes every GenerationError match domain.ErrGeneration.
func (e *GenerationError) Is(target error) bool {
	return target == domain.ErrGeneration
}

// IsRetryable returns whether the error is retryable.
func (e *GenerationError) IsRetryable() bool {
	return e.Retryable
}

// IsAuthenticationError returns whether the error is an authentication error.
func (e *GenerationError) IsAuthenticationError() bool {
	return e.Type == ErrorTypeAuth || e.Code == CodeUnauthorized
}

// IsQuotaError returns whether the error is a quota/rate limit error.
func (e *GenerationError) IsQuotaError() bool {
	return e.Type == ErrorTypeQuota || e.Code == CodeRateLimited
}
