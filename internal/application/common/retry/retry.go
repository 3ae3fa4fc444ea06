package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"javadocgen/internal/application/common/slogger"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxRetries    int           `json:"max_retries"    yaml:"max_retries"`
	InitialDelay  time.Duration `json:"initial_delay"  yaml:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay"      yaml:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor" yaml:"backoff_factor"`
	Jitter        bool          `json:"jitter"         yaml:"jitter"`
}

// DefaultRetryConfig returns the retry configuration used for backend requests.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:    3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// RetryableOperation represents an operation that can be retried.
type RetryableOperation func(ctx context.Context) error

// RetryableChecker classifies errors as transient or permanent.
type RetryableChecker interface {
	IsRetryable(err error) bool
}

// RetryExecutor handles retry logic with exponential backoff.
type RetryExecutor struct {
	config           *RetryConfig
	retryableChecker RetryableChecker
}

// NewRetryExecutor creates a new retry executor with default retry behavior.
func NewRetryExecutor(config *RetryConfig) *RetryExecutor {
	return NewRetryExecutorWithChecker(config, nil)
}

// NewRetryExecutorWithChecker creates a new retry executor with custom retry behavior.
func NewRetryExecutorWithChecker(config *RetryConfig, checker RetryableChecker) *RetryExecutor {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if checker == nil {
		checker = &DefaultRetryableChecker{}
	}
	return &RetryExecutor{
		config:           config,
		retryableChecker: checker,
	}
}

// Execute runs operation until it succeeds, fails permanently, the retry
// budget is spent or ctx is done.
func (r *RetryExecutor) Execute(ctx context.Context, operation RetryableOperation) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.calculateDelay(attempt)
			slogger.Debug(ctx, "Retrying operation after delay", slogger.Fields3(
				"attempt", attempt,
				"max_retries", r.config.MaxRetries,
				"delay_ms", delay.Milliseconds(),
			))

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := operation(ctx)
		if err == nil {
			if attempt > 0 {
				slogger.Info(ctx, "Operation succeeded after retries", slogger.Fields{
					"attempt": attempt + 1,
				})
			}
			return nil
		}

		lastErr = err

		if ctx.Err() != nil || !r.retryableChecker.IsRetryable(err) {
			slogger.Debug(ctx, "Error is not retryable", slogger.Fields{
				"error":   err.Error(),
				"attempt": attempt + 1,
			})
			return err
		}

		slogger.Warn(ctx, "Operation failed, will retry", slogger.Fields3(
			"error", err.Error(),
			"attempt", attempt+1,
			"max_retries", r.config.MaxRetries,
		))
	}

	return fmt.Errorf("operation failed after %d retries: %w", r.config.MaxRetries, lastErr)
}

// calculateDelay calculates the delay for a given attempt using exponential backoff.
func (r *RetryExecutor) calculateDelay(attempt int) time.Duration {
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.BackoffFactor, float64(attempt-1))

	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	// Up to +/-25% of the delay.
	if r.config.Jitter {
		jitterRange := delay * 0.25
		delay += (rand.Float64()*2 - 1) * jitterRange //nolint:gosec // jitter does not need a secure source
	}

	return time.Duration(delay)
}

// retryableError is implemented by errors that know whether they are transient.
type retryableError interface {
	IsRetryable() bool
}

// DefaultRetryableChecker retries errors that declare themselves retryable and
// common transient network failures.
type DefaultRetryableChecker struct{}

// IsRetryable reports whether err should be retried.
func (d *DefaultRetryableChecker) IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var re retryableError
	if errors.As(err, &re) {
		return re.IsRetryable()
	}

	return containsAny(strings.ToLower(err.Error()), []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary",
		"try again",
		"resource temporarily unavailable",
		"network is unreachable",
		"no route to host",
		"unexpected eof",
	})
}

func containsAny(s string, substrings []string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// WithRetryConfig executes a function with custom retry configuration.
func WithRetryConfig(ctx context.Context, config *RetryConfig, operation RetryableOperation) error {
	return NewRetryExecutor(config).Execute(ctx, operation)
}
