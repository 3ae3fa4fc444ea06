package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries:    maxRetries,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

type flaggedError struct{ retryable bool }

func (e *flaggedError) Error() string     { return "backend error" }
func (e *flaggedError) IsRetryable() bool { return e.retryable }

func TestRetryExecutor_SuccessOnFirstAttempt(t *testing.T) {
	calls := 0
	err := NewRetryExecutor(fastConfig(3)).Execute(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryExecutor_SuccessAfterRetries(t *testing.T) {
	calls := 0
	err := NewRetryExecutor(fastConfig(3)).Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExecutor_FailureAfterMaxRetries(t *testing.T) {
	calls := 0
	cause := &flaggedError{retryable: true}
	err := NewRetryExecutor(fastConfig(2)).Execute(context.Background(), func(context.Context) error {
		calls++
		return cause
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Equal(t, 3, calls)
}

func TestRetryExecutor_NonRetryableError(t *testing.T) {
	calls := 0
	err := NewRetryExecutor(fastConfig(3)).Execute(context.Background(), func(context.Context) error {
		calls++
		return &flaggedError{retryable: false}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryExecutor_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := fastConfig(5)
	config.InitialDelay = time.Second
	config.MaxDelay = time.Second

	calls := 0
	err := NewRetryExecutor(config).Execute(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("connection reset by peer")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryExecutor_CalculateDelay(t *testing.T) {
	executor := NewRetryExecutor(&RetryConfig{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	})

	assert.Equal(t, 100*time.Millisecond, executor.calculateDelay(1))
	assert.Equal(t, 200*time.Millisecond, executor.calculateDelay(2))
	assert.Equal(t, 400*time.Millisecond, executor.calculateDelay(3))
	assert.Equal(t, time.Second, executor.calculateDelay(10))
}

func TestRetryExecutor_JitterStaysInRange(t *testing.T) {
	executor := NewRetryExecutor(&RetryConfig{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	})

	for range 50 {
		delay := executor.calculateDelay(1)
		assert.GreaterOrEqual(t, delay, 75*time.Millisecond)
		assert.LessOrEqual(t, delay, 125*time.Millisecond)
	}
}

func TestDefaultRetryableChecker(t *testing.T) {
	checker := &DefaultRetryableChecker{}

	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: context.Canceled, want: false},
		{err: errors.New("dial tcp: connection refused"), want: true},
		{err: errors.New("read: connection reset by peer"), want: true},
		{err: errors.New("Client.Timeout exceeded"), want: true},
		{err: errors.New("unexpected EOF"), want: true},
		{err: errors.New("invalid api key"), want: false},
		{err: fmt.Errorf("wrapped: %w", &flaggedError{retryable: true}), want: true},
		{err: &flaggedError{retryable: false}, want: false},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, checker.IsRetryable(tt.err))
		})
	}
}

func TestWithRetryConfig(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), fastConfig(1), func(context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("try again later")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestNewRetryExecutor_NilConfigUsesDefault(t *testing.T) {
	executor := NewRetryExecutor(nil)
	assert.Equal(t, DefaultRetryConfig(), executor.config)
	assert.IsType(t, &DefaultRetryableChecker{}, executor.retryableChecker)
}
