package errors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetry_SucceedsAfterTransientError(t *testing.T) {
	// Given: a function that fails twice then succeeds
	attempts := 0
	fn := func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return attempts, nil
	}

	// When: retrying
	_, err := RetryWithResult(context.Background(), fastRetryConfig(3), fn)

	// Then: it succeeds on the third attempt
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_FailsAfterMaxRetries(t *testing.T) {
	attempts := 0
	errPersistent := errors.New("persistent")

	_, err := RetryWithResult(context.Background(), fastRetryConfig(2), func() (int, error) {
		attempts++
		return 0, errPersistent
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errPersistent)
	assert.Contains(t, err.Error(), "failed after 2 retries")
	assert.Equal(t, 3, attempts)
}

func TestRetry_ShouldRetryStopsEarly(t *testing.T) {
	// Given: a predicate that only retries network errors
	cfg := fastRetryConfig(5)
	cfg.ShouldRetry = IsRetryable
	attempts := 0

	// When: the function returns a validation error
	_, err := RetryWithResult(context.Background(), cfg, func() (int, error) {
		attempts++
		return 0, ValidationError("bad dimensions", nil)
	})

	// Then: it is returned immediately
	assert.Equal(t, 1, attempts)
	assert.Equal(t, ErrCodeInvalidInput, GetCode(err))
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := RetryWithResult(ctx, fastRetryConfig(3), func() (int, error) {
		attempts++
		return 0, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
}

func TestRetryWithResult(t *testing.T) {
	attempts := 0
	v, err := RetryWithResult(context.Background(), fastRetryConfig(3), func() ([]float32, error) {
		attempts++
		if attempts == 1 {
			return nil, NetworkError("timeout", nil)
		}
		return []float32{1, 0}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v)
	assert.Equal(t, 2, attempts)
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Greater(t, cfg.MaxDelay, cfg.InitialDelay)
	assert.Nil(t, cfg.ShouldRetry)
}
