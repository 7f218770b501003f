package llms

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRetryStrategyClassifiesStatusCodes(t *testing.T) {
	assert.Equal(t, SmartRetry, getRetryStrategy(http.StatusTooManyRequests))
	assert.Equal(t, SmartRetry, getRetryStrategy(http.StatusServiceUnavailable))
	assert.Equal(t, ConservativeRetry, getRetryStrategy(http.StatusInternalServerError))
	assert.Equal(t, ConservativeRetry, getRetryStrategy(http.StatusBadGateway))
	assert.Equal(t, NoRetry, getRetryStrategy(http.StatusBadRequest))
	assert.Equal(t, NoRetry, getRetryStrategy(http.StatusOK))
}

func TestDoWithRetryReturnsImmediatelyOnNoRetry(t *testing.T) {
	calls := 0
	_, err := doWithRetry(3, time.Millisecond, func() (string, RetryStrategy, error, RateLimitInfo) {
		calls++
		return "", NoRetry, fmt.Errorf("bad request"), RateLimitInfo{}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoWithRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	result, err := doWithRetry(3, time.Millisecond, func() (string, RetryStrategy, error, RateLimitInfo) {
		calls++
		if calls < 2 {
			return "", ConservativeRetry, fmt.Errorf("server error"), RateLimitInfo{}
		}
		return "ok", NoRetry, nil, RateLimitInfo{}
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestDoWithRetryHonorsConservativeRetryCap(t *testing.T) {
	calls := 0
	_, err := doWithRetry(5, time.Millisecond, func() (string, RetryStrategy, error, RateLimitInfo) {
		calls++
		return "", ConservativeRetry, fmt.Errorf("server error"), RateLimitInfo{}
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls, "conservative retry caps at 2 retries regardless of maxRetries")
}

func TestDoWithRetryUsesRetryAfterHeaderDelay(t *testing.T) {
	calls := 0
	start := time.Now()
	_, err := doWithRetry(1, time.Millisecond, func() (string, RetryStrategy, error, RateLimitInfo) {
		calls++
		if calls < 2 {
			return "", SmartRetry, fmt.Errorf("rate limited"), RateLimitInfo{RetryAfter: 5 * time.Millisecond}
		}
		return "ok", NoRetry, nil, RateLimitInfo{}
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}
