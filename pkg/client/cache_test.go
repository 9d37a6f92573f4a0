package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetWithinFreshnessSkipsFetch(t *testing.T) {
	cache := NewCache()
	policy := Policy{Freshness: time.Minute, MaxRetries: 2, Retryable: IsRetryable}

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		data, err := cache.Get(context.Background(), "k", policy, fetch)
		require.NoError(t, err)
		assert.Equal(t, "value", data)
	}

	assert.Equal(t, 1, calls)
}

func TestCacheGetRefetchesAfterFreshness(t *testing.T) {
	cache := NewCache()
	policy := Policy{Freshness: 10 * time.Millisecond, MaxRetries: 0}

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	_, err := cache.Get(context.Background(), "k", policy, fetch)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	data, err := cache.Get(context.Background(), "k", policy, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, data)
}

func TestCacheRetriesRetryableFailures(t *testing.T) {
	cache := NewCache()
	policy := Policy{Freshness: time.Minute, MaxRetries: 2, Retryable: IsRetryable}

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, &APIError{Kind: KindServer, Status: 500, Message: "boom"}
	}

	_, err := cache.Get(context.Background(), "k", policy, fetch)
	require.Error(t, err)
	// Initial attempt plus MaxRetries.
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheDoesNotRetryClientErrors(t *testing.T) {
	cache := NewCache()
	policy := Policy{Freshness: time.Minute, MaxRetries: 2, Retryable: IsRetryable}

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, &APIError{Kind: KindValidation, Status: 422}
	}

	_, err := cache.Get(context.Background(), "k", policy, fetch)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCacheRecoversOnLaterAttempt(t *testing.T) {
	cache := NewCache()
	policy := Policy{Freshness: time.Minute, MaxRetries: 2, Retryable: IsRetryable}

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, &APIError{Kind: KindTimeout}
		}
		return "recovered", nil
	}

	data, err := cache.Get(context.Background(), "k", policy, fetch)
	require.NoError(t, err)
	assert.Equal(t, "recovered", data)
	assert.Equal(t, 3, calls)
}

func TestCacheInvalidatePrefix(t *testing.T) {
	cache := NewCache()
	cache.Put("products:list:page=1", "a")
	cache.Put("products:list:page=2", "b")
	cache.Put("products:item:p1", "c")
	cache.Put("inquiries:list:", "d")

	cache.InvalidatePrefix("products:list:")

	assert.Equal(t, 2, cache.Len())

	errFetch := func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("should not refetch")
	}
	policy := Policy{Freshness: time.Minute}

	data, err := cache.Get(context.Background(), "products:item:p1", policy, errFetch)
	require.NoError(t, err)
	assert.Equal(t, "c", data)

	_, err = cache.Get(context.Background(), "products:list:page=1", policy, errFetch)
	assert.Error(t, err)
}

func TestCacheInvalidateExactKeys(t *testing.T) {
	cache := NewCache()
	cache.Put("a", 1)
	cache.Put("b", 2)

	cache.Invalidate("a", "missing")
	assert.Equal(t, 1, cache.Len())
}
