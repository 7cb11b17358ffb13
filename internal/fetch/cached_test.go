package fetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestCachedFetcher(maxEntries int) (*CachedFetcher, *fakeClock, *int32) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	var calls int32
	f := NewCachedFetcher(&CachedFetcherConfig{CacheTTL: time.Minute, MaxEntries: maxEntries})
	f.now = clock.now
	f.fetch = func(_ context.Context, urlStr string, _ *Options) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		if urlStr == "https://fail.example" {
			return nil, errors.New("boom")
		}
		return &Result{URL: urlStr, Text: "posting for " + urlStr}, nil
	}
	return f, clock, &calls
}

func TestCachedFetcher_ReusesFreshResults(t *testing.T) {
	f, _, calls := newTestCachedFetcher(10)
	ctx := context.Background()

	first, err := f.JobPosting(ctx, "https://a.example")
	require.NoError(t, err)
	second, err := f.JobPosting(ctx, "https://a.example")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCachedFetcher_ExpiresAfterTTL(t *testing.T) {
	f, clock, calls := newTestCachedFetcher(10)
	ctx := context.Background()

	_, err := f.JobPosting(ctx, "https://a.example")
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Minute)
	_, err = f.JobPosting(ctx, "https://a.example")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestCachedFetcher_DoesNotCacheErrors(t *testing.T) {
	f, _, calls := newTestCachedFetcher(10)
	ctx := context.Background()

	_, err := f.JobPosting(ctx, "https://fail.example")
	require.Error(t, err)
	_, err = f.JobPosting(ctx, "https://fail.example")
	require.Error(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	assert.Equal(t, 0, f.Len())
}

func TestCachedFetcher_Invalidate(t *testing.T) {
	f, _, calls := newTestCachedFetcher(10)
	ctx := context.Background()

	_, _ = f.JobPosting(ctx, "https://a.example")
	f.Invalidate("https://a.example")
	_, _ = f.JobPosting(ctx, "https://a.example")

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestCachedFetcher_BoundedEntries(t *testing.T) {
	f, clock, _ := newTestCachedFetcher(2)
	ctx := context.Background()

	_, _ = f.JobPosting(ctx, "https://a.example")
	clock.t = clock.t.Add(time.Second)
	_, _ = f.JobPosting(ctx, "https://b.example")
	clock.t = clock.t.Add(time.Second)
	_, _ = f.JobPosting(ctx, "https://c.example")

	assert.Equal(t, 2, f.Len())
	_, ok := f.lookup("https://a.example")
	assert.False(t, ok, "entry closest to expiry is evicted first")
	_, ok = f.lookup("https://c.example")
	assert.True(t, ok)
}

func TestNewCachedFetcher_Defaults(t *testing.T) {
	f := NewCachedFetcher(nil)
	assert.Equal(t, DefaultCacheTTL, f.cacheTTL)
	assert.Equal(t, DefaultCacheEntries, f.maxEntries)
	assert.NotNil(t, f.options)
}
