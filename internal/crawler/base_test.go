package crawler

import (
	"context"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sjsage522/blogsyndicator/pkg/errors"
)

// TestBaseCrawlerBlocksAfterRateLimit checks that a rate limited fetch leaves a marker
// that short-circuits the next fetch
func TestBaseCrawlerBlocksAfterRateLimit(t *testing.T) {
	mockCache := NewMockCacheService()
	calls := 0
	crawler := BaseCrawler{
		URL:       "https://example.com/archives/",
		CacheKey:  "test_rate_limited",
		CacheSvc:  mockCache,
		BlockTime: 10 * time.Second,
		Provider:  "example.com",
		fetchFunc: func(ctx context.Context, url string) (io.Reader, error) {
			calls++
			return nil, apperrors.NewRateLimit("example.com", time.Minute)
		},
	}

	_, err := crawler.fetchWithCache(context.Background(), crawler.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))

	raw, ok := mockCache.cache["test_rate_limited"]
	require.True(t, ok, "rate limit marker should be cached")
	deadline, err := strconv.ParseInt(string(raw), 10, 64)
	require.NoError(t, err)
	// Retry-After (1m) is longer than BlockTime (10s) and wins
	assert.InDelta(t, time.Now().Add(time.Minute).Unix(), deadline, 2)

	_, err = crawler.fetchWithCache(context.Background(), crawler.URL)
	require.Error(t, err)
	rl, ok := apperrors.AsRateLimit(err)
	require.True(t, ok)
	assert.Greater(t, rl.RetryAfter, 50*time.Second)
	assert.Equal(t, 1, calls, "blocked fetch must not reach the network")
}

func TestBaseCrawlerIgnoresExpiredMarker(t *testing.T) {
	mockCache := NewMockCacheService()
	past := time.Now().Add(-time.Hour).Unix()
	mockCache.Set("test_rate_limited", []byte(strconv.FormatInt(past, 10)), time.Minute)

	calls := 0
	crawler := BaseCrawler{
		CacheKey:  "test_rate_limited",
		CacheSvc:  mockCache,
		BlockTime: 10 * time.Second,
		Provider:  "example.com",
		fetchFunc: func(ctx context.Context, url string) (io.Reader, error) {
			calls++
			return strings.NewReader("<html></html>"), nil
		},
	}

	_, err := crawler.fetchWithCache(context.Background(), "https://example.com/archives/")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestBaseCrawlerFetch(t *testing.T) {
	crawler := BaseCrawler{
		Provider: "example.com",
		fetchFunc: func(ctx context.Context, url string) (io.Reader, error) {
			return strings.NewReader(`<html><body><p class="x">hi</p></body></html>`), nil
		},
	}

	doc, err := crawler.fetchDocument(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "hi", doc.Find("p.x").Text())
}

// TestGetName tests the GetName function
func TestGetName(t *testing.T) {
	crawler := BaseCrawler{}
	assert.Equal(t, "BaseCrawler", crawler.GetName())
}
