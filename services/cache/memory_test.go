package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var _ CacheService = (*MemoryCache)(nil)

func TestMemoryCache(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	mc := NewMemoryCache()
	mc.now = func() time.Time { return now }

	assert.NoError(t, mc.Set("twitter_rate_limited", []byte("1"), time.Minute))
	assert.NoError(t, mc.Set("forever", []byte("x"), 0))

	value, err := mc.Get("twitter_rate_limited")
	assert.NoError(t, err)
	assert.Equal(t, "1", string(value))

	now = now.Add(time.Minute)
	_, err = mc.Get("twitter_rate_limited")
	assert.ErrorIs(t, err, ErrCacheMiss)

	value, err = mc.Get("forever")
	assert.NoError(t, err)
	assert.Equal(t, "x", string(value))

	assert.NoError(t, mc.Delete("forever"))
	_, err = mc.Get("forever")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
