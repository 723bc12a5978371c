package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var _ CacheService = (*MemcacheService)(nil)

func TestExpirationSeconds(t *testing.T) {
	assert.Equal(t, int32(0), expirationSeconds(0))
	assert.Equal(t, int32(1), expirationSeconds(300*time.Millisecond))
	assert.Equal(t, int32(2), expirationSeconds(1500*time.Millisecond))
	assert.Equal(t, int32(900), expirationSeconds(15*time.Minute))
}

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")

	if err := mc.Ping(); err != nil {
		t.Skip("Memcached is not available, skipping test")
	}

	err := mc.Set("test_key", []byte("test_value"), 1*time.Second)
	assert.NoError(t, err)

	value, err := mc.Get("test_key")
	assert.NoError(t, err)
	assert.Equal(t, "test_value", string(value))

	err = mc.Delete("test_key")
	assert.NoError(t, err)

	_, err = mc.Get("test_key")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// deleting a missing key is not an error
	assert.NoError(t, mc.Delete("test_key"))
}
