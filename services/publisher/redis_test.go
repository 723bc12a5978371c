package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/blogsyndicator/internal/post"
)

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	publisher := NewRedisPublisher(mr.Addr(), 0, "test_posts", 2)
	defer publisher.Close()
	require.NoError(t, publisher.Ping(ctx))

	posts := []post.Post{
		{Title: "Hello All!", Link: "https://codingdose.info/hello/"},
		{Title: "Sort a Dictionary With Python", Link: "https://codingdose.info/sort/"},
		{Title: "Migrate From Ghost Blog to Jekyll", Link: "https://codingdose.info/migrate/"},
	}
	for _, p := range posts {
		require.NoError(t, publisher.Publish(ctx, p))
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	entries, err := client.XRange(ctx, "test_posts", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// The message should be base64 encoded JSON
	raw, err := base64.StdEncoding.DecodeString(entries[0].Values[streamField].(string))
	require.NoError(t, err)
	var first post.Post
	require.NoError(t, json.Unmarshal(raw, &first))
	assert.Equal(t, posts[0], first)

	require.NoError(t, publisher.TrimStreams(ctx))
	length, err := client.XLen(ctx, "test_posts").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)
}

func TestRedisPublisherUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	publisher := NewRedisPublisher(addr, 0, "test_posts", 0)
	defer publisher.Close()

	assert.Error(t, publisher.Publish(context.Background(), helloPost))
	// no max length configured, nothing to trim
	assert.NoError(t, publisher.TrimStreams(context.Background()))
}
