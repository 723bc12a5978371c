package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"sjsage522/blogsyndicator/internal/post"
	apperrors "sjsage522/blogsyndicator/pkg/errors"
)

// streamField is the stream entry field carrying the encoded post
const streamField = "b64_post"

// RedisPublisher implements Publisher using a Redis stream
type RedisPublisher struct {
	client          *redis.Client
	stream          string
	streamMaxLength int
}

var (
	_ Publisher = (*RedisPublisher)(nil)
	_ Trimmer   = (*RedisPublisher)(nil)
)

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, stream string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		stream:          stream,
		streamMaxLength: streamMaxLength,
	}
}

// Publish appends the post to the stream.
// The JSON encoded post is base64 encoded before publishing.
func (p *RedisPublisher) Publish(ctx context.Context, pst post.Post) error {
	message, err := json.Marshal(pst)
	if err != nil {
		return apperrors.NewPublisher("redis", "failed to encode post", err)
	}

	encodedMessage := base64.StdEncoding.EncodeToString(message)

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			streamField: encodedMessage,
		},
	}).Err()
	if err != nil {
		return apperrors.NewPublisher("redis", "failed to add stream entry", err)
	}
	return nil
}

// TrimStreams trims the stream to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	if p.streamMaxLength <= 0 {
		return nil
	}
	if err := p.client.XTrimMaxLen(ctx, p.stream, int64(p.streamMaxLength)).Err(); err != nil {
		return apperrors.NewPublisher("redis", "failed to trim stream", err)
	}
	return nil
}

// Ping checks the Redis connection
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
