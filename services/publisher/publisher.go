package publisher

import (
	"context"
	"errors"

	"sjsage522/blogsyndicator/internal/post"
)

// ErrDuplicateContent is returned when a platform rejects a post it has already seen
var ErrDuplicateContent = errors.New("duplicate content")

// Publisher represents a service for publishing posts to a feed
type Publisher interface {
	// Publish publishes one post
	Publish(ctx context.Context, p post.Post) error

	// Close closes the publisher connection
	Close() error
}

// Trimmer is implemented by publishers that keep bounded streams
type Trimmer interface {
	// TrimStreams trims all streams to the configured maximum length
	TrimStreams(ctx context.Context) error
}
