package publisher

import (
	"context"
	"errors"

	"sjsage522/blogsyndicator/internal/post"
)

// MultiPublisher publishes every post to each of its publishers in order
type MultiPublisher struct {
	publishers []Publisher
}

var _ Publisher = (*MultiPublisher)(nil)

// NewMultiPublisher creates a fan-out publisher
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	return &MultiPublisher{publishers: publishers}
}

// Len returns the number of publishers
func (m *MultiPublisher) Len() int {
	return len(m.publishers)
}

// Publish publishes p everywhere and joins the failures. A cancelled context
// stops the fan-out.
func (m *MultiPublisher) Publish(ctx context.Context, p post.Post) error {
	var errs []error
	for _, pub := range m.publishers {
		if err := pub.Publish(ctx, p); err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	return errors.Join(errs...)
}

// TrimStreams trims the streams of every publisher that keeps them
func (m *MultiPublisher) TrimStreams(ctx context.Context) error {
	var errs []error
	for _, pub := range m.publishers {
		if t, ok := pub.(Trimmer); ok {
			if err := t.TrimStreams(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, pub := range m.publishers {
		if err := pub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
