package publisher

import (
	"context"
	"sync"
	"time"

	"sjsage522/blogsyndicator/internal/post"
)

// MockPublisher returns queued errors, then nil, and records every call
type MockPublisher struct {
	mu     sync.Mutex
	calls  []post.Post
	errs   []error
	closed bool
}

var _ Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, p post.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, p)
	if len(m.errs) == 0 {
		return nil
	}
	err := m.errs[0]
	m.errs = m.errs[1:]
	return err
}

func (m *MockPublisher) Close() error {
	m.closed = true
	return nil
}

// recordingSleep replaces real sleeping in retry policies
type recordingSleep struct {
	waits []float64
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d.Seconds())
	return ctx.Err()
}
