package publisher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"sjsage522/blogsyndicator/internal/post"
	"sjsage522/blogsyndicator/logger"
	apperrors "sjsage522/blogsyndicator/pkg/errors"
	"sjsage522/blogsyndicator/services/cache"
)

// DefaultRateLimitWait is how long a rate limited call waits before retrying
const DefaultRateLimitWait = 15 * time.Minute

// RetryPolicy configures how rate limited calls are waited out
type RetryPolicy struct {
	// Interval is the minimum wait after a rate limit
	Interval time.Duration
	// MaxWait caps the cumulative wait for one call; zero means no cap
	MaxWait time.Duration
	// Sleep blocks for d or until ctx is done; nil uses a timer
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy waits 15 minutes per rate limit without a cap
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Interval: DefaultRateLimitWait}
}

// Do runs fn and, while it fails with a rate limit error, waits the longer of
// Interval and the error's retry-after before running it again. onWait, when
// set, is told about every wait before it starts.
func (p RetryPolicy) Do(ctx context.Context, onWait func(time.Duration), fn func() error) error {
	var waited time.Duration
	for {
		err := fn()
		if err == nil {
			return nil
		}

		rl, ok := apperrors.AsRateLimit(err)
		if !ok {
			return err
		}

		wait := p.Interval
		if rl.RetryAfter > wait {
			wait = rl.RetryAfter
		}
		if wait <= 0 {
			wait = DefaultRateLimitWait
		}
		if p.MaxWait > 0 && waited+wait > p.MaxWait {
			return fmt.Errorf("gave up after waiting %v: %w", waited, err)
		}

		if onWait != nil {
			onWait(wait)
		}
		if err := p.sleep(ctx, wait); err != nil {
			return err
		}
		waited += wait
	}
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPublisher waits out platform rate limits around another publisher.
// The end of a rate limit window is kept in the cache so that the next
// publish, even from a later run, waits for what is left of it first.
type RetryPublisher struct {
	next     Publisher
	name     string
	policy   RetryPolicy
	cacheSvc cache.CacheService
	log      *logger.Logger
}

var _ Publisher = (*RetryPublisher)(nil)

// NewRetryPublisher wraps next; cacheSvc may be nil
func NewRetryPublisher(next Publisher, name string, policy RetryPolicy, cacheSvc cache.CacheService) *RetryPublisher {
	return &RetryPublisher{
		next:     next,
		name:     name,
		policy:   policy,
		cacheSvc: cacheSvc,
		log:      logger.ForPublisher(name),
	}
}

func (r *RetryPublisher) cacheKey() string {
	return r.name + "_rate_limited"
}

// Publish publishes p, blocking through rate limits. Duplicate content
// rejections are logged and not returned.
func (r *RetryPublisher) Publish(ctx context.Context, p post.Post) error {
	if remaining := r.blockedFor(); remaining > 0 {
		r.log.Info().Dur("remaining", remaining).Msg("Rate limit window still open, waiting")
		if err := r.policy.sleep(ctx, remaining); err != nil {
			return err
		}
	}

	err := r.policy.Do(ctx, r.block, func() error {
		return r.next.Publish(ctx, p)
	})
	if errors.Is(err, ErrDuplicateContent) {
		r.log.Warn().Str("title", p.Title).Msg("Duplicate content, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	r.log.Info().Str("title", p.Title).Str("link", p.Link).Msg("Published post")
	return nil
}

// blockedFor returns what is left of a cached rate limit window
func (r *RetryPublisher) blockedFor() time.Duration {
	if r.cacheSvc == nil {
		return 0
	}
	value, err := r.cacheSvc.Get(r.cacheKey())
	if err != nil {
		return 0
	}
	deadline, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return 0
	}
	return time.Until(time.Unix(deadline, 0))
}

func (r *RetryPublisher) block(wait time.Duration) {
	r.log.Warn().Dur("wait", wait).Msg("Rate limit reached, waiting before retry")
	if r.cacheSvc == nil {
		return
	}
	deadline := time.Now().Add(wait).Unix()
	if err := r.cacheSvc.Set(r.cacheKey(), []byte(strconv.FormatInt(deadline, 10)), wait); err != nil {
		r.log.Warn().Err(err).Msg("Failed to cache rate limit window")
	}
}

// Close closes the wrapped publisher
func (r *RetryPublisher) Close() error {
	return r.next.Close()
}

// TrimStreams forwards to the wrapped publisher when it keeps streams
func (r *RetryPublisher) TrimStreams(ctx context.Context) error {
	if t, ok := r.next.(Trimmer); ok {
		return t.TrimStreams(ctx)
	}
	return nil
}
