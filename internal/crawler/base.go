package crawler

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"sjsage522/blogsyndicator/helpers"
	apperrors "sjsage522/blogsyndicator/pkg/errors"
	"sjsage522/blogsyndicator/services/cache"
)

// FetchFunc fetches a URL and returns its UTF-8 body
type FetchFunc func(ctx context.Context, url string) (io.Reader, error)

// BaseCrawler provides common functionality for all crawlers
type BaseCrawler struct {
	URL       string
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	Provider  string

	limiter   *rate.Limiter
	fetchFunc FetchFunc
}

// fetchWithCache fetches a URL unless the provider is blocked after a rate limit.
// Fetches are paced by the crawler's limiter.
func (c *BaseCrawler) fetchWithCache(ctx context.Context, url string) (io.Reader, error) {
	if remaining, blocked := c.blockedFor(); blocked {
		return nil, apperrors.NewRateLimit(c.Provider, remaining)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.NewNetwork(c.Provider, "rate limiter wait aborted", err)
		}
	}

	fetch := c.fetchFunc
	if fetch == nil {
		fetch = helpers.FetchWithHeaders
	}

	body, err := fetch(ctx, url)
	if err != nil {
		if rl, ok := apperrors.AsRateLimit(err); ok {
			c.block(rl.RetryAfter)
		}
		return nil, err
	}

	return body, nil
}

// blockedFor reports whether a rate limit marker is present and how long it still holds
func (c *BaseCrawler) blockedFor() (time.Duration, bool) {
	if c.CacheSvc == nil || c.CacheKey == "" {
		return 0, false
	}
	value, err := c.CacheSvc.Get(c.CacheKey)
	if err != nil {
		return 0, false
	}
	deadline, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return c.BlockTime, true
	}
	remaining := time.Until(time.Unix(deadline, 0))
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

// block records a rate limit marker for the longer of BlockTime and retryAfter
func (c *BaseCrawler) block(retryAfter time.Duration) {
	if c.CacheSvc == nil || c.CacheKey == "" {
		return
	}
	wait := c.BlockTime
	if retryAfter > wait {
		wait = retryAfter
	}
	if wait <= 0 {
		return
	}
	deadline := time.Now().Add(wait).Unix()
	c.CacheSvc.Set(c.CacheKey, []byte(strconv.FormatInt(deadline, 10)), wait)
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrorTypeScrapeFormat, c.Provider, "HTML parse error", err)
	}
	return doc, nil
}

// fetchDocument fetches and parses one page
func (c *BaseCrawler) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.fetchWithCache(ctx, url)
	if err != nil {
		return nil, err
	}
	return c.createDocument(body)
}

// GetName returns the crawler's type name for logging
func (c *BaseCrawler) GetName() string {
	// Concrete crawlers override this; fall back to the reflected type name
	return reflect.TypeOf(c).Elem().Name()
}

// GetProvider returns the provider name
func (c *BaseCrawler) GetProvider() string {
	return c.Provider
}

func (c *BaseCrawler) String() string {
	return fmt.Sprintf("%s(%s)", c.Provider, c.URL)
}
