package crawler

import (
	"context"

	"sjsage522/blogsyndicator/internal/post"
)

// Crawler interface defines the contract for archive crawlers
type Crawler interface {
	// FetchPosts retrieves every published post in archive order, page 1 first
	FetchPosts(ctx context.Context) ([]post.Post, error)

	// GetName returns the crawler's name for logging and identification
	GetName() string

	// GetProvider returns the provider name for the crawler
	GetProvider() string
}

// Selectors contains CSS selectors for the regions of an archive page
type Selectors struct {
	// PageIndicator holds the "Page X of Y" label on the first page
	PageIndicator string
	// PostList wraps the anchors of one archive page
	PostList string
	// Anchor selects the post links inside PostList
	Anchor string
}

// DefaultSelectors matches the Hexo archive layout of codingdose.info
var DefaultSelectors = Selectors{
	PageIndicator: ".page-number",
	PostList:      ".post-list",
	Anchor:        "a",
}

// CrawlerConfig contains configuration for a crawler
type CrawlerConfig struct {
	URL           string
	CacheKey      string
	BlockTime     int
	Provider      string
	RatePerSecond float64
	Selectors     Selectors
}
