package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"sjsage522/blogsyndicator/helpers"
	"sjsage522/blogsyndicator/internal/post"
	"sjsage522/blogsyndicator/logger"
	apperrors "sjsage522/blogsyndicator/pkg/errors"
	"sjsage522/blogsyndicator/services/cache"
)

// ArchiveCrawler walks a blog's paginated archive
type ArchiveCrawler struct {
	BaseCrawler
	Selectors Selectors
	log       *logger.Logger
}

var _ Crawler = (*ArchiveCrawler)(nil)

// NewArchiveCrawler creates a new archive crawler
func NewArchiveCrawler(config CrawlerConfig, cacheSvc cache.CacheService) *ArchiveCrawler {
	selectors := config.Selectors
	if selectors.PageIndicator == "" {
		selectors.PageIndicator = DefaultSelectors.PageIndicator
	}
	if selectors.PostList == "" {
		selectors.PostList = DefaultSelectors.PostList
	}
	if selectors.Anchor == "" {
		selectors.Anchor = DefaultSelectors.Anchor
	}

	provider := config.Provider
	if provider == "" {
		if u, err := url.Parse(config.URL); err == nil {
			provider = u.Host
		}
	}

	cacheKey := config.CacheKey
	if cacheKey == "" {
		cacheKey = "archive_rate_limited"
	}

	var limiter *rate.Limiter
	if config.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RatePerSecond), 1)
	}

	return &ArchiveCrawler{
		BaseCrawler: BaseCrawler{
			URL:       config.URL,
			CacheKey:  cacheKey,
			CacheSvc:  cacheSvc,
			BlockTime: time.Duration(config.BlockTime) * time.Second,
			Provider:  provider,
			limiter:   limiter,
		},
		Selectors: selectors,
		log:       logger.ForCrawler(provider),
	}
}

// GetName returns the crawler name
func (c *ArchiveCrawler) GetName() string {
	return "ArchiveCrawler"
}

// PageURL builds the URL of archive page n. Page 1 is the bare archive URL.
func (c *ArchiveCrawler) PageURL(n int) string {
	if n < 2 {
		return c.URL
	}
	return fmt.Sprintf("%s/page/%d/", strings.TrimRight(c.URL, "/"), n)
}

// DiscoverPageCount fetches the first archive page and reads the total page count
// from its "Page X of Y" indicator
func (c *ArchiveCrawler) DiscoverPageCount(ctx context.Context) (int, error) {
	doc, err := c.fetchDocument(ctx, c.URL)
	if err != nil {
		return 0, err
	}
	return c.pageCount(doc)
}

// FetchPosts fetches every archive page and returns the posts in archive order,
// page 1 first, with repeated (title, link) pairs removed
func (c *ArchiveCrawler) FetchPosts(ctx context.Context) ([]post.Post, error) {
	first, err := c.fetchDocument(ctx, c.URL)
	if err != nil {
		return nil, err
	}

	pages, err := c.pageCount(first)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Int("pages", pages).Msg("Discovered archive pages")

	posts, err := c.extractPosts(first, c.URL)
	if err != nil {
		return nil, err
	}

	for n := 2; n <= pages; n++ {
		pageURL := c.PageURL(n)
		doc, err := c.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		pagePosts, err := c.extractPosts(doc, pageURL)
		if err != nil {
			return nil, err
		}
		posts = append(posts, pagePosts...)
	}

	deduped := post.Dedupe(posts)
	c.log.Info().
		Int("pages", pages).
		Int("posts", len(deduped)).
		Int("repeated", len(posts)-len(deduped)).
		Msg("Archive crawl completed")

	return deduped, nil
}

// pageCount parses the trailing integer of the page indicator
func (c *ArchiveCrawler) pageCount(doc *goquery.Document) (int, error) {
	indicator := doc.Find(c.Selectors.PageIndicator).First()
	if indicator.Length() == 0 {
		return 0, apperrors.NewScrapeFormat(c.Provider,
			fmt.Sprintf("page indicator %q not found", c.Selectors.PageIndicator))
	}

	text := strings.TrimSpace(indicator.Text())
	pages, err := helpers.TrailingInt(text)
	if err != nil || pages < 1 {
		return 0, apperrors.NewScrapeFormat(c.Provider,
			fmt.Sprintf("page indicator %q has no page count", text))
	}

	return pages, nil
}

// extractPosts reads every anchor of the post list of one page
func (c *ArchiveCrawler) extractPosts(doc *goquery.Document, pageURL string) ([]post.Post, error) {
	list := doc.Find(c.Selectors.PostList).First()
	if list.Length() == 0 {
		return nil, apperrors.NewScrapeFormat(c.Provider,
			fmt.Sprintf("post list %q not found on %s", c.Selectors.PostList, pageURL))
	}

	var posts []post.Post
	list.Find(c.Selectors.Anchor).Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Text())
		href, exists := s.Attr("href")
		if title == "" || !exists || strings.TrimSpace(href) == "" {
			c.log.Debug().Int("index", i).Str("page", pageURL).Msg("Skipping anchor without title or href")
			return
		}

		link, err := helpers.ResolveURL(pageURL, href)
		if err != nil {
			c.log.Debug().Err(err).Str("href", href).Msg("Skipping unresolvable href")
			return
		}

		posts = append(posts, post.Post{Title: title, Link: link})
	})

	return posts, nil
}
