// Package syndicator ties the archive crawler, the post store and the feed
// publishers together.
package syndicator

import (
	"context"
	"time"

	"sjsage522/blogsyndicator/internal/crawler"
	"sjsage522/blogsyndicator/internal/post"
	"sjsage522/blogsyndicator/logger"
	"sjsage522/blogsyndicator/services/store"
)

// Result summarizes one sync cycle
type Result struct {
	Crawled  int
	Inserted []post.Post
	Skipped  int
}

// Syndicator crawls the archive and stores and publishes what is new
type Syndicator struct {
	crawler   crawler.Crawler
	store     store.Store
	publisher store.Publisher
	log       *logger.Logger
}

// New creates a syndicator. pub may be nil when nothing should be published.
func New(c crawler.Crawler, s store.Store, pub store.Publisher) *Syndicator {
	return &Syndicator{
		crawler:   c,
		store:     s,
		publisher: pub,
		log:       logger.ForSyndicator(),
	}
}

// Sync crawls the whole archive and inserts the posts oldest first, so ids
// follow publication order. With publish set each new post goes out right
// after it is stored.
func (s *Syndicator) Sync(ctx context.Context, publish bool) (Result, error) {
	start := time.Now()

	posts, err := s.crawler.FetchPosts(ctx)
	if err != nil {
		return Result{}, err
	}

	// created only after a successful crawl so a failed first run is retried lazily
	if err := s.store.EnsureSchema(ctx, false); err != nil {
		return Result{}, err
	}

	var pub store.Publisher
	if publish {
		pub = s.publisher
	}

	inserted, err := s.store.InsertNew(ctx, post.OldestFirst(posts), pub)
	result := Result{
		Crawled:  len(posts),
		Inserted: inserted,
		Skipped:  len(posts) - len(inserted),
	}
	if err != nil {
		return result, err
	}

	s.log.Info().
		Str("crawler", s.crawler.GetName()).
		Int("crawled", result.Crawled).
		Int("inserted", len(result.Inserted)).
		Int("skipped", result.Skipped).
		Bool("publish", pub != nil).
		Dur("elapsed", time.Since(start)).
		Msg("Sync finished")
	return result, nil
}

// Posts lists every stored post. On first use, when no store exists yet,
// it is created and filled from the archive without publishing anything.
func (s *Syndicator) Posts(ctx context.Context) ([]post.Post, error) {
	exists, err := s.store.Exists(ctx)
	if err != nil {
		return nil, err
	}

	if !exists {
		s.log.Info().Msg("No post store yet, populating it from the archive")
		if _, err := s.Sync(ctx, false); err != nil {
			return nil, err
		}
	}

	return s.store.ListAll(ctx)
}

// Purge drops every stored post and recreates an empty store
func (s *Syndicator) Purge(ctx context.Context) error {
	if err := s.store.EnsureSchema(ctx, true); err != nil {
		return err
	}
	s.log.Info().Msg("Post store purged")
	return nil
}
