package cli

import (
	"context"

	"sjsage522/blogsyndicator/config"
	"sjsage522/blogsyndicator/internal"
	"sjsage522/blogsyndicator/internal/crawler"
	"sjsage522/blogsyndicator/logger"
	apperrors "sjsage522/blogsyndicator/pkg/errors"
	"sjsage522/blogsyndicator/services/cache"
	"sjsage522/blogsyndicator/services/publisher"
	"sjsage522/blogsyndicator/services/store"
)

// initializeServices builds every service the commands need from cfg
func initializeServices(ctx context.Context, cfg *config.Config) (*internal.Dependencies, error) {
	deps := &internal.Dependencies{
		Policy: publisher.RetryPolicy{
			Interval: cfg.RateLimitWait,
			MaxWait:  cfg.RateLimitMaxWait,
		},
	}

	// Initialize cache service
	deps.Cache = newCache(cfg)

	// Initialize post store
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	deps.Store = db

	deps.Crawler = crawler.NewArchiveCrawler(crawler.CrawlerConfig{
		URL:           cfg.ArchiveURL,
		BlockTime:     int(cfg.CrawlBlockTime.Seconds()),
		RatePerSecond: cfg.CrawlRatePerSecond,
	}, deps.Cache)

	// Initialize publishers
	var publishers []publisher.Publisher

	if cfg.TwitterEnabled() {
		deps.Twitter = publisher.NewTwitterPublisher(cfg.TwitterAPIURL, publisher.TwitterCredentials{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			AccessToken:    cfg.AccessToken,
			AccessSecret:   cfg.AccessSecret,
		})
		publishers = append(publishers, publisher.NewRetryPublisher(deps.Twitter, "twitter", deps.Policy, deps.Cache))
	}

	if cfg.SlackToken != "" {
		slackPublisher := publisher.NewSlackPublisher(cfg.SlackToken, cfg.SlackChannel, "")
		publishers = append(publishers, publisher.NewRetryPublisher(slackPublisher, "slack", deps.Policy, deps.Cache))
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		if err := redisPublisher.Ping(ctx); err != nil {
			redisPublisher.Close()
			db.Close()
			return nil, apperrors.NewConfiguration("failed to connect to Redis at "+cfg.RedisAddr, err)
		}
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		publishers = append(publishers, publisher.NewRetryPublisher(redisPublisher, "redis", deps.Policy, deps.Cache))
	}

	deps.Publisher = publisher.NewMultiPublisher(publishers...)
	logger.Debug("Configured %d publishers", deps.Publisher.Len())

	return deps, nil
}

// newCache connects to memcache when configured and falls back to a
// process-local cache otherwise
func newCache(cfg *config.Config) cache.CacheService {
	if cfg.MemcacheAddr == "" {
		return cache.NewMemoryCache()
	}

	memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	if err := memcacheService.Ping(); err != nil {
		logger.Warn("Memcache at %s unavailable, keeping rate limit state in memory: %v", cfg.MemcacheAddr, err)
		return cache.NewMemoryCache()
	}
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	return memcacheService
}

// feedPublisher returns the fan-out publisher, or nil when no feed is configured
func feedPublisher(deps *internal.Dependencies) store.Publisher {
	if deps.Publisher == nil || deps.Publisher.Len() == 0 {
		return nil
	}
	return deps.Publisher
}
