package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	apperrors "sjsage522/blogsyndicator/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Archive configuration
	ArchiveURL         string
	CrawlRatePerSecond float64
	CrawlBlockTime     time.Duration

	// Storage configuration
	DBPath string

	// Twitter (X) configuration
	TwitterAPIURL  string
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string

	// Slack configuration
	SlackToken   string
	SlackChannel string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Publishing configuration
	RateLimitWait    time.Duration
	RateLimitMaxWait time.Duration
	SyncInterval     time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	crawlRate, _ := strconv.ParseFloat(getEnv("CRAWL_RATE_PER_SECOND", "2"), 64)
	crawlBlock, _ := strconv.Atoi(getEnv("CRAWL_BLOCK_SECONDS", "500"))
	rateLimitWait, _ := strconv.Atoi(getEnv("RATE_LIMIT_WAIT_SECONDS", "900"))
	rateLimitMaxWait, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX_WAIT_SECONDS", "0"))
	syncInterval, _ := strconv.Atoi(getEnv("SYNC_INTERVAL_SECONDS", "3600"))

	return &Config{
		ArchiveURL:           getEnv("ARCHIVE_URL", "https://codingdose.info/archives/"),
		CrawlRatePerSecond:   crawlRate,
		CrawlBlockTime:       time.Duration(crawlBlock) * time.Second,
		DBPath:               getEnv("DB_PATH", "posts.db"),
		TwitterAPIURL:        getEnv("TWITTER_API_URL", "https://api.x.com/2/"),
		ConsumerKey:          os.Getenv("CONSUMER_KEY"),
		ConsumerSecret:       os.Getenv("CONSUMER_SECRET"),
		AccessToken:          os.Getenv("ACCESS_TOKEN"),
		AccessSecret:         os.Getenv("ACCESS_SECRET"),
		SlackToken:           os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannel:         os.Getenv("SLACK_CHANNEL"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "posts"),
		RedisStreamMaxLength: streamMaxLength,
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		RateLimitWait:        time.Duration(rateLimitWait) * time.Second,
		RateLimitMaxWait:     time.Duration(rateLimitMaxWait) * time.Second,
		SyncInterval:         time.Duration(syncInterval) * time.Second,
		Environment:          getEnv("BLOG_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.ArchiveURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.NewConfiguration("ARCHIVE_URL must be an absolute URL", err)
	}
	if c.DBPath == "" {
		return apperrors.NewConfiguration("DB_PATH must not be empty", nil)
	}
	if c.CrawlRatePerSecond <= 0 {
		return apperrors.NewConfiguration("CRAWL_RATE_PER_SECOND must be positive", nil)
	}
	if c.RateLimitWait <= 0 {
		return apperrors.NewConfiguration("RATE_LIMIT_WAIT_SECONDS must be a positive number of seconds", nil)
	}
	if c.SyncInterval <= 0 {
		return apperrors.NewConfiguration("SYNC_INTERVAL_SECONDS must be positive", nil)
	}
	if c.SlackToken != "" && c.SlackChannel == "" {
		return apperrors.NewConfiguration("SLACK_CHANNEL is required when SLACK_BOT_TOKEN is set", nil)
	}
	return nil
}

// TwitterEnabled reports whether all four OAuth credentials are present
func (c *Config) TwitterEnabled() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
