package internal

import (
	"errors"

	"sjsage522/blogsyndicator/internal/crawler"
	"sjsage522/blogsyndicator/services/cache"
	"sjsage522/blogsyndicator/services/publisher"
	"sjsage522/blogsyndicator/services/store"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Cache   cache.CacheService
	Store   store.Store
	Crawler crawler.Crawler
	// Publisher fans out to every configured feed; it is empty when none is
	Publisher *publisher.MultiPublisher
	// Twitter is the raw X client, nil without credentials
	Twitter *publisher.TwitterPublisher
	Policy  publisher.RetryPolicy
}

// Cleanup closes every service that holds a connection
func (d *Dependencies) Cleanup() error {
	var errs []error
	if d.Publisher != nil {
		errs = append(errs, d.Publisher.Close())
	}
	if d.Store != nil {
		errs = append(errs, d.Store.Close())
	}
	return errors.Join(errs...)
}
