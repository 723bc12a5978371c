package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeScrapeFormat represents markup that no longer matches the expected layout
	ErrorTypeScrapeFormat ErrorType = "scrape_format"
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeStorage represents persistence errors other than duplicate posts
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// AppError represents a typed application error
type AppError struct {
	Type       ErrorType
	Provider   string
	Message    string
	Err        error
	RetryAfter time.Duration
	Time       time.Time
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Provider, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *AppError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit:
		return true
	case ErrorTypeNetwork, ErrorTypeScrapeFormat, ErrorTypeStorage:
		return false
	default:
		return false
	}
}

// New creates a new AppError
func New(errType ErrorType, provider, message string, err error) *AppError {
	return &AppError{
		Type:     errType,
		Provider: provider,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewScrapeFormat creates a new scrape format error
func NewScrapeFormat(provider, message string) *AppError {
	return New(ErrorTypeScrapeFormat, provider, message, nil)
}

// NewNetwork creates a new network error
func NewNetwork(provider, message string, err error) *AppError {
	return New(ErrorTypeNetwork, provider, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(provider string, retryAfter time.Duration) *AppError {
	e := New(ErrorTypeRateLimit, provider, fmt.Sprintf("rate limited for %v", retryAfter), nil)
	e.RetryAfter = retryAfter
	return e
}

// NewStorage creates a new storage error
func NewStorage(provider, message string, err error) *AppError {
	return New(ErrorTypeStorage, provider, message, err)
}

// NewCache creates a new cache error
func NewCache(provider, message string, err error) *AppError {
	return New(ErrorTypeCache, provider, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(provider, message string, err error) *AppError {
	return New(ErrorTypePublisher, provider, message, err)
}

// NewValidation creates a new validation error
func NewValidation(provider, message string) *AppError {
	return New(ErrorTypeValidation, provider, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *AppError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether any error in err's chain is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// AsRateLimit returns the rate limit error in err's chain, if any
func AsRateLimit(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Type == ErrorTypeRateLimit {
		return appErr, true
	}
	return nil, false
}
