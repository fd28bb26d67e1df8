// Package http builds the retrying HTTP client shared by every upstream
// data source. It wraps hashicorp/go-retryablehttp and exposes functional
// options for timeouts and retry behavior.
package http

import (
	"context"
	"time"

	"github.com/gabapcia/txalert/internal/pkg/logger"

	"github.com/hashicorp/go-retryablehttp"
)

type config struct {
	timeout      time.Duration // maximum duration for a single HTTP attempt
	retryWaitMin time.Duration // minimum delay between retry attempts
	retryWaitMax time.Duration // maximum delay between retry attempts
	retryMax     int           // maximum number of retry attempts
	logRequests  bool          // forward retryablehttp's own logs to the logger package
}

// Option configures the HTTP client.
type Option func(*config)

// leveledLogger adapts the global logger to retryablehttp.LeveledLogger.
type leveledLogger struct{}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (leveledLogger) Error(msg string, keysAndValues ...any) {
	logger.Error(context.Background(), msg, keysAndValues...)
}

func (leveledLogger) Warn(msg string, keysAndValues ...any) {
	logger.Warn(context.Background(), msg, keysAndValues...)
}

func (leveledLogger) Info(msg string, keysAndValues ...any) {
	logger.Debug(context.Background(), msg, keysAndValues...)
}

func (leveledLogger) Debug(msg string, keysAndValues ...any) {
	logger.Debug(context.Background(), msg, keysAndValues...)
}

// NewClient returns a retryablehttp.Client configured by opts.
//
// Defaults: 5s timeout, 1s..5s retry wait, 2 retries, client logging off.
// Once retries run out the last response is returned as is, so callers see
// the real status code instead of a generic "giving up" error.
func NewClient(opts ...Option) *retryablehttp.Client {
	cfg := config{
		timeout:      5 * time.Second,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 5 * time.Second,
		retryMax:     2,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	if cfg.logRequests {
		client.Logger = leveledLogger{}
	}
	client.HTTPClient.Timeout = cfg.timeout
	client.RetryWaitMin = cfg.retryWaitMin
	client.RetryWaitMax = cfg.retryWaitMax
	client.RetryMax = cfg.retryMax
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

// WithTimeout sets the maximum duration allowed for a single HTTP attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryWaitMin sets the minimum delay between retry attempts.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = d
	}
}

// WithRetryWaitMax sets the maximum delay between retry attempts.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMax = d
	}
}

// WithRetryMax sets the maximum number of retries for a failed request.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.retryMax = n
	}
}

// WithRequestLogging routes retryablehttp's request and retry logs to the
// global logger (info and debug at debug level).
func WithRequestLogging(enabled bool) Option {
	return func(c *config) {
		c.logRequests = enabled
	}
}
