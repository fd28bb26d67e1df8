// Package retry wraps avast/retry-go behind a small interface with
// functional options. Delays grow with exponential backoff.
//
//	r := retry.New(retry.WithAttempts(5), retry.WithDelay(200*time.Millisecond))
//	err := r.Execute(ctx, func() error { return fetch(ctx) })
package retry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// Retry runs an operation until it succeeds, attempts run out or ctx is done.
type Retry interface {
	// Execute runs operation with the configured policy. The operation
	// must be safe to call more than once. It returns nil on success and
	// the last error (or every error, see WithLastErrorOnly) otherwise.
	Execute(ctx context.Context, operation func() error) error
}

// OnRetryFunc is invoked before each retry with the attempt number (starting
// at zero) and the error that caused it.
type OnRetryFunc func(attempt uint, err error)

type config struct {
	attempts    uint
	delay       time.Duration
	maxDelay    time.Duration
	lastErrOnly bool
	onRetry     OnRetryFunc
}

// Option configures the retry policy.
type Option func(*config)

type retrier struct {
	cfg config
}

var _ Retry = (*retrier)(nil)

// New returns a Retry configured by opts.
//
// Defaults: 3 attempts (1 initial + 2 retries), 1s base delay, 5s max delay,
// only the last error returned.
func New(opts ...Option) Retry {
	cfg := config{
		attempts:    3,
		delay:       1 * time.Second,
		maxDelay:    5 * time.Second,
		lastErrOnly: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &retrier{
		cfg: cfg,
	}
}

func (r *retrier) Execute(ctx context.Context, operation func() error) error {
	options := []retry.Option{
		retry.Attempts(r.cfg.attempts),
		retry.Delay(r.cfg.delay),
		retry.MaxDelay(r.cfg.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(r.cfg.lastErrOnly),
		retry.Context(ctx),
	}
	if r.cfg.onRetry != nil {
		options = append(options, retry.OnRetry(retry.OnRetryFunc(r.cfg.onRetry)))
	}

	return retry.Do(operation, options...)
}

// WithAttempts sets the maximum number of attempts, including the first one.
func WithAttempts(n uint) Option {
	return func(c *config) {
		c.attempts = n
	}
}

// WithDelay sets the base delay before the first retry.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithMaxDelay caps the backoff delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.maxDelay = d
	}
}

// WithLastErrorOnly controls whether only the final error is returned (true)
// or all attempt errors combined (false).
func WithLastErrorOnly(b bool) Option {
	return func(c *config) {
		c.lastErrOnly = b
	}
}

// WithOnRetry registers a callback run before each retry, typically for logging.
func WithOnRetry(f OnRetryFunc) Option {
	return func(c *config) {
		c.onRetry = f
	}
}
