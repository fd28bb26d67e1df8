package scanner

import (
	"context"
	"time"

	"github.com/gabapcia/txalert/internal/pkg/resilience/retry"
)

const (
	// DefaultAccountInterval is the delay between Ethereum ticks.
	DefaultAccountInterval = 5 * time.Second
	// DefaultUtxoInterval is the delay between mempool polls.
	DefaultUtxoInterval = 7 * time.Second
)

type config struct {
	interval time.Duration
	retry    retry.Retry
	now      func() time.Time
}

// Option configures a scanner.
type Option func(*config)

// WithInterval sets the fixed delay between the end of a tick and the start
// of the next.
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithRetry retries every individual fetch with r before failing the tick.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithClock overrides the clock used for ids and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

func newConfig(interval time.Duration, opts []Option) config {
	cfg := config{
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// fetch runs f once, or through r when set.
func fetch[T any](ctx context.Context, r retry.Retry, f func(ctx context.Context) (T, error)) (T, error) {
	if r == nil {
		return f(ctx)
	}

	var out T
	err := r.Execute(ctx, func() error {
		var err error
		out, err = f(ctx)
		return err
	})

	return out, err
}

// runEvery calls tick until ctx is done, sleeping interval after each call.
func runEvery(ctx context.Context, interval time.Duration, tick func(ctx context.Context)) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		tick(ctx)
		timer.Reset(interval)
	}
}
