package retry

import (
	"context"
	"time"
)

// Retry runs fn until it succeeds, the attempts run out or ctx ends.
type Retry interface {
	Execute(ctx context.Context, fn func() error) error
}

type Config struct {
	RetryableFn func(err error) bool
	Interval    time.Duration
	MaxInterval time.Duration
	// JitterPercent spreads each wait by up to this share of itself.
	JitterPercent uint64
}

type Option func(*Config)

func WithRetryable(fn func(err error) bool) Option {
	return func(c *Config) {
		c.RetryableFn = fn
	}
}

func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// WithMaxInterval caps the exponential backoff between attempts.
func WithMaxInterval(d time.Duration) Option {
	return func(c *Config) {
		c.MaxInterval = d
	}
}

// WithJitterPercent randomizes waits so that concurrent callers do not retry
// in lockstep. Values above 100 are clamped.
func WithJitterPercent(p uint64) Option {
	return func(c *Config) {
		c.JitterPercent = min(p, 100)
	}
}

func ApplyOptions(opts ...Option) *Config {
	c := &Config{Interval: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
