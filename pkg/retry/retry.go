// Package retry re-runs steps that fail while a dependency is still booting,
// backing off exponentially with jitter. The service uses it to wait for
// PostgreSQL and to apply migrations at startup.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Config tunes a Retrier.
type Config struct {
	// MaxAttempts counts the first call.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Jitter moves each delay up or down by at most this fraction of it.
	Jitter float64

	// RetryIf decides which errors are retried. Nil retries every error.
	RetryIf func(error) bool
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Option adjusts a Config.
type Option func(*Config)

// WithMaxAttempts ignores n < 1.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

// WithBackoff sets the first delay, its cap and the growth factor. Values
// that make no sense (non-positive delays, factor below 1) are ignored.
func WithBackoff(initial, ceiling time.Duration, multiplier float64) Option {
	return func(c *Config) {
		if initial > 0 {
			c.InitialDelay = initial
		}
		if ceiling > 0 {
			c.MaxDelay = ceiling
		}
		if multiplier >= 1 {
			c.Multiplier = multiplier
		}
	}
}

// WithJitter accepts fractions between 0 and 1.
func WithJitter(j float64) Option {
	return func(c *Config) {
		if j >= 0 && j <= 1 {
			c.Jitter = j
		}
	}
}

func WithRetryIf(fn func(error) bool) Option {
	return func(c *Config) { c.RetryIf = fn }
}

func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(c *Config) { c.OnRetry = fn }
}

// Retrier runs an operation until it succeeds, returns an error RetryIf
// rejects, or runs out of attempts.
type Retrier struct {
	cfg Config
}

// New creates a Retrier. Defaults: 3 attempts, 100ms doubling up to 30s,
// 10% jitter.
func New(opts ...Option) *Retrier {
	cfg := Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
		Jitter:       0.1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Retrier{cfg: cfg}
}

// Do returns nil on the first success and otherwise the last error op
// returned. A context already done before the first call returns its error.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if attempt >= r.cfg.MaxAttempts || (r.cfg.RetryIf != nil && !r.cfg.RetryIf(err)) {
			return err
		}

		delay := r.delay(attempt)
		if r.cfg.OnRetry != nil {
			r.cfg.OnRetry(attempt, err, delay)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// delay after the given attempt: InitialDelay * Multiplier^(attempt-1),
// capped at MaxDelay, then jittered.
func (r *Retrier) delay(attempt int) time.Duration {
	d := float64(r.cfg.InitialDelay) * math.Pow(r.cfg.Multiplier, float64(attempt-1))
	d = math.Min(d, float64(r.cfg.MaxDelay))
	if r.cfg.Jitter > 0 {
		d += d * r.cfg.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(math.Max(d, 0))
}

// StartupRetrier retries every error but cancellation up to attempts times,
// starting at half a second and backing off to 10 seconds.
func StartupRetrier(attempts int, onRetry func(attempt int, err error, delay time.Duration)) *Retrier {
	return New(
		WithMaxAttempts(attempts),
		WithBackoff(500*time.Millisecond, 10*time.Second, 2),
		WithJitter(0.2),
		WithRetryIf(func(err error) bool { return !errors.Is(err, context.Canceled) }),
		WithOnRetry(onRetry),
	)
}
