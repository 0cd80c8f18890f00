package retry

import (
	"math"
	"time"
)

const (
	DefaultMaxRetries     = 3
	DefaultInitialDelay   = time.Second
	DefaultMaxDelay       = 30 * time.Second
	DefaultBackoffFactor  = 2.0
	DefaultJitterFraction = 0.1
)

// Config controls backoff for one Run.
type Config struct {
	MaxRetries    int           `yaml:"max_retries"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
	Jitter        bool          `yaml:"jitter"`
	// JitterFraction spreads each delay by up to ±fraction.
	JitterFraction float64 `yaml:"jitter_fraction"`
}

// DefaultConfig returns three retries starting at 1s, doubling up to 30s, with jitter.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     DefaultMaxRetries,
		InitialDelay:   DefaultInitialDelay,
		MaxDelay:       DefaultMaxDelay,
		BackoffFactor:  DefaultBackoffFactor,
		Jitter:         true,
		JitterFraction: DefaultJitterFraction,
	}
}

func (c Config) normalized() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = DefaultBackoffFactor
	}
	if c.JitterFraction <= 0 || c.JitterFraction > 1 {
		c.JitterFraction = DefaultJitterFraction
	}
	return c
}

// Delay is the wait after the given 0-based failed attempt:
// min(initialDelay × factor^attempt, maxDelay), spread by ±JitterFraction
// when Jitter is set. rnd must return values in [0, 1).
func (c Config) Delay(attempt int, rnd func() float64) time.Duration {
	c = c.normalized()

	d := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt))
	if d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}

	if c.Jitter && rnd != nil {
		d += (rnd()*2 - 1) * c.JitterFraction * d
	}
	return time.Duration(max(d, 0))
}
