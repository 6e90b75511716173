package sse

import (
	"math"
	"math/rand"
	"time"
)

// BackoffConfig is the reconnect delay parameter set for one subscription.
type BackoffConfig struct {
	BaseMs         int     `json:"baseMs" envconfig:"BASE_MS"`
	Factor         float64 `json:"factor" envconfig:"FACTOR"`
	JitterFraction float64 `json:"jitterFraction" envconfig:"JITTER_FRACTION"`
	MaxMs          int     `json:"maxMs" envconfig:"MAX_MS"`
}

// DefaultBackoff returns the standard reconnect policy: 1s base, doubling,
// 10% jitter, capped at 5 minutes.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{BaseMs: 1000, Factor: 2, JitterFraction: 0.1, MaxMs: 300000}
}

// Backoff computes reconnect delays: exponential in the failure count,
// jittered, and clipped at MaxMs. Not safe for concurrent use; each
// subscription owns its own instance.
type Backoff struct {
	cfg     BackoffConfig
	attempt int
}

// NewBackoff creates a backoff state from a config.
func NewBackoff(cfg BackoffConfig) *Backoff {
	return &Backoff{cfg: cfg}
}

// NextDelay returns the delay before the next reconnect attempt and
// increments the failure count.
func (b *Backoff) NextDelay() time.Duration {
	ms := float64(b.cfg.BaseMs) * math.Pow(b.cfg.Factor, float64(b.attempt))
	if b.cfg.JitterFraction > 0 {
		ms *= 1 + b.cfg.JitterFraction*(2*rand.Float64()-1)
	}
	if limit := float64(b.cfg.MaxMs); ms > limit {
		ms = limit
	}
	b.attempt++
	return time.Duration(ms) * time.Millisecond
}

// Reset zeroes the failure count. The owning subscription calls this on any
// byte received, including keep-alive pings: byte arrival is treated as a
// liveness signal independent of frame content.
func (b *Backoff) Reset() {
	b.attempt = 0
}

// Attempt returns the current failure count.
func (b *Backoff) Attempt() int {
	return b.attempt
}
