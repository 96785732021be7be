// Package ratelimit throttles public procedures per client IP.
//
// Both limiters grant Points per key per fixed Window. Memory keeps its buckets
// in process memory and is only correct for a single instance; Redis shares the
// counters between instances.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLimited is returned when a key has exhausted its budget.
	ErrLimited = errors.New("rate limited")
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("rate limiter unavailable")
)

// Limiter consumes points from the budget of a key.
type Limiter interface {
	Consume(ctx context.Context, key string, points int) error
}

// Config holds the budget shared by every key.
type Config struct {
	// Points is the bucket capacity.
	Points int
	// Window is how long an empty bucket takes to refill completely.
	Window time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

const (
	defaultPoints = 10
	defaultWindow = time.Minute
)

func (c Config) withDefaults() Config {
	if c.Points <= 0 {
		c.Points = defaultPoints
	}
	if c.Window <= 0 {
		c.Window = defaultWindow
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}
