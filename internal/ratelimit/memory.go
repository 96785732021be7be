package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// bucket is one key's budget for the window that began at windowStart. The
// limiter has no refill rate; the whole bucket is replaced when the window ends.
type bucket struct {
	limiter     *rate.Limiter
	windowStart time.Time
}

// Memory is an in-process limiter keyed by client. Each key gets Points per
// Window, counted from its first call in that window.
type Memory struct {
	cfg       Config
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewMemory creates an empty in-memory limiter.
func NewMemory(cfg Config) *Memory {
	cfg = cfg.withDefaults()
	return &Memory{
		cfg:       cfg,
		buckets:   make(map[string]*bucket),
		lastSweep: cfg.Now(),
	}
}

// Consume takes points from key's bucket, or returns ErrLimited when the bucket
// holds fewer than points tokens.
func (m *Memory) Consume(_ context.Context, key string, points int) error {
	if points <= 0 {
		points = 1
	}
	now := m.cfg.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)

	b, ok := m.buckets[key]
	if !ok || m.expired(b, now) {
		b = &bucket{
			limiter:     rate.NewLimiter(0, m.cfg.Points),
			windowStart: now,
		}
		m.buckets[key] = b
	}

	if !b.limiter.AllowN(now, points) {
		return ErrLimited
	}
	return nil
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

func (m *Memory) expired(b *bucket, now time.Time) bool {
	return now.Sub(b.windowStart) >= m.cfg.Window
}

// sweep drops buckets whose window has ended; they would be refilled anyway.
// Callers hold m.mu.
func (m *Memory) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.cfg.Window {
		return
	}
	for key, b := range m.buckets {
		if m.expired(b, now) {
			delete(m.buckets, key)
		}
	}
	m.lastSweep = now
}
