package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestMemory_ExactlyCapacityThenLimited(t *testing.T) {
	clock := newFakeClock()
	limiter := NewMemory(Config{Points: 10, Window: time.Minute, Now: clock.Now})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Consume(ctx, "203.0.113.7", 1), "call %d", i+1)
	}
	assert.ErrorIs(t, limiter.Consume(ctx, "203.0.113.7", 1), ErrLimited)
}

func TestMemory_RefillsAfterWindow(t *testing.T) {
	clock := newFakeClock()
	limiter := NewMemory(Config{Points: 10, Window: time.Minute, Now: clock.Now})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Consume(ctx, "ip", 1))
	}
	require.ErrorIs(t, limiter.Consume(ctx, "ip", 1), ErrLimited)

	clock.Advance(time.Minute)
	assert.NoError(t, limiter.Consume(ctx, "ip", 1))
}

func TestMemory_SpacedCallsStillLimitedWithinWindow(t *testing.T) {
	clock := newFakeClock()
	limiter := NewMemory(Config{Points: 10, Window: time.Minute, Now: clock.Now})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Consume(ctx, "ip", 1), "call %d at %s", i+1, time.Duration(i)*5*time.Second)
		clock.Advance(5 * time.Second)
	}

	// t=50s: still inside the window opened at t=0.
	assert.ErrorIs(t, limiter.Consume(ctx, "ip", 1), ErrLimited)

	clock.Advance(9 * time.Second)
	assert.ErrorIs(t, limiter.Consume(ctx, "ip", 1), ErrLimited, "t=59s is still inside the window")

	clock.Advance(time.Second)
	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Consume(ctx, "ip", 1), "refilled call %d", i+1)
	}
	assert.ErrorIs(t, limiter.Consume(ctx, "ip", 1), ErrLimited)
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	limiter := NewMemory(Config{Points: 2, Window: time.Minute, Now: clock.Now})
	ctx := context.Background()

	require.NoError(t, limiter.Consume(ctx, "a", 2))
	assert.ErrorIs(t, limiter.Consume(ctx, "a", 1), ErrLimited)
	assert.NoError(t, limiter.Consume(ctx, "b", 1))
}

func TestMemory_ChargeLargerThanCapacity(t *testing.T) {
	limiter := NewMemory(Config{Points: 3, Window: time.Minute, Now: newFakeClock().Now})
	assert.ErrorIs(t, limiter.Consume(context.Background(), "ip", 4), ErrLimited)
}

func TestMemory_SweepsIdleBuckets(t *testing.T) {
	clock := newFakeClock()
	limiter := NewMemory(Config{Points: 5, Window: time.Minute, Now: clock.Now})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		require.NoError(t, limiter.Consume(ctx, fmt.Sprintf("10.0.0.%d", i), 1))
	}
	require.Equal(t, 20, limiter.Len())

	clock.Advance(2 * time.Minute)
	require.NoError(t, limiter.Consume(ctx, "10.0.1.1", 1))
	assert.Equal(t, 1, limiter.Len())
}

func TestMemory_ConcurrentConsumersNeverExceedCapacity(t *testing.T) {
	clock := newFakeClock()
	limiter := NewMemory(Config{Points: 50, Window: time.Hour, Now: clock.Now})
	ctx := context.Background()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Consume(ctx, "shared", 1) == nil {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), allowed.Load())
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 10, cfg.Points)
	assert.Equal(t, time.Minute, cfg.Window)
	assert.NotNil(t, cfg.Now)
}
