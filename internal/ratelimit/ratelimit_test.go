// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a Limiter without real sleeps. Sleeping advances the
// clock by the requested duration.
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	c.current = c.current.Add(d)
	return nil
}

func newTestLimiter(t *testing.T, capacity int, window time.Duration) (*Limiter, *fakeClock) {
	t.Helper()
	l, err := New(capacity, window)
	require.NoError(t, err)
	clock := newFakeClock()
	l.now = clock.now
	l.sleep = clock.sleep
	return l, clock
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(0, time.Second)
	assert.Error(t, err)

	_, err = New(3, 0)
	assert.Error(t, err)
}

func TestAcquireUnderCapacityDoesNotBlock(t *testing.T) {
	l, clock := newTestLimiter(t, 3, time.Second)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}
	assert.Empty(t, clock.slept)
}

func TestAcquireOverCapacityWaitsFullWindow(t *testing.T) {
	const window = 10 * time.Second
	l, clock := newTestLimiter(t, 3, window)

	start := clock.current
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}

	// The 4th acquisition must be delayed until at least window has
	// elapsed since the 1st.
	require.NoError(t, l.Acquire(context.Background()))
	require.Len(t, clock.slept, 1)
	assert.True(t, !clock.current.Before(start.Add(window)),
		"4th acquire at %v, want >= %v", clock.current, start.Add(window))
}

func TestAcquireWaitsOnlyUntilOldestAgesOut(t *testing.T) {
	l, clock := newTestLimiter(t, 2, 10*time.Second)

	require.NoError(t, l.Acquire(context.Background()))
	clock.current = clock.current.Add(4 * time.Second)
	require.NoError(t, l.Acquire(context.Background()))

	// Oldest is 4s old, so the wait should be the remaining 6s.
	require.NoError(t, l.Acquire(context.Background()))
	require.Len(t, clock.slept, 1)
	assert.Equal(t, 6*time.Second, clock.slept[0])
}

func TestAcquireAfterWindowElapsedDoesNotBlock(t *testing.T) {
	l, clock := newTestLimiter(t, 1, time.Second)

	require.NoError(t, l.Acquire(context.Background()))
	clock.current = clock.current.Add(2 * time.Second)
	require.NoError(t, l.Acquire(context.Background()))
	assert.Empty(t, clock.slept)
}

func TestAcquireHonorsCancelledContext(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)
}

func TestAcquireCancelledDuringWait(t *testing.T) {
	l, err := New(1, time.Hour)
	require.NoError(t, err)

	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)
}
