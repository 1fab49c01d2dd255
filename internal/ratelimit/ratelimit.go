// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit provides a rolling-window request limiter.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Limiter allows at most capacity acquisitions within any trailing
// window. When the window is full, Acquire blocks until the oldest
// acquisition ages out. Limiters are injected into the stages that need
// throttling rather than held as package state.
//
// Limiter is not safe for concurrent use; the pipeline is single-threaded.
type Limiter struct {
	capacity int
	window   time.Duration
	times    []time.Time

	// now and sleep are overridable for tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New returns a Limiter permitting capacity acquisitions per window.
func New(capacity int, window time.Duration) (*Limiter, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("rate limit capacity must be positive, got %d", capacity)
	}
	if window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %v", window)
	}
	return &Limiter{
		capacity: capacity,
		window:   window,
		now:      time.Now,
		sleep:    sleepCtx,
	}, nil
}

// Acquire blocks until a slot is free within the rolling window, then
// records the acquisition. It returns early with ctx.Err() if the
// context is cancelled while waiting.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.prune(l.now())
	if len(l.times) >= l.capacity {
		// Wait until the oldest acquisition falls out of the window.
		wait := l.times[0].Add(l.window).Sub(l.now())
		if wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
		l.prune(l.now())
	}

	l.times = append(l.times, l.now())
	return nil
}

// prune drops acquisitions older than the trailing window.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.times) && !l.times[i].After(cutoff) {
		i++
	}
	l.times = l.times[i:]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
