// Package ratelimit provides sliding-window admission control for
// quota-constrained vendor APIs.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Limiter admits at most MaxRequests calls within any trailing Window.
// Admit blocks the caller until a slot is free; rate-limit exhaustion is
// never surfaced as an error. One Limiter guards one vendor quota; when
// several runs share a vendor key they must share a quota-sized budget.
type Limiter struct {
	maxRequests int
	window      time.Duration

	mu    sync.Mutex
	calls []time.Time

	// Injectable for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter allowing maxRequests per trailing window.
func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// Admit blocks until a call may proceed without exceeding the quota, then
// records the call. When at quota it sleeps exactly until the oldest
// in-window call expires, not a fixed backoff. The only error returned is
// the context's, when cancelled mid-wait.
func (l *Limiter) Admit(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		now := l.now()
		l.prune(now)

		if len(l.calls) < l.maxRequests {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}

		wait := l.calls[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		zap.L().Debug("rate limit reached, waiting",
			zap.Duration("wait", wait),
			zap.Int("max_requests", l.maxRequests),
			zap.Duration("window", l.window))

		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// InFlight reports how many calls are currently inside the window.
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.calls)
}

// prune drops timestamps older than the window. Caller holds l.mu.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.calls) && !l.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.calls = append(l.calls[:0], l.calls[i:]...)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
