package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// SendLimiter is a token bucket shared by every Add on one queue client.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type SendLimiter struct {
	limiter *rate.Limiter
}

// New creates a SendLimiter allowing ratePerSec sends per second.
// It returns nil when ratePerSec <= 0, meaning unthrottled.
func New(ratePerSec int) *SendLimiter {
	if ratePerSec <= 0 {
		return nil
	}
	return &SendLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)}
}

// Wait blocks until a token is granted. A nil SendLimiter never blocks.
// Returns a non-nil error only if ctx is cancelled (or its deadline is
// too near) while waiting.
func (l *SendLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
