package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/pieceflow/dealbridge/internal/ratelimiter"
)

func TestNew_Unlimited(t *testing.T) {
	if l := ratelimiter.New(0); l != nil {
		t.Fatal("expected nil limiter for rate 0")
	}
	var l *ratelimiter.SendLimiter
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter must not block: %v", err)
	}
}

func TestSendLimiter_BurstThenBlock(t *testing.T) {
	l := ratelimiter.New(2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("burst token %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected third wait to exceed the deadline")
	}
}
