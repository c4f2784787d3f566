package registry

import (
	"context"
	"testing"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(1)

	if !limiter.Allow() {
		t.Fatal("expected initial Allow to return true")
	}

	// Burst is 2 for rps=1, so the third immediate call should be denied.
	_ = limiter.Allow()
	if limiter.Allow() {
		t.Fatal("expected third immediate Allow to return false")
	}
}

func TestRateLimiterNonPositiveRate(t *testing.T) {
	limiter := NewRateLimiter(0)

	// A zero rate must not stall: the limiter falls back to 1 rps.
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("expected wait to succeed, got %v", err)
	}
	if !limiter.Allow() {
		t.Fatal("expected Allow to return true within the burst")
	}
}
