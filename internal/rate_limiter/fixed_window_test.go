package ratelimiter

import (
	"testing"
	"time"

	"github.com/cosealhq/coseal/internal/config"
)

func TestFixedWindowLimiter(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimiterConfig{
		RequestsPerTimeFrame: 3,
		TimeFrame:            time.Minute,
		Enabled:              true,
	}, nil)

	for i := range 3 {
		allowed, _ := limiter.Allow("client-1")
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}

	allowed, retryAfter := limiter.Allow("client-1")
	if allowed {
		t.Error("Expected request over the limit to be rejected")
	}
	if retryAfter != time.Minute {
		t.Errorf("Expected retry after %v, got %v", time.Minute, retryAfter)
	}

	// Other clients have their own window.
	if allowed, _ := limiter.Allow("client-2"); !allowed {
		t.Error("Expected a different client to be allowed")
	}
}

func TestFixedWindowLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimiterConfig{
		RequestsPerTimeFrame: 1,
		TimeFrame:            time.Minute,
		Enabled:              false,
	}, nil)

	for range 10 {
		if allowed, _ := limiter.Allow("client-1"); !allowed {
			t.Fatal("Expected every request to be allowed when disabled")
		}
	}
}
