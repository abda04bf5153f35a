package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(perMinute, burst int) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := NewLimiter(&Config{
		Enabled:   true,
		PerMinute: perMinute,
		Burst:     burst,
		Exempt:    DefaultExempt(),
	})
	limiter.now = clock.Now
	return limiter, clock
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	limiter, _ := newTestLimiter(60, 5)
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "GET", "/candidates")
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
		if info.Remaining != 4-i {
			t.Errorf("Expected remaining %d, got %d", 4-i, info.Remaining)
		}
	}

	allowed, info := limiter.Allow("10.0.0.1", "GET", "/candidates")
	if allowed {
		t.Fatal("Expected 6th request to be denied")
	}
	if info.RetryAfter != time.Second {
		t.Errorf("Expected retry after 1s at 60/min, got %v", info.RetryAfter)
	}
	if info.Limit != 60 {
		t.Errorf("Expected limit 60, got %d", info.Limit)
	}
}

func TestLimiter_Refill(t *testing.T) {
	limiter, clock := newTestLimiter(60, 2)
	defer limiter.Stop()

	limiter.Allow("c", "GET", "/api/jobs")
	limiter.Allow("c", "GET", "/api/jobs")
	if allowed, _ := limiter.Allow("c", "GET", "/api/jobs"); allowed {
		t.Fatal("Expected bucket to be empty")
	}

	clock.Advance(time.Second)
	if allowed, _ := limiter.Allow("c", "GET", "/api/jobs"); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
	if allowed, _ := limiter.Allow("c", "GET", "/api/jobs"); allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}

	clock.Advance(time.Hour)
	_, info := limiter.Allow("c", "GET", "/api/jobs")
	if info.Remaining != 1 {
		t.Errorf("Expected refill to stop at capacity, remaining %d", info.Remaining)
	}
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(60, 1)
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("a", "GET", "/candidates"); !allowed {
		t.Fatal("Expected first client to be allowed")
	}
	if allowed, _ := limiter.Allow("a", "GET", "/candidates"); allowed {
		t.Fatal("Expected first client to be limited")
	}
	if allowed, _ := limiter.Allow("b", "GET", "/candidates"); !allowed {
		t.Error("Expected second client to be allowed")
	}
}

func TestLimiter_HealthExempt(t *testing.T) {
	limiter, _ := newTestLimiter(60, 1)
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		if allowed, _ := limiter.Allow("a", "GET", "/health"); !allowed {
			t.Fatalf("Expected /health request %d to be allowed", i+1)
		}
	}
	if allowed, _ := limiter.Allow("a", "GET", "/candidates"); !allowed {
		t.Error("Exempt requests should not consume tokens")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false, PerMinute: 1, Burst: 1})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := limiter.Allow("a", "GET", "/candidates"); !allowed {
			t.Fatal("Expected all requests to be allowed when disabled")
		}
	}
}

func TestLimiter_CleanupIdleBuckets(t *testing.T) {
	limiter, clock := newTestLimiter(60, 1)
	defer limiter.Stop()

	limiter.Allow("old", "GET", "/candidates")
	clock.Advance(2 * time.Hour)
	limiter.Allow("fresh", "GET", "/candidates")

	limiter.cleanupBuckets()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if _, ok := limiter.buckets["old"]; ok {
		t.Error("Expected idle bucket to be removed")
	}
	if _, ok := limiter.buckets["fresh"]; !ok {
		t.Error("Expected recent bucket to be kept")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(60, 100)
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("shared", "GET", "/candidates"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected exactly 100 allowed requests, got %d", allowedCount)
	}
}

func TestIsExempt(t *testing.T) {
	routes := []Route{{Method: "GET", Path: "/health"}, {Path: "/static/"}}

	tests := []struct {
		method, path string
		want         bool
	}{
		{"GET", "/health", true},
		{"POST", "/health", false},
		{"GET", "/healthz", false},
		{"GET", "/static/app.css", true},
		{"HEAD", "/static/", true},
		{"GET", "/candidates", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			if got := IsExempt(tt.method, tt.path, routes); got != tt.want {
				t.Errorf("IsExempt(%q, %q) = %v, want %v", tt.method, tt.path, got, tt.want)
			}
		})
	}
}
