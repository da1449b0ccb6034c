package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	dl := NewDomainLimiter(1.0, 2)

	if !dl.Allow("https://example.com/a") {
		t.Fatal("first request should be allowed")
	}
	if !dl.Allow("https://example.com/b") {
		t.Fatal("second request within burst should be allowed")
	}
	if dl.Allow("https://example.com/c") {
		t.Fatal("third request should exceed the burst")
	}
}

func TestDomainsAreIndependent(t *testing.T) {
	dl := NewDomainLimiter(1.0, 1)

	if !dl.Allow("https://one.example.com/") {
		t.Fatal("first domain should be allowed")
	}
	if !dl.Allow("https://two.example.com/") {
		t.Fatal("a different domain should have its own bucket")
	}
	if dl.Allow("https://one.example.com/") {
		t.Fatal("first domain should be exhausted")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)
	dl.Allow("https://example.com/") // drain the bucket

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := dl.Wait(ctx, "https://example.com/"); err == nil {
		t.Fatal("Wait should fail once the context expires")
	}
}

func TestInvalidURLPasses(t *testing.T) {
	dl := NewDomainLimiter(1.0, 1)
	if err := dl.Wait(context.Background(), "://not-a-url"); err != nil {
		t.Fatalf("invalid URLs should pass through: %v", err)
	}
}
