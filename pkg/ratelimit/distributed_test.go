package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDistributedLimiter_AllowsUpToMax(t *testing.T) {
	client := setupRedis(t)
	l := NewDistributedLimiter(client, Policy{MaxRequests: 3, Window: time.Minute}, "test")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.CheckAndRecord(ctx, "client-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	res, err := l.CheckAndRecord(ctx, "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Allowed {
		t.Error("request over the limit should be denied")
	}
	if res.RetryAfter <= 0 || res.RetryAfter > time.Minute {
		t.Errorf("unexpected retry-after: %v", res.RetryAfter)
	}
}

func TestDistributedLimiter_Reset(t *testing.T) {
	client := setupRedis(t)
	l := NewDistributedLimiter(client, Policy{MaxRequests: 1, Window: time.Minute}, "test")
	ctx := context.Background()

	if res, _ := l.CheckAndRecord(ctx, "client-1"); !res.Allowed {
		t.Fatal("first request should be allowed")
	}
	if res, _ := l.CheckAndRecord(ctx, "client-1"); res.Allowed {
		t.Fatal("second request should be denied")
	}

	if err := l.Reset(ctx, "client-1"); err != nil {
		t.Fatalf("failed to reset: %v", err)
	}
	if res, _ := l.CheckAndRecord(ctx, "client-1"); !res.Allowed {
		t.Error("request after reset should be allowed")
	}
}

func TestDistributedLimiter_FailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	l := NewDistributedLimiter(client, Policy{MaxRequests: 1, Window: time.Minute}, "test")
	res, err := l.CheckAndRecord(context.Background(), "client-1")
	if err == nil {
		t.Fatal("expected an error with redis down")
	}
	if !res.Allowed {
		t.Error("limiter should fail open when redis is unreachable")
	}
}
