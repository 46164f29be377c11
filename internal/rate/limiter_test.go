package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterAllowsUnderLimit(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d blocked under the limit", i+1)
		}
	}
}

func TestMemoryLimiterBlocksOverLimit(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	ctx := context.Background()
	l.Allow(ctx, "1.2.3.4")
	l.Allow(ctx, "1.2.3.4")

	res, err := l.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed {
		t.Fatal("third request allowed over a limit of 2")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("retry_after = %v", res.RetryAfter)
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()
	l.Allow(ctx, "1.2.3.4")

	res, err := l.Allow(ctx, "5.6.7.8")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !res.Allowed {
		t.Fatal("separate key blocked by another key's hits")
	}
}
