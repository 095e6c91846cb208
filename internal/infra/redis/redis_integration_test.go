//go:build integration

package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"telegram-vocab-reader/internal/config"
	"telegram-vocab-reader/internal/domain"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	c, err := NewClient(context.Background(), &config.RedisConfig{URL: url})
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	l := NewLocker(c)
	l.tries = 2
	key := "test_lock:" + t.Name()

	tok, err := l.TryLock(ctx, key, 5*time.Second)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if _, err := l.TryLock(ctx, key, 5*time.Second); !errors.Is(err, domain.ErrSessionBusy) {
		t.Fatalf("second lock: %v", err)
	}
	if err := l.Unlock(ctx, key, "someone-else"); err != nil {
		t.Fatalf("foreign unlock: %v", err)
	}
	if _, err := l.TryLock(ctx, key, 5*time.Second); !errors.Is(err, domain.ErrSessionBusy) {
		t.Fatal("foreign token released the lock")
	}
	if err := l.Unlock(ctx, key, tok); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	tok2, err := l.TryLock(ctx, key, 5*time.Second)
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	_ = l.Unlock(ctx, key, tok2)
}

func TestRedisGetMissing(t *testing.T) {
	c := newTestClient(t)
	if _, err := c.Get(context.Background(), "missing:"+t.Name()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
