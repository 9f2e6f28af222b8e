//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

type counterClient struct {
	counts  map[string]int64
	expires map[string]time.Duration
	incrErr error
}

func newCounterClient() *counterClient {
	return &counterClient{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (c *counterClient) Ping(ctx context.Context) error { return nil }
func (c *counterClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (c *counterClient) Get(ctx context.Context, key string) (string, error) { return "", Nil }
func (c *counterClient) Incr(ctx context.Context, key string) (int64, error) {
	if c.incrErr != nil {
		return 0, c.incrErr
	}
	c.counts[key]++
	return c.counts[key], nil
}
func (c *counterClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	c.expires[key] = expiration
	return nil
}
func (c *counterClient) Del(ctx context.Context, keys ...string) error { return nil }
func (c *counterClient) Close() error                                  { return nil }

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	cli := newCounterClient()
	rl := NewRateLimiter(cli)
	key := UserActionKey("u1", "roadmap")

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("hit %d: expected allowed, got ok=%v err=%v", i+1, ok, err)
		}
	}
	ok, err := rl.Allow(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("fourth hit should be rejected")
	}
	if cli.expires[key] != time.Minute {
		t.Errorf("window not set on first hit, got %v", cli.expires[key])
	}
}

func TestRateLimiter_DisabledAndErrors(t *testing.T) {
	ctx := context.Background()
	cli := newCounterClient()
	cli.incrErr = errors.New("down")
	rl := NewRateLimiter(cli)

	ok, err := rl.Allow(ctx, "k", 0, time.Minute)
	if err != nil || !ok {
		t.Fatalf("limit 0 should disable limiting, got ok=%v err=%v", ok, err)
	}
	if _, err := rl.Allow(ctx, "k", 1, time.Minute); err == nil {
		t.Fatal("expected redis error to surface")
	}
}

func TestUserActionKey(t *testing.T) {
	if got := UserActionKey("abc", "roadmap"); got != "rate_limit:roadmap:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}
