package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"SignalSentinel/internal/logger"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(ttl time.Duration) (*Cache[int], *clock) {
	c := New[int](NewMemoryBackend[int](), ttl, logger.NewNop())
	clk := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clk.now
	return c, clk
}

func counter() (func(context.Context) (int, error), *int) {
	calls := 0
	return func(context.Context) (int, error) {
		calls++
		return calls, nil
	}, &calls
}

func TestRefresh_ServesFreshValue(t *testing.T) {
	ctx := context.Background()
	c, clk := newTestCache(time.Minute)
	fn, calls := counter()

	v, _ := c.Refresh(ctx, "BTCUSDT", false, fn)
	clk.t = clk.t.Add(59 * time.Second)
	v2, _ := c.Refresh(ctx, "BTCUSDT", false, fn)
	if v != 1 || v2 != 1 || *calls != 1 {
		t.Errorf("expected one fetch, got v=%d v2=%d calls=%d", v, v2, *calls)
	}

	clk.t = clk.t.Add(time.Second)
	if v, _ := c.Refresh(ctx, "BTCUSDT", false, fn); v != 2 {
		t.Errorf("expected refetch once stale, got %d", v)
	}
}

func TestRefresh_Force(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(time.Hour)
	fn, calls := counter()
	c.Refresh(ctx, "k", false, fn)
	c.Refresh(ctx, "k", true, fn)
	if *calls != 2 {
		t.Errorf("expected forced refresh, calls=%d", *calls)
	}
}

func TestRefresh_PerKeyTimestamps(t *testing.T) {
	ctx := context.Background()
	c, clk := newTestCache(time.Minute)
	fn, calls := counter()

	c.Refresh(ctx, "BTCUSDT", false, fn)
	clk.t = clk.t.Add(50 * time.Second)
	c.Refresh(ctx, "ETHUSDT", false, fn)
	clk.t = clk.t.Add(20 * time.Second)

	if _, ok := c.Get(ctx, "BTCUSDT"); ok {
		t.Error("BTCUSDT should be stale")
	}
	if _, ok := c.Get(ctx, "ETHUSDT"); !ok {
		t.Error("ETHUSDT refreshed later and should still be fresh")
	}
	if *calls != 2 {
		t.Errorf("expected 2 fetches, got %d", *calls)
	}
}

func TestRefresh_ErrorLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	c, clk := newTestCache(time.Minute)
	fn, _ := counter()
	c.Refresh(ctx, "k", false, fn)
	clk.t = clk.t.Add(2 * time.Minute)

	boom := errors.New("upstream down")
	_, err := c.Refresh(ctx, "k", false, func(context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("stale value must not be served")
	}
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rdb.Close()

	b := NewRedisBackend[string](rdb, "signalsentinel:test:")
	want := Entry[string]{Value: "hello", StoredAt: time.Now().UTC().Truncate(time.Millisecond)}
	if err := b.Store(ctx, "k", want, time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}
	got, ok, err := b.Load(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Value != want.Value || !got.StoredAt.Equal(want.StoredAt) {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if _, ok, _ := b.Load(ctx, "missing"); ok {
		t.Error("expected miss")
	}
}
