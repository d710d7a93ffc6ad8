package respcache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/mohammed-shakir/crs-transform/internal/cache/keys"
	"github.com/mohammed-shakir/crs-transform/internal/cache/redisstore"
)

func newRedis(t *testing.T) (*redisstore.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rc, err := redisstore.New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("redisstore.New: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func key(body string) string {
	return keys.Key(keys.Request{Kind: "geojson", Source: "EPSG:28992", Target: "EPSG:4326", Body: []byte(body)})
}

func TestL1Only_SetGetFlush(t *testing.T) {
	c := New(Config{L1Size: 2}, nil, nil)
	ctx := context.Background()

	if _, ok := c.Get(ctx, key("a")); ok {
		t.Fatalf("unexpected hit on empty cache")
	}
	c.Set(ctx, key("a"), []byte("A"))
	v, ok := c.Get(ctx, key("a"))
	if !ok || string(v) != "A" {
		t.Fatalf("got=%q ok=%v", v, ok)
	}

	c.Set(ctx, key("b"), []byte("B"))
	c.Set(ctx, key("c"), []byte("C"))
	if c.Len() != 2 {
		t.Fatalf("len=%d want 2 (bounded)", c.Len())
	}

	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("len after flush=%d", c.Len())
	}
}

func TestL2_ServesAcrossInstances(t *testing.T) {
	rc, _ := newRedis(t)
	ctx := context.Background()

	a := New(Config{}, rc, nil)
	b := New(Config{}, rc, nil)

	a.Set(ctx, key("x"), []byte("X"))
	v, ok := b.Get(ctx, key("x"))
	if !ok || string(v) != "X" {
		t.Fatalf("second instance got=%q ok=%v", v, ok)
	}
	if b.Len() != 1 {
		t.Fatalf("L2 hit must populate L1, len=%d", b.Len())
	}
}

func TestFlush_RemovesOnlyResponseKeys(t *testing.T) {
	rc, mr := newRedis(t)
	ctx := context.Background()
	if err := mr.Set("unrelated", "1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := New(Config{}, rc, nil)
	c.Set(ctx, key("1"), []byte("one"))
	c.Set(ctx, key("2"), []byte("two"))

	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, ok := c.Get(ctx, key("1")); ok {
		t.Fatalf("flushed key still served")
	}
	if !mr.Exists("unrelated") {
		t.Fatalf("flush removed a key outside the prefix")
	}
}

func TestTTL_L2Expiry(t *testing.T) {
	rc, mr := newRedis(t)
	ctx := context.Background()

	writer := New(Config{TTL: time.Minute}, rc, nil)
	writer.Set(ctx, key("t"), []byte("T"))
	mr.FastForward(2 * time.Minute)

	reader := New(Config{TTL: time.Minute}, rc, nil)
	if _, ok := reader.Get(ctx, key("t")); ok {
		t.Fatalf("expired entry served from L2")
	}
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}

func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}

func (failingBackend) DelPrefix(context.Context, string) (int, error) {
	return 0, errors.New("down")
}

func TestBackendErrors_DegradeToMiss(t *testing.T) {
	c := New(Config{}, failingBackend{}, nil)
	ctx := context.Background()

	if _, ok := c.Get(ctx, key("z")); ok {
		t.Fatalf("unexpected hit")
	}
	c.Set(ctx, key("z"), []byte("Z"))
	if v, ok := c.Get(ctx, key("z")); !ok || string(v) != "Z" {
		t.Fatalf("L1 must still serve after L2 write failure, got=%q ok=%v", v, ok)
	}
	if err := c.Flush(ctx); err == nil {
		t.Fatalf("expected flush error from backend")
	}
	if c.Len() != 0 {
		t.Fatalf("L1 must be purged even when L2 flush fails")
	}
}
