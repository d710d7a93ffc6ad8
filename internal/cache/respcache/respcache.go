// Package respcache is a two-level response cache: an in-process LRU with
// expiry in front of an optional Redis store.
package respcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mohammed-shakir/crs-transform/internal/cache"
	"github.com/mohammed-shakir/crs-transform/internal/cache/keys"
	"github.com/mohammed-shakir/crs-transform/internal/core/observability"
)

// Backend is the shared second level, implemented by redisstore.Client.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	DelPrefix(ctx context.Context, prefix string) (int, error)
}

type Config struct {
	L1Size    int
	TTL       time.Duration
	OpTimeout time.Duration
}

type Cache struct {
	l1  *expirable.LRU[string, []byte]
	l2  Backend
	cfg Config
	log *slog.Logger
}

var _ cache.Interface = (*Cache)(nil)

// New builds the cache; l2 may be nil for an in-process cache only.
func New(cfg Config, l2 Backend, log *slog.Logger) *Cache {
	if cfg.L1Size <= 0 {
		cfg.L1Size = 512
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 250 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		l1:  expirable.NewLRU[string, []byte](cfg.L1Size, nil, cfg.TTL),
		l2:  l2,
		cfg: cfg,
		log: log,
	}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := c.l1.Get(key); ok {
		observability.IncCacheHit()
		return v, true
	}
	if c.l2 != nil {
		opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
		defer cancel()
		v, found, err := c.l2.Get(opCtx, key)
		switch {
		case err != nil:
			c.log.WarnContext(ctx, "response cache read failed", "key", key, "err", err)
		case found:
			c.l1.Add(key, v)
			observability.IncCacheHit()
			return v, true
		}
	}
	observability.IncCacheMiss()
	return nil, false
}

func (c *Cache) Set(ctx context.Context, key string, val []byte) {
	c.l1.Add(key, val)
	if c.l2 == nil {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()
	if err := c.l2.Set(opCtx, key, val, c.cfg.TTL); err != nil {
		c.log.WarnContext(ctx, "response cache write failed", "key", key, "err", err)
	}
}

// Flush drops every cached response from both levels.
func (c *Cache) Flush(ctx context.Context) error {
	c.l1.Purge()
	if c.l2 == nil {
		return nil
	}
	n, err := c.l2.DelPrefix(ctx, keys.Prefix)
	if err != nil {
		return err
	}
	c.log.InfoContext(ctx, "response cache flushed", "redis_keys", n)
	return nil
}

func (c *Cache) Len() int { return c.l1.Len() }
