// Package cache defines the response cache used by the transform API.
package cache

import "context"

// Interface caches encoded transform responses by request key. Get and Set
// never fail the request path; backend errors degrade to misses.
type Interface interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
	Flush(ctx context.Context) error
}

// Nop is a disabled cache.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Nop) Set(context.Context, string, []byte)        {}
func (Nop) Flush(context.Context) error                { return nil }
